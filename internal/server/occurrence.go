package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	occurrencedomain "github.com/smallbiznis/beacon/internal/occurrence/domain"
)

func parseSnowflakeParam(c *gin.Context, name string) (snowflake.ID, bool) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param(name)))
	if err != nil || id == 0 {
		AbortWithError(c, ErrInvalidRequest)
		return 0, false
	}
	return id, true
}

// LookupOccurrence resolves an occurrence by its natural key: the trigger
// timestamp plus the event's slug chain. Every component of the key is
// required.
func (s *Server) LookupOccurrence(c *gin.Context) {
	ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(c.Query("timestamp")))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	key := occurrencedomain.NaturalKey{
		Timestamp:   ts,
		EventSlug:   strings.TrimSpace(c.Query("event")),
		AppSlug:     strings.TrimSpace(c.Query("application")),
		ProjectSlug: strings.TrimSpace(c.Query("project")),
		OrgSlug:     strings.TrimSpace(c.Query("organization")),
	}
	if key.EventSlug == "" || key.AppSlug == "" || key.ProjectSlug == "" || key.OrgSlug == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	occ, err := s.occurrences.GetByNaturalKey(c.Request.Context(), key)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if occ == nil {
		AbortWithError(c, occurrencedomain.ErrOccurrenceNotFound)
		return
	}

	c.JSON(http.StatusOK, occ)
}

func (s *Server) GetOccurrence(c *gin.Context) {
	id, ok := parseSnowflakeParam(c, "id")
	if !ok {
		return
	}

	occ, err := s.occurrences.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if occ == nil {
		AbortWithError(c, occurrencedomain.ErrOccurrenceNotFound)
		return
	}

	c.JSON(http.StatusOK, occ)
}

func (s *Server) ListOccurrenceDeliveries(c *gin.Context) {
	id, ok := parseSnowflakeParam(c, "id")
	if !ok {
		return
	}

	occ, err := s.occurrences.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if occ == nil {
		AbortWithError(c, occurrencedomain.ErrOccurrenceNotFound)
		return
	}

	data := occ.Data.Data()
	c.JSON(http.StatusOK, gin.H{
		"delivered":  data.Delivered,
		"recipients": data.Recipients,
		"status":     occ.Status,
		"attempts":   occ.Attempts,
	})
}

// ProcessOccurrence runs one delivery pass inline. The scheduler does the
// same on its own cadence; this endpoint exists for manual retries.
func (s *Server) ProcessOccurrence(c *gin.Context) {
	id, ok := parseSnowflakeParam(c, "id")
	if !ok {
		return
	}

	completed, err := s.processor.Process(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	occ, err := s.occurrences.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if occ == nil {
		AbortWithError(c, occurrencedomain.ErrOccurrenceNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"completed": completed,
		"status":    occ.Status,
		"attempts":  occ.Attempts,
	})
}
