package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	eventdomain "github.com/smallbiznis/beacon/internal/event/domain"
)

func (s *Server) CreateEvent(c *gin.Context) {
	var req eventdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	event, err := s.eventSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

func (s *Server) GetEvent(c *gin.Context) {
	event, err := s.eventSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

type attachChannelRequest struct {
	ChannelID string `json:"channel_id"`
}

func (s *Server) AttachEventChannel(c *gin.Context) {
	var req attachChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.eventSvc.AttachChannel(c.Request.Context(), c.Param("id"), req.ChannelID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// TriggerEvent records a new occurrence for the event. The occurrence is
// persisted NEW and picked up by the scheduler; the request never blocks on
// delivery.
func (s *Server) TriggerEvent(c *gin.Context) {
	var req eventdomain.TriggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.EventID = c.Param("id")

	occ, err := s.eventSvc.Trigger(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"occurrence_id":  occ.ID.String(),
		"correlation_id": occ.CorrelationID,
		"timestamp":      occ.Timestamp,
		"status":         occ.Status,
	})
}
