package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	messagedomain "github.com/smallbiznis/beacon/internal/message/domain"
)

func (s *Server) CreateMessage(c *gin.Context) {
	var req messagedomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	msg, err := s.messageSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

type renderMessageRequest struct {
	Context map[string]any `json:"context"`
}

// RenderMessage interpolates one template with a caller-supplied context
// without dispatching anything. Unresolved variables are reported as errors.
func (s *Server) RenderMessage(c *gin.Context) {
	var req renderMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	rendered, err := s.messageSvc.RenderPreview(c.Request.Context(), c.Param("id"), req.Context)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, rendered)
}
