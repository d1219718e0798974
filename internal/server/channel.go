package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	channeldomain "github.com/smallbiznis/beacon/internal/channel/domain"
)

func (s *Server) CreateChannel(c *gin.Context) {
	var req channeldomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	channel, err := s.channelSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, channel)
}

func (s *Server) GetChannel(c *gin.Context) {
	channel, err := s.channelSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, channel)
}

func (s *Server) LockChannel(c *gin.Context) {
	channel, err := s.channelSvc.SetLocked(c.Request.Context(), c.Param("id"), true)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, channel)
}

func (s *Server) UnlockChannel(c *gin.Context) {
	channel, err := s.channelSvc.SetLocked(c.Request.Context(), c.Param("id"), false)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, channel)
}
