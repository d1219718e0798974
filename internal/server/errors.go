package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	channeldomain "github.com/smallbiznis/beacon/internal/channel/domain"
	"github.com/smallbiznis/beacon/internal/dispatcher"
	eventdomain "github.com/smallbiznis/beacon/internal/event/domain"
	messagedomain "github.com/smallbiznis/beacon/internal/message/domain"
	"github.com/smallbiznis/beacon/internal/message/render"
	occurrencedomain "github.com/smallbiznis/beacon/internal/occurrence/domain"
	orgdomain "github.com/smallbiznis/beacon/internal/org/domain"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrNotFound       = errors.New("not_found")
	ErrConflict       = errors.New("conflict")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrInternal       = errors.New("internal_error")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	var unknownVar render.ErrUnknownVariable
	switch {
	case errors.Is(err, occurrencedomain.ErrOccurrenceExists):
		return http.StatusConflict, errorPayload{Type: "conflict", Message: err.Error()}
	case errors.Is(err, orgdomain.ErrSlugConflict):
		return http.StatusConflict, errorPayload{Type: "conflict", Message: err.Error()}
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, errorPayload{Type: "conflict", Message: err.Error()}
	case errors.Is(err, ErrNotFound),
		errors.Is(err, occurrencedomain.ErrOccurrenceNotFound),
		errors.Is(err, orgdomain.ErrOrgNotFound),
		errors.Is(err, orgdomain.ErrScopeNotFound),
		errors.Is(err, eventdomain.ErrEventNotFound),
		errors.Is(err, channeldomain.ErrChannelNotFound),
		errors.Is(err, messagedomain.ErrMessageNotFound):
		return http.StatusNotFound, errorPayload{Type: "not_found", Message: err.Error()}
	case errors.Is(err, orgdomain.ErrInvalidName),
		errors.Is(err, orgdomain.ErrScopeEmpty),
		errors.Is(err, orgdomain.ErrScopeMismatch),
		errors.Is(err, channeldomain.ErrChannelScope),
		errors.Is(err, channeldomain.ErrDispatcherUnknown),
		errors.Is(err, dispatcher.ErrUnknownDispatcher),
		errors.Is(err, eventdomain.ErrEventInactive),
		errors.Is(err, messagedomain.ErrTemplateNotFound),
		errors.As(err, &unknownVar),
		errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, errorPayload{Type: "invalid_request", Message: err.Error()}
	default:
		return http.StatusInternalServerError, errorPayload{Type: "internal_error", Message: "internal error"}
	}
}
