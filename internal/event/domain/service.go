package domain

import (
	"context"

	occurrencedomain "github.com/smallbiznis/beacon/internal/occurrence/domain"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Event, error)
	Get(ctx context.Context, id string) (*Event, error)
	AttachChannel(ctx context.Context, eventID, channelID string) error

	// Trigger creates and persists a new occurrence for the event. The
	// timestamp is server-assigned; a missing correlation id is generated.
	Trigger(ctx context.Context, req TriggerRequest) (*occurrencedomain.Occurrence, error)
}

type CreateRequest struct {
	ApplicationID string `json:"application_id"`
	Name          string `json:"name"`
	// RetentionDays overrides the default occurrence retention window.
	RetentionDays *int `json:"retention_days,omitempty"`
}

type TriggerRequest struct {
	EventID       string                              `json:"-"`
	Context       map[string]any                      `json:"context"`
	Options       occurrencedomain.OccurrenceOptions  `json:"options"`
	CorrelationID string                              `json:"correlation_id"`
	Parent        string                              `json:"parent,omitempty"`
}
