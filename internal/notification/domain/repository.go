package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, notification *Notification) error

	// ListByEvent returns all notifications attached to an event in
	// ascending id order. Match filtering happens in the caller because
	// predicates evaluate against the JSON payload.
	ListByEvent(ctx context.Context, eventID snowflake.ID) ([]Notification, error)
}
