package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, event *Event) error
	Get(ctx context.Context, id snowflake.ID) (*Event, error)
	GetBySlug(ctx context.Context, applicationID snowflake.ID, slug string) (*Event, error)
	ListByApplication(ctx context.Context, applicationID snowflake.ID) ([]Event, error)
	AttachChannel(ctx context.Context, eventID, channelID snowflake.ID) error
}
