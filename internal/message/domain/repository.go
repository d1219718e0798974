package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, message *Message) error
	Get(ctx context.Context, id snowflake.ID) (*Message, error)

	// FindForEvent returns the template bound to (event, channel), or nil.
	FindForEvent(ctx context.Context, eventID, channelID snowflake.ID) (*Message, error)
	// FindForOrg returns the organization-level template for the channel
	// (event unset), or nil.
	FindForOrg(ctx context.Context, orgID, channelID snowflake.ID) (*Message, error)
}
