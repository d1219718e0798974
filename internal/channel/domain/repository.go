package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, channel *Channel) error
	Update(ctx context.Context, channel *Channel) error
	Get(ctx context.Context, id snowflake.ID) (*Channel, error)
	ListByOrg(ctx context.Context, orgID snowflake.ID) ([]Channel, error)

	// ListByEvent returns the usable channels attached to an event in
	// ascending id order, optionally restricted to the given channel ids.
	ListByEvent(ctx context.Context, eventID snowflake.ID, only []snowflake.ID) ([]Channel, error)
}
