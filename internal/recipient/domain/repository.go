package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateUser(ctx context.Context, user *User) error
	CreateAddress(ctx context.Context, address *Address) error
	CreateDistributionList(ctx context.Context, list *DistributionList) error
	CreateAssignment(ctx context.Context, assignment *Assignment) error

	GetAssignment(ctx context.Context, id snowflake.ID) (*Assignment, error)

	// PendingAssignments resolves the distribution list into active
	// assignments bound to the given channel, excluding ids in delivered and
	// optionally restricted to the given address values. Results come back
	// in ascending id order so resumption visits remaining work in a stable
	// sequence.
	PendingAssignments(ctx context.Context, listID, channelID snowflake.ID, delivered []snowflake.ID, limitTo []string) ([]PendingAssignment, error)
}
