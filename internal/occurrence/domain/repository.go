package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, occurrence *Occurrence) error
	Get(ctx context.Context, id snowflake.ID) (*Occurrence, error)
	GetByNaturalKey(ctx context.Context, key NaturalKey) (*Occurrence, error)

	// UpdateData persists the delivery checkpoint. Called after every
	// successful dispatch; never batched.
	UpdateData(ctx context.Context, id snowflake.ID, data OccurrenceData) error
	SetStatus(ctx context.Context, id snowflake.ID, status Status) error
	DecrementAttempts(ctx context.Context, id snowflake.ID) (int, error)

	// Claim leases up to limit NEW occurrences with attempts remaining whose
	// lease has expired, extending each lease to now+lease. FOR UPDATE SKIP
	// LOCKED keeps concurrent workers from claiming the same row.
	Claim(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]Occurrence, error)
	Release(ctx context.Context, id snowflake.ID) error

	// Purgeable returns ids of occurrences whose updated_at is older than
	// the per-event retention window, falling back to defaultRetentionDays.
	Purgeable(ctx context.Context, now time.Time, defaultRetentionDays int, limit int) ([]snowflake.ID, error)
	Delete(ctx context.Context, ids []snowflake.ID) (int, error)
}
