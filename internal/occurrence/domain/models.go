// Package domain contains the occurrence model: one triggered instance of
// an event, carrying its trigger context and delivery progress.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

var (
	ErrOccurrenceNotFound = errors.New("occurrence not found")
	ErrOccurrenceExists   = errors.New("occurrence already exists for event and timestamp")
)

type Status string

const (
	StatusNew       Status = "NEW"
	StatusProcessed Status = "PROCESSED"
	StatusFailed    Status = "FAILED"
)

// DefaultAttempts is how many processing runs an occurrence gets before the
// scheduler marks it FAILED.
const DefaultAttempts = 5

// OccurrenceOptions routes linked notifications: restrict recipients by
// address value, restrict channels by id, restrict notifications by
// environment.
type OccurrenceOptions struct {
	LimitTo  []string       `json:"limit_to,omitempty"`
	Channels []snowflake.ID `json:"channels,omitempty"`
	Environs []string       `json:"environs,omitempty"`
}

// DeliveredRecipient is one (address value, channel name) pair in the
// delivery log. It marshals as a two-element JSON array to keep the data
// column stable for external tooling.
type DeliveredRecipient [2]string

// OccurrenceData is the processing checkpoint persisted after every
// successful delivery. Delivered holds satisfied assignment ids; Recipients
// is the human-readable log in delivery order.
type OccurrenceData struct {
	Delivered  []snowflake.ID       `json:"delivered"`
	Recipients []DeliveredRecipient `json:"recipients"`
}

// Occurrence is the mutable unit of work created by a trigger.
type Occurrence struct {
	ID            snowflake.ID                           `gorm:"primaryKey" json:"id"`
	EventID       snowflake.ID                           `gorm:"not null;index;uniqueIndex:ux_occurrences_event_ts,priority:1" json:"event_id"`
	Timestamp     time.Time                              `gorm:"not null;uniqueIndex:ux_occurrences_event_ts,priority:2" json:"timestamp"`
	Context       datatypes.JSONMap                      `gorm:"type:json;not null;default:'{}'" json:"context"`
	Options       datatypes.JSONType[OccurrenceOptions]  `gorm:"type:json" json:"options"`
	CorrelationID string                                 `gorm:"type:text;index" json:"correlation_id"`
	Newsletter    bool                                   `gorm:"not null;default:false" json:"newsletter"`
	Recipients    int                                    `gorm:"not null;default:0" json:"recipients"`
	Data          datatypes.JSONType[OccurrenceData]     `gorm:"type:json" json:"data"`
	Status        Status                                 `gorm:"type:text;not null;default:'NEW'" json:"status"`
	Attempts      int                                    `gorm:"not null;default:5" json:"attempts"`
	ParentID      *snowflake.ID                          `gorm:"index" json:"parent_id,omitempty"`
	// LockedUntil is the processing lease; a worker that claims the
	// occurrence extends it so no second worker processes the same row.
	LockedUntil *time.Time `json:"-"`
	CreatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Occurrence) TableName() string { return "occurrences" }

// NaturalKey identifies an occurrence without ids: the creation timestamp
// plus the event's slug chain.
type NaturalKey struct {
	Timestamp   time.Time
	EventSlug   string
	AppSlug     string
	ProjectSlug string
	OrgSlug     string
}
