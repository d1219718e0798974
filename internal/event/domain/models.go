// Package domain contains persistence models for trigger points.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrEventInactive = errors.New("event is inactive")
)

// Event is a named trigger point scoped to an application. It owns the set
// of channels notifications may deliver over, and the notification rules
// that decide who gets notified.
type Event struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	ApplicationID snowflake.ID `gorm:"not null;index;uniqueIndex:ux_events_application_slug,priority:1" json:"application_id"`
	ProjectID     snowflake.ID `gorm:"not null;index" json:"project_id"`
	OrgID         snowflake.ID `gorm:"not null;index" json:"org_id"`
	Name          string       `gorm:"type:text;not null" json:"name"`
	Slug          string       `gorm:"type:text;not null;uniqueIndex:ux_events_application_slug,priority:2" json:"slug"`
	Active        bool         `gorm:"not null" json:"active"`
	// OccurrenceRetention overrides the global retention window, in days.
	OccurrenceRetention *int      `gorm:"column:occurrence_retention" json:"occurrence_retention,omitempty"`
	CreatedAt           time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Event) TableName() string { return "events" }

// EventChannel attaches a channel to an event's delivery surface.
type EventChannel struct {
	EventID   snowflake.ID `gorm:"primaryKey" json:"event_id"`
	ChannelID snowflake.ID `gorm:"primaryKey" json:"channel_id"`
}

// TableName sets the database table name.
func (EventChannel) TableName() string { return "event_channels" }
