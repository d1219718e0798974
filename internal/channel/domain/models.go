// Package domain contains persistence models for delivery channels.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

var (
	ErrChannelScope      = errors.New("channel must have an application or an organization")
	ErrChannelNotFound   = errors.New("channel not found")
	ErrChannelLocked     = errors.New("channel is locked")
	ErrDispatcherUnknown = errors.New("dispatcher is not registered")
)

// Channel is a named delivery endpoint bound to a dispatcher strategy.
// It is scoped to an application or, for shared channels, directly to an
// organization; it is never orphaned.
type Channel struct {
	ID            snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrgID         snowflake.ID      `gorm:"index" json:"org_id"`
	ApplicationID snowflake.ID      `gorm:"index" json:"application_id"`
	Name          string            `gorm:"type:text;not null" json:"name"`
	Dispatcher    string            `gorm:"type:text;not null;default:null" json:"dispatcher"`
	Config        datatypes.JSONMap `gorm:"type:json;not null;default:'{}'" json:"config"`
	Active        bool              `gorm:"not null" json:"active"`
	Locked        bool              `gorm:"not null;default:false" json:"locked"`
	CreatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Channel) TableName() string { return "channels" }

// Usable reports whether the channel may carry traffic.
func (c *Channel) Usable() bool {
	return c.Active && !c.Locked
}
