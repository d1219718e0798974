// Package domain contains message template models and render contracts.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

var (
	ErrMessageNotFound  = errors.New("message not found")
	ErrTemplateNotFound = errors.New("no template bound to event or organization for channel")
)

// Message is a template bound to one channel and either one event or, for
// reusable organization-level templates, no event at all.
type Message struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrgID       snowflake.ID      `gorm:"not null;index" json:"org_id"`
	ChannelID   snowflake.ID      `gorm:"not null;index" json:"channel_id"`
	EventID     *snowflake.ID     `gorm:"index" json:"event_id,omitempty"`
	Name        string            `gorm:"type:text;not null" json:"name"`
	Subject     string            `gorm:"type:text" json:"subject"`
	Content     string            `gorm:"type:text" json:"content"`
	HTMLContent string            `gorm:"type:text;column:html_content" json:"html_content"`
	Context     datatypes.JSONMap `gorm:"type:json;not null;default:'{}'" json:"context"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Message) TableName() string { return "messages" }

// Rendered is the channel-ready output of template rendering.
type Rendered struct {
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
}
