// Package domain contains persistence models for recipients and their
// channel assignments.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// User owns one or more addresses.
type User struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Email     string       `gorm:"type:text;not null;uniqueIndex:ux_users_email" json:"email"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// Address is a deliverable endpoint value (email address, phone number,
// webhook URL) belonging to exactly one user.
type Address struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID    snowflake.ID `gorm:"not null;index;uniqueIndex:ux_addresses_user_value,priority:1" json:"user_id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Value     string       `gorm:"type:text;not null;uniqueIndex:ux_addresses_user_value,priority:2" json:"value"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Address) TableName() string { return "addresses" }

// DistributionList is a named audience scoped to a project or organization.
type DistributionList struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID `gorm:"not null;index" json:"org_id"`
	ProjectID snowflake.ID `gorm:"index" json:"project_id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (DistributionList) TableName() string { return "distribution_lists" }

// Assignment binds one address to one channel inside a distribution list.
// It is the atomic unit of delivery.
type Assignment struct {
	ID                 snowflake.ID `gorm:"primaryKey" json:"id"`
	DistributionListID snowflake.ID `gorm:"not null;index;uniqueIndex:ux_assignments,priority:1" json:"distribution_list_id"`
	AddressID          snowflake.ID `gorm:"not null;uniqueIndex:ux_assignments,priority:2" json:"address_id"`
	ChannelID          snowflake.ID `gorm:"not null;index;uniqueIndex:ux_assignments,priority:3" json:"channel_id"`
	Active             bool         `gorm:"not null" json:"active"`
	CreatedAt          time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Assignment) TableName() string { return "assignments" }

// PendingAssignment is an assignment joined with its address value, as
// consumed by the occurrence processor.
type PendingAssignment struct {
	ID                 snowflake.ID `json:"id"`
	DistributionListID snowflake.ID `json:"distribution_list_id"`
	AddressID          snowflake.ID `json:"address_id"`
	ChannelID          snowflake.ID `json:"channel_id"`
	AddressValue       string       `json:"address_value"`
}
