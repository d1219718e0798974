// Package domain contains persistence models for the scoping hierarchy.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Organization is the root tenant of the scoping hierarchy.
type Organization struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	Name          string       `gorm:"type:text;not null" json:"name"`
	Slug          string       `gorm:"type:text;not null;uniqueIndex:ux_organizations_slug" json:"slug"`
	FromEmail     string       `gorm:"type:text;column:from_email" json:"from_email"`
	SubjectPrefix string       `gorm:"type:text;column:subject_prefix" json:"subject_prefix"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Organization) TableName() string { return "organizations" }

// Project groups applications under an organization.
type Project struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID `gorm:"not null;index;uniqueIndex:ux_projects_org_slug,priority:1" json:"org_id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Slug      string       `gorm:"type:text;not null;uniqueIndex:ux_projects_org_slug,priority:2" json:"slug"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Project) TableName() string { return "projects" }

// Application is the leaf scope; events and channels attach here.
type Application struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	ProjectID     snowflake.ID `gorm:"not null;index;uniqueIndex:ux_applications_project_slug,priority:1" json:"project_id"`
	OrgID         snowflake.ID `gorm:"not null;index" json:"org_id"`
	Name          string       `gorm:"type:text;not null" json:"name"`
	Slug          string       `gorm:"type:text;not null;uniqueIndex:ux_applications_project_slug,priority:2" json:"slug"`
	FromEmail     string       `gorm:"type:text;column:from_email" json:"from_email"`
	SubjectPrefix string       `gorm:"type:text;column:subject_prefix" json:"subject_prefix"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Application) TableName() string { return "applications" }
