package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateOrganization(ctx context.Context, org *Organization) error
	GetOrganization(ctx context.Context, id snowflake.ID) (*Organization, error)
	GetOrganizationBySlug(ctx context.Context, slug string) (*Organization, error)
	ListOrganizations(ctx context.Context) ([]Organization, error)

	CreateProject(ctx context.Context, project *Project) error
	GetProject(ctx context.Context, id snowflake.ID) (*Project, error)
	ListProjects(ctx context.Context, orgID snowflake.ID) ([]Project, error)

	CreateApplication(ctx context.Context, app *Application) error
	GetApplication(ctx context.Context, id snowflake.ID) (*Application, error)
	ListApplications(ctx context.Context, projectID snowflake.ID) ([]Application, error)
}
