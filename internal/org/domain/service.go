package domain

import (
	"context"
	"errors"
)

var (
	ErrInvalidName  = errors.New("name is required")
	ErrOrgNotFound  = errors.New("organization not found")
	ErrSlugConflict = errors.New("slug already in use")
)

type Service interface {
	CreateOrganization(ctx context.Context, req CreateOrganizationRequest) (*Organization, error)
	GetOrganizationBySlug(ctx context.Context, slug string) (*Organization, error)
	ListOrganizations(ctx context.Context) ([]Organization, error)

	CreateProject(ctx context.Context, req CreateProjectRequest) (*Project, error)
	ListProjects(ctx context.Context, orgSlug string) ([]Project, error)

	CreateApplication(ctx context.Context, req CreateApplicationRequest) (*Application, error)
	ListApplications(ctx context.Context, projectID string) ([]Application, error)
}

type CreateOrganizationRequest struct {
	Name          string `json:"name"`
	FromEmail     string `json:"from_email"`
	SubjectPrefix string `json:"subject_prefix"`
}

type CreateProjectRequest struct {
	OrgID string `json:"org_id"`
	Name  string `json:"name"`
}

type CreateApplicationRequest struct {
	ProjectID     string `json:"project_id"`
	Name          string `json:"name"`
	FromEmail     string `json:"from_email"`
	SubjectPrefix string `json:"subject_prefix"`
}
