package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/beacon/internal/org/domain"
	"github.com/smallbiznis/beacon/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("org.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) CreateOrganization(ctx context.Context, req domain.CreateOrganizationRequest) (*domain.Organization, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	now := time.Now().UTC()
	org := &domain.Organization{
		ID:            s.genID.Generate(),
		Name:          name,
		Slug:          slug.Make(name),
		FromEmail:     strings.TrimSpace(req.FromEmail),
		SubjectPrefix: req.SubjectPrefix,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.CreateOrganization(ctx, org); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrSlugConflict
		}
		return nil, err
	}
	return org, nil
}

func (s *Service) GetOrganizationBySlug(ctx context.Context, orgSlug string) (*domain.Organization, error) {
	org, err := s.repo.GetOrganizationBySlug(ctx, strings.TrimSpace(orgSlug))
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, domain.ErrOrgNotFound
	}
	return org, nil
}

func (s *Service) ListOrganizations(ctx context.Context) ([]domain.Organization, error) {
	return s.repo.ListOrganizations(ctx)
}

func (s *Service) CreateProject(ctx context.Context, req domain.CreateProjectRequest) (*domain.Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	orgID, err := parseID(req.OrgID)
	if err != nil {
		return nil, domain.ErrOrgNotFound
	}
	org, err := s.repo.GetOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, domain.ErrOrgNotFound
	}

	now := time.Now().UTC()
	project := &domain.Project{
		ID:        s.genID.Generate(),
		OrgID:     org.ID,
		Name:      name,
		Slug:      slug.Make(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateProject(ctx, project); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrSlugConflict
		}
		return nil, err
	}
	return project, nil
}

func (s *Service) ListProjects(ctx context.Context, orgSlug string) ([]domain.Project, error) {
	org, err := s.GetOrganizationBySlug(ctx, orgSlug)
	if err != nil {
		return nil, err
	}
	return s.repo.ListProjects(ctx, org.ID)
}

func (s *Service) CreateApplication(ctx context.Context, req domain.CreateApplicationRequest) (*domain.Application, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	projectID, err := parseID(req.ProjectID)
	if err != nil {
		return nil, domain.ErrScopeNotFound
	}
	project, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, domain.ErrScopeNotFound
	}

	now := time.Now().UTC()
	app := &domain.Application{
		ID:            s.genID.Generate(),
		ProjectID:     project.ID,
		OrgID:         project.OrgID,
		Name:          name,
		Slug:          slug.Make(name),
		FromEmail:     strings.TrimSpace(req.FromEmail),
		SubjectPrefix: req.SubjectPrefix,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.CreateApplication(ctx, app); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrSlugConflict
		}
		return nil, err
	}
	return app, nil
}

func (s *Service) ListApplications(ctx context.Context, projectID string) ([]domain.Application, error) {
	id, err := parseID(projectID)
	if err != nil {
		return nil, domain.ErrScopeNotFound
	}
	return s.repo.ListApplications(ctx, id)
}

func parseID(raw string) (snowflake.ID, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	return snowflake.ID(v), nil
}
