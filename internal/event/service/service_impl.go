package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/beacon/internal/clock"
	"github.com/smallbiznis/beacon/internal/event/domain"
	occurrencedomain "github.com/smallbiznis/beacon/internal/occurrence/domain"
	orgdomain "github.com/smallbiznis/beacon/internal/org/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	GenID          *snowflake.Node
	Clock          clock.Clock
	Repo           domain.Repository
	OrgRepo        orgdomain.Repository
	OccurrenceRepo occurrencedomain.Repository
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	genID          *snowflake.Node
	clock          clock.Clock
	repo           domain.Repository
	orgRepo        orgdomain.Repository
	occurrenceRepo occurrencedomain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("event.service"),
		genID:          p.GenID,
		clock:          p.Clock,
		repo:           p.Repo,
		orgRepo:        p.OrgRepo,
		occurrenceRepo: p.OccurrenceRepo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Event, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, orgdomain.ErrInvalidName
	}

	applicationID, err := parseID(req.ApplicationID)
	if err != nil {
		return nil, orgdomain.ErrScopeNotFound
	}
	scope, err := orgdomain.ResolveScope(ctx, s.orgRepo, orgdomain.Scope{ApplicationID: applicationID})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	event := &domain.Event{
		ID:                  s.genID.Generate(),
		ApplicationID:       scope.ApplicationID,
		ProjectID:           scope.ProjectID,
		OrgID:               scope.OrgID,
		Name:                name,
		Slug:                slug.Make(name),
		Active:              true,
		OccurrenceRetention: req.RetentionDays,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Event, error) {
	eventID, err := parseID(id)
	if err != nil {
		return nil, domain.ErrEventNotFound
	}
	event, err := s.repo.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, domain.ErrEventNotFound
	}
	return event, nil
}

func (s *Service) AttachChannel(ctx context.Context, eventID, channelID string) error {
	eid, err := parseID(eventID)
	if err != nil {
		return domain.ErrEventNotFound
	}
	cid, err := parseID(channelID)
	if err != nil {
		return domain.ErrEventNotFound
	}
	return s.repo.AttachChannel(ctx, eid, cid)
}

func (s *Service) Trigger(ctx context.Context, req domain.TriggerRequest) (*occurrencedomain.Occurrence, error) {
	event, err := s.Get(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if !event.Active {
		return nil, domain.ErrEventInactive
	}

	correlationID := strings.TrimSpace(req.CorrelationID)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	triggerCtx := datatypes.JSONMap(req.Context)
	if triggerCtx == nil {
		triggerCtx = datatypes.JSONMap{}
	}

	var parentID *snowflake.ID
	if strings.TrimSpace(req.Parent) != "" {
		pid, err := parseID(req.Parent)
		if err != nil {
			return nil, occurrencedomain.ErrOccurrenceNotFound
		}
		parentID = &pid
	}

	now := s.clock.Now()
	occurrence := &occurrencedomain.Occurrence{
		ID:            s.genID.Generate(),
		EventID:       event.ID,
		Timestamp:     now,
		Context:       triggerCtx,
		Options:       datatypes.NewJSONType(req.Options),
		CorrelationID: correlationID,
		Data:          datatypes.NewJSONType(occurrencedomain.OccurrenceData{}),
		Status:        occurrencedomain.StatusNew,
		Attempts:      occurrencedomain.DefaultAttempts,
		ParentID:      parentID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.occurrenceRepo.Create(ctx, occurrence); err != nil {
		return nil, err
	}

	s.log.Info("event triggered",
		zap.String("event", event.Slug),
		zap.String("occurrence_id", occurrence.ID.String()),
		zap.String("correlation_id", correlationID),
	)
	return occurrence, nil
}

func parseID(raw string) (snowflake.ID, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	return snowflake.ID(v), nil
}
