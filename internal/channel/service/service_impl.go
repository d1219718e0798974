package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/beacon/internal/channel/domain"
	"github.com/smallbiznis/beacon/internal/dispatcher"
	orgdomain "github.com/smallbiznis/beacon/internal/org/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        domain.Repository
	OrgRepo     orgdomain.Repository
	Dispatchers *dispatcher.Registry
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	orgRepo     orgdomain.Repository
	dispatchers *dispatcher.Registry
}

func NewService(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("channel.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		orgRepo:     p.OrgRepo,
		dispatchers: p.Dispatchers,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Channel, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, orgdomain.ErrInvalidName
	}

	scope := orgdomain.Scope{}
	if req.OrgID != "" {
		id, err := parseID(req.OrgID)
		if err != nil {
			return nil, orgdomain.ErrScopeNotFound
		}
		scope.OrgID = id
	}
	if req.ApplicationID != "" {
		id, err := parseID(req.ApplicationID)
		if err != nil {
			return nil, orgdomain.ErrScopeNotFound
		}
		scope.ApplicationID = id
	}
	if scope.OrgID == 0 && scope.ApplicationID == 0 {
		return nil, domain.ErrChannelScope
	}

	resolved, err := orgdomain.ResolveScope(ctx, s.orgRepo, scope)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	dispatcherName := strings.TrimSpace(req.Dispatcher)
	if dispatcherName == "" {
		dispatcherName = dispatcher.DefaultName
	}
	if !s.dispatchers.Has(dispatcherName) {
		return nil, domain.ErrDispatcherUnknown
	}

	cfg := req.Config
	if cfg == nil {
		cfg = datatypes.JSONMap{}
	}

	now := time.Now().UTC()
	channel := &domain.Channel{
		ID:            s.genID.Generate(),
		OrgID:         resolved.OrgID,
		ApplicationID: resolved.ApplicationID,
		Name:          name,
		Dispatcher:    dispatcherName,
		Config:        cfg,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, channel); err != nil {
		return nil, err
	}
	return channel, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Channel, error) {
	channelID, err := parseID(id)
	if err != nil {
		return nil, domain.ErrChannelNotFound
	}
	channel, err := s.repo.Get(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if channel == nil {
		return nil, domain.ErrChannelNotFound
	}
	return channel, nil
}

func (s *Service) SetLocked(ctx context.Context, id string, locked bool) (*domain.Channel, error) {
	channel, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	channel.Locked = locked
	channel.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, channel); err != nil {
		return nil, err
	}
	return channel, nil
}

func (s *Service) SetActive(ctx context.Context, id string, active bool) (*domain.Channel, error) {
	channel, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	channel.Active = active
	channel.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, channel); err != nil {
		return nil, err
	}
	return channel, nil
}

func parseID(raw string) (snowflake.ID, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	return snowflake.ID(v), nil
}
