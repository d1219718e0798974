package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/beacon/internal/message/domain"
	"github.com/smallbiznis/beacon/internal/message/render"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
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
		log:   p.Log.Named("message.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Message, error) {
	orgID, err := parseID(req.OrgID)
	if err != nil {
		return nil, domain.ErrMessageNotFound
	}
	channelID, err := parseID(req.ChannelID)
	if err != nil {
		return nil, domain.ErrMessageNotFound
	}

	var eventID *snowflake.ID
	if strings.TrimSpace(req.EventID) != "" {
		id, err := parseID(req.EventID)
		if err != nil {
			return nil, domain.ErrMessageNotFound
		}
		eventID = &id
	}

	messageCtx := datatypes.JSONMap(req.Context)
	if messageCtx == nil {
		messageCtx = datatypes.JSONMap{}
	}

	now := time.Now().UTC()
	message := &domain.Message{
		ID:          s.genID.Generate(),
		OrgID:       orgID,
		ChannelID:   channelID,
		EventID:     eventID,
		Name:        strings.TrimSpace(req.Name),
		Subject:     req.Subject,
		Content:     req.Content,
		HTMLContent: req.HTMLContent,
		Context:     messageCtx,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

func (s *Service) Render(ctx context.Context, eventID, orgID, channelID snowflake.ID, context map[string]any) (*domain.Rendered, error) {
	message, err := s.repo.FindForEvent(ctx, eventID, channelID)
	if err != nil {
		return nil, err
	}
	if message == nil {
		message, err = s.repo.FindForOrg(ctx, orgID, channelID)
		if err != nil {
			return nil, err
		}
	}
	if message == nil {
		return nil, domain.ErrTemplateNotFound
	}
	return renderMessage(message, context)
}

func (s *Service) RenderPreview(ctx context.Context, id string, context map[string]any) (*domain.Rendered, error) {
	messageID, err := parseID(id)
	if err != nil {
		return nil, domain.ErrMessageNotFound
	}
	message, err := s.repo.Get(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if message == nil {
		return nil, domain.ErrMessageNotFound
	}
	return renderMessage(message, context)
}

// renderMessage overlays the template's own context under the supplied one
// (caller wins) and interpolates all three bodies.
func renderMessage(message *domain.Message, context map[string]any) (*domain.Rendered, error) {
	merged := make(map[string]any, len(message.Context)+len(context))
	for k, v := range message.Context {
		merged[k] = v
	}
	for k, v := range context {
		merged[k] = v
	}

	subject, err := render.Interpolate(message.Subject, merged)
	if err != nil {
		return nil, err
	}
	text, err := render.Interpolate(message.Content, merged)
	if err != nil {
		return nil, err
	}
	html, err := render.Interpolate(message.HTMLContent, merged)
	if err != nil {
		return nil, err
	}

	return &domain.Rendered{Subject: subject, Text: text, HTML: html}, nil
}

func parseID(raw string) (snowflake.ID, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	return snowflake.ID(v), nil
}
