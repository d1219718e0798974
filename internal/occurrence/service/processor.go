package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	channeldomain "github.com/smallbiznis/beacon/internal/channel/domain"
	"github.com/smallbiznis/beacon/internal/clock"
	"github.com/smallbiznis/beacon/internal/dispatcher"
	messagedomain "github.com/smallbiznis/beacon/internal/message/domain"
	notificationdomain "github.com/smallbiznis/beacon/internal/notification/domain"
	obsmetrics "github.com/smallbiznis/beacon/internal/observability/metrics"
	"github.com/smallbiznis/beacon/internal/occurrence/domain"
	recipientdomain "github.com/smallbiznis/beacon/internal/recipient/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB               *gorm.DB
	Log              *zap.Logger
	Clock            clock.Clock
	Repo             domain.Repository
	NotificationRepo notificationdomain.Repository
	ChannelRepo      channeldomain.Repository
	RecipientRepo    recipientdomain.Repository
	MessageSvc       messagedomain.Service
	Dispatchers      *dispatcher.Registry
}

// Processor runs the notification x channel x assignment loop for one
// occurrence. Processing is sequential by design: the append-then-persist
// step after each delivery is the unit of durability, and keeping the loop
// single-threaded makes it trivially atomic per iteration.
type Processor struct {
	db               *gorm.DB
	log              *zap.Logger
	clock            clock.Clock
	repo             domain.Repository
	notificationRepo notificationdomain.Repository
	channelRepo      channeldomain.Repository
	recipientRepo    recipientdomain.Repository
	messageSvc       messagedomain.Service
	dispatchers      *dispatcher.Registry
}

func NewProcessor(p Params) domain.Processor {
	return &Processor{
		db:               p.DB,
		log:              p.Log.Named("occurrence.processor"),
		clock:            p.Clock,
		repo:             p.Repo,
		notificationRepo: p.NotificationRepo,
		channelRepo:      p.ChannelRepo,
		recipientRepo:    p.RecipientRepo,
		messageSvc:       p.MessageSvc,
		dispatchers:      p.Dispatchers,
	}
}

// eventRow is the slice of the event the processor needs.
type eventRow struct {
	ID    snowflake.ID
	OrgID snowflake.ID
	Name  string
	Slug  string
}

func (p *Processor) Process(ctx context.Context, id snowflake.ID) (bool, error) {
	occ, err := p.repo.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if occ == nil {
		return false, domain.ErrOccurrenceNotFound
	}

	event, err := p.loadEvent(ctx, occ.EventID)
	if err != nil {
		return false, err
	}

	log := p.log.With(
		zap.String("occurrence_id", occ.ID.String()),
		zap.String("event", event.Slug),
		zap.String("correlation_id", occ.CorrelationID),
	)

	data := occ.Data.Data()
	delivered := data.Delivered
	recipients := data.Recipients
	deliveredSet := make(map[snowflake.ID]struct{}, len(delivered))
	for _, aid := range delivered {
		deliveredSet[aid] = struct{}{}
	}

	options := occ.Options.Data()
	triggerCtx := map[string]any(occ.Context)

	notifications, err := p.notificationRepo.ListByEvent(ctx, occ.EventID)
	if err != nil {
		return false, err
	}
	matched := notificationdomain.Match(notifications, triggerCtx, options.Environs)

	channels, err := p.channelRepo.ListByEvent(ctx, occ.EventID, options.Channels)
	if err != nil {
		return false, err
	}

	persist := func() {
		saveErr := p.repo.UpdateData(ctx, occ.ID, domain.OccurrenceData{
			Delivered:  delivered,
			Recipients: recipients,
		})
		if saveErr != nil {
			log.Error("failed to persist delivery checkpoint", zap.Error(saveErr))
		}
	}

	metrics := obsmetrics.Dispatch()
	for i := range matched {
		notification := &matched[i]
		renderCtx := p.buildContext(occ, event, notification)

		for j := range channels {
			channel := &channels[j]

			pending, err := p.recipientRepo.PendingAssignments(
				ctx,
				notification.DistributionListID,
				channel.ID,
				delivered,
				options.LimitTo,
			)
			if err != nil {
				persist()
				return false, err
			}
			// A channel with nothing pending never renders; a missing
			// template on an idle channel must not block the rest of the run.
			if len(pending) == 0 {
				continue
			}

			rendered, err := p.messageSvc.Render(ctx, occ.EventID, event.OrgID, channel.ID, renderCtx)
			if err != nil {
				// Rendering failures abort the whole remaining run; progress
				// made so far stays persisted and the occurrence remains
				// retryable.
				log.Error("render failed",
					zap.String("channel", channel.Name),
					zap.String("notification", notification.Name),
					zap.Error(err),
				)
				persist()
				metrics.IncProcessed(false)
				return false, nil
			}

			strategy, err := p.dispatchers.Get(channel.Dispatcher)
			if err != nil {
				log.Error("dispatcher lookup failed", zap.String("channel", channel.Name), zap.Error(err))
				persist()
				metrics.IncProcessed(false)
				return false, nil
			}

			for _, assignment := range pending {
				if _, done := deliveredSet[assignment.ID]; done {
					continue
				}

				start := time.Now()
				sendErr := strategy.Send(ctx, dispatcher.Payload{
					Address: assignment.AddressValue,
					Subject: rendered.Subject,
					Text:    rendered.Text,
					HTML:    rendered.HTML,
					Config:  channel.Config,
				})
				metrics.ObserveDispatch(channel.Dispatcher, time.Since(start))
				metrics.IncDispatch(channel.Dispatcher, sendErr == nil)

				if sendErr != nil {
					log.Error("dispatch failed",
						zap.String("channel", channel.Name),
						zap.String("address", assignment.AddressValue),
						zap.Error(sendErr),
					)
					persist()
					metrics.IncProcessed(false)
					return false, nil
				}

				delivered = append(delivered, assignment.ID)
				deliveredSet[assignment.ID] = struct{}{}
				recipients = append(recipients, domain.DeliveredRecipient{assignment.AddressValue, channel.Name})
				persist()
			}
		}
	}

	if err := p.repo.SetStatus(ctx, occ.ID, domain.StatusProcessed); err != nil {
		return false, err
	}
	metrics.IncProcessed(true)
	log.Info("occurrence processed", zap.Int("deliveries", len(recipients)))
	return true, nil
}

// buildContext merges the occurrence-level context with the notification's
// extra context; notification keys win on conflict.
func (p *Processor) buildContext(occ *domain.Occurrence, event *eventRow, notification *notificationdomain.Notification) map[string]any {
	merged := make(map[string]any, len(occ.Context)+len(notification.ExtraContext)+3)
	for k, v := range occ.Context {
		merged[k] = v
	}
	merged["timestamp"] = occ.Timestamp.UTC().Format(time.RFC3339)
	merged["event"] = event.Name
	merged["event_slug"] = event.Slug
	for k, v := range notification.ExtraContext {
		merged[k] = v
	}
	return merged
}

func (p *Processor) loadEvent(ctx context.Context, eventID snowflake.ID) (*eventRow, error) {
	var event eventRow
	err := p.db.WithContext(ctx).Raw(
		`SELECT id, org_id, name, slug FROM events WHERE id = ?`, eventID,
	).Scan(&event).Error
	if err != nil {
		return nil, err
	}
	if event.ID == 0 {
		return nil, domain.ErrOccurrenceNotFound
	}
	return &event, nil
}
