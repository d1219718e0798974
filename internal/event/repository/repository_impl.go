package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/beacon/internal/event/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, event *domain.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) Get(ctx context.Context, id snowflake.ID) (*domain.Event, error) {
	var event domain.Event
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&event).Error
	if err != nil {
		return nil, err
	}
	if event.ID == 0 {
		return nil, nil
	}
	return &event, nil
}

func (r *repository) GetBySlug(ctx context.Context, applicationID snowflake.ID, slug string) (*domain.Event, error) {
	var event domain.Event
	err := r.db.WithContext(ctx).
		Where("application_id = ? AND slug = ?", applicationID, slug).
		Limit(1).
		Find(&event).Error
	if err != nil {
		return nil, err
	}
	if event.ID == 0 {
		return nil, nil
	}
	return &event, nil
}

func (r *repository) ListByApplication(ctx context.Context, applicationID snowflake.ID) ([]domain.Event, error) {
	var events []domain.Event
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("id").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repository) AttachChannel(ctx context.Context, eventID, channelID snowflake.ID) error {
	return r.db.WithContext(ctx).Create(&domain.EventChannel{
		EventID:   eventID,
		ChannelID: channelID,
	}).Error
}
