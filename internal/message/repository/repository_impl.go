package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/beacon/internal/message/domain"
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

func (r *repository) Create(ctx context.Context, message *domain.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *repository) Get(ctx context.Context, id snowflake.ID) (*domain.Message, error) {
	var message domain.Message
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&message).Error
	if err != nil {
		return nil, err
	}
	if message.ID == 0 {
		return nil, nil
	}
	return &message, nil
}

func (r *repository) FindForEvent(ctx context.Context, eventID, channelID snowflake.ID) (*domain.Message, error) {
	var message domain.Message
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND channel_id = ?", eventID, channelID).
		Order("id").
		Limit(1).
		Find(&message).Error
	if err != nil {
		return nil, err
	}
	if message.ID == 0 {
		return nil, nil
	}
	return &message, nil
}

func (r *repository) FindForOrg(ctx context.Context, orgID, channelID snowflake.ID) (*domain.Message, error) {
	var message domain.Message
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND channel_id = ? AND event_id IS NULL", orgID, channelID).
		Order("id").
		Limit(1).
		Find(&message).Error
	if err != nil {
		return nil, err
	}
	if message.ID == 0 {
		return nil, nil
	}
	return &message, nil
}
