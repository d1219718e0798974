package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/beacon/internal/channel/domain"
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

func (r *repository) Create(ctx context.Context, channel *domain.Channel) error {
	return r.db.WithContext(ctx).Create(channel).Error
}

func (r *repository) Update(ctx context.Context, channel *domain.Channel) error {
	return r.db.WithContext(ctx).Save(channel).Error
}

func (r *repository) Get(ctx context.Context, id snowflake.ID) (*domain.Channel, error) {
	var channel domain.Channel
	err := r.db.WithContext(ctx).Raw(
		`SELECT * FROM channels WHERE id = ?`, id,
	).Scan(&channel).Error
	if err != nil {
		return nil, err
	}
	if channel.ID == 0 {
		return nil, nil
	}
	return &channel, nil
}

func (r *repository) ListByOrg(ctx context.Context, orgID snowflake.ID) ([]domain.Channel, error) {
	var channels []domain.Channel
	err := r.db.WithContext(ctx).Raw(
		`SELECT * FROM channels WHERE org_id = ? ORDER BY id`, orgID,
	).Scan(&channels).Error
	if err != nil {
		return nil, err
	}
	return channels, nil
}

func (r *repository) ListByEvent(ctx context.Context, eventID snowflake.ID, only []snowflake.ID) ([]domain.Channel, error) {
	query := r.db.WithContext(ctx).
		Table("channels").
		Select("channels.*").
		Joins("JOIN event_channels ON event_channels.channel_id = channels.id").
		Where("event_channels.event_id = ?", eventID).
		Where("channels.active = ?", true).
		Where("channels.locked = ?", false)

	if len(only) > 0 {
		query = query.Where("channels.id IN ?", only)
	}

	var channels []domain.Channel
	if err := query.Order("channels.id").Scan(&channels).Error; err != nil {
		return nil, err
	}
	return channels, nil
}
