package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/beacon/internal/recipient/domain"
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

func (r *repository) CreateUser(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *repository) CreateAddress(ctx context.Context, address *domain.Address) error {
	return r.db.WithContext(ctx).Create(address).Error
}

func (r *repository) CreateDistributionList(ctx context.Context, list *domain.DistributionList) error {
	return r.db.WithContext(ctx).Create(list).Error
}

func (r *repository) CreateAssignment(ctx context.Context, assignment *domain.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *repository) GetAssignment(ctx context.Context, id snowflake.ID) (*domain.Assignment, error) {
	var assignment domain.Assignment
	err := r.db.WithContext(ctx).Raw(
		`SELECT * FROM assignments WHERE id = ?`, id,
	).Scan(&assignment).Error
	if err != nil {
		return nil, err
	}
	if assignment.ID == 0 {
		return nil, nil
	}
	return &assignment, nil
}

func (r *repository) PendingAssignments(
	ctx context.Context,
	listID, channelID snowflake.ID,
	delivered []snowflake.ID,
	limitTo []string,
) ([]domain.PendingAssignment, error) {
	query := r.db.WithContext(ctx).
		Table("assignments").
		Select("assignments.id, assignments.distribution_list_id, assignments.address_id, assignments.channel_id, addresses.value AS address_value").
		Joins("JOIN addresses ON addresses.id = assignments.address_id").
		Where("assignments.distribution_list_id = ?", listID).
		Where("assignments.channel_id = ?", channelID).
		Where("assignments.active = ?", true)

	if len(delivered) > 0 {
		query = query.Where("assignments.id NOT IN ?", delivered)
	}
	if len(limitTo) > 0 {
		query = query.Where("addresses.value IN ?", limitTo)
	}

	var pending []domain.PendingAssignment
	if err := query.Order("assignments.id").Scan(&pending).Error; err != nil {
		return nil, err
	}
	return pending, nil
}
