package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/beacon/internal/occurrence/domain"
	"github.com/smallbiznis/beacon/pkg/db"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func datatypesJSON(data domain.OccurrenceData) datatypes.JSONType[domain.OccurrenceData] {
	return datatypes.NewJSONType(data)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) domain.Repository {
	return &repository{db: conn}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, occurrence *domain.Occurrence) error {
	err := r.db.WithContext(ctx).Create(occurrence).Error
	if db.IsDuplicateKeyErr(err) {
		return domain.ErrOccurrenceExists
	}
	return err
}

func (r *repository) Get(ctx context.Context, id snowflake.ID) (*domain.Occurrence, error) {
	var occurrence domain.Occurrence
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&occurrence).Error
	if err != nil {
		return nil, err
	}
	if occurrence.ID == 0 {
		return nil, nil
	}
	return &occurrence, nil
}

func (r *repository) GetByNaturalKey(ctx context.Context, key domain.NaturalKey) (*domain.Occurrence, error) {
	var occurrence domain.Occurrence
	err := r.db.WithContext(ctx).
		Table("occurrences").
		Select("occurrences.*").
		Joins("JOIN events ON events.id = occurrences.event_id").
		Joins("JOIN applications ON applications.id = events.application_id").
		Joins("JOIN projects ON projects.id = applications.project_id").
		Joins("JOIN organizations ON organizations.id = projects.org_id").
		Where("occurrences.timestamp = ?", key.Timestamp).
		Where("events.slug = ?", key.EventSlug).
		Where("applications.slug = ?", key.AppSlug).
		Where("projects.slug = ?", key.ProjectSlug).
		Where("organizations.slug = ?", key.OrgSlug).
		Limit(1).
		Find(&occurrence).Error
	if err != nil {
		return nil, err
	}
	if occurrence.ID == 0 {
		return nil, nil
	}
	return &occurrence, nil
}

func (r *repository) UpdateData(ctx context.Context, id snowflake.ID, data domain.OccurrenceData) error {
	payload := datatypesJSON(data)
	return r.db.WithContext(ctx).Exec(
		`UPDATE occurrences
		 SET data = ?, recipients = ?, updated_at = ?
		 WHERE id = ?`,
		payload,
		len(data.Recipients),
		time.Now().UTC(),
		id,
	).Error
}

func (r *repository) SetStatus(ctx context.Context, id snowflake.ID, status domain.Status) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE occurrences SET status = ?, updated_at = ? WHERE id = ?`,
		status,
		time.Now().UTC(),
		id,
	).Error
}

func (r *repository) DecrementAttempts(ctx context.Context, id snowflake.ID) (int, error) {
	if err := r.db.WithContext(ctx).Exec(
		`UPDATE occurrences SET attempts = attempts - 1, updated_at = ? WHERE id = ? AND attempts > 0`,
		time.Now().UTC(),
		id,
	).Error; err != nil {
		return 0, err
	}
	var remaining int
	if err := r.db.WithContext(ctx).Raw(
		`SELECT attempts FROM occurrences WHERE id = ?`, id,
	).Scan(&remaining).Error; err != nil {
		return 0, err
	}
	return remaining, nil
}

func (r *repository) Claim(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]domain.Occurrence, error) {
	if limit <= 0 {
		limit = 50
	}

	var claimed []domain.Occurrence
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var candidates []domain.Occurrence
		if err := tx.Raw(
			`SELECT * FROM occurrences
			 WHERE status = ? AND attempts > 0
			   AND (locked_until IS NULL OR locked_until < ?)
			 ORDER BY id
			 LIMIT ?
			 FOR UPDATE SKIP LOCKED`,
			domain.StatusNew,
			now,
			limit,
		).Scan(&candidates).Error; err != nil {
			return err
		}
		if len(candidates) == 0 {
			return nil
		}

		until := now.Add(lease)
		ids := make([]snowflake.ID, 0, len(candidates))
		for i := range candidates {
			ids = append(ids, candidates[i].ID)
			candidates[i].LockedUntil = &until
		}
		if err := tx.Exec(
			`UPDATE occurrences SET locked_until = ? WHERE id IN ?`,
			until,
			ids,
		).Error; err != nil {
			return err
		}
		claimed = candidates
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (r *repository) Release(ctx context.Context, id snowflake.ID) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE occurrences SET locked_until = NULL WHERE id = ?`,
		id,
	).Error
}

// purgeCandidate carries the per-event retention override alongside the
// occurrence's last update.
type purgeCandidate struct {
	ID            snowflake.ID
	UpdatedAt     time.Time
	RetentionDays int
}

func (r *repository) Purgeable(ctx context.Context, now time.Time, defaultRetentionDays int, limit int) ([]snowflake.ID, error) {
	if limit <= 0 {
		limit = 500
	}
	// Retention is measured in whole days, so nothing younger than a day
	// can ever be purgeable. The day arithmetic happens here rather than in
	// SQL to stay dialect-neutral, so the scan walks candidate pages by id
	// until the batch fills; a page of old-but-retained rows must not hide
	// purgeable rows behind it.
	ids := make([]snowflake.ID, 0, limit)
	var after snowflake.ID
	for len(ids) < limit {
		var candidates []purgeCandidate
		err := r.db.WithContext(ctx).Raw(
			`SELECT o.id, o.updated_at, COALESCE(e.occurrence_retention, ?) AS retention_days
			 FROM occurrences o
			 JOIN events e ON e.id = o.event_id
			 WHERE o.updated_at < ? AND o.id > ?
			 ORDER BY o.id
			 LIMIT ?`,
			defaultRetentionDays,
			now.Add(-24*time.Hour),
			after,
			limit,
		).Scan(&candidates).Error
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			break
		}

		for _, c := range candidates {
			cutoff := now.Add(-time.Duration(c.RetentionDays) * 24 * time.Hour)
			if c.UpdatedAt.Before(cutoff) {
				ids = append(ids, c.ID)
				if len(ids) == limit {
					break
				}
			}
		}
		after = candidates[len(candidates)-1].ID
	}
	return ids, nil
}

func (r *repository) Delete(ctx context.Context, ids []snowflake.ID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Exec(`DELETE FROM occurrences WHERE id IN ?`, ids)
	if result.Error != nil {
		return 0, result.Error
	}
	return int(result.RowsAffected), nil
}
