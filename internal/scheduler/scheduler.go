// Package scheduler drives the outer processing loop: it claims triggered
// occurrences, runs the processor on each, and sweeps expired occurrences
// out per the retention policy. Retry policy lives here, not in the
// processor; a failed run only comes back because this loop re-claims it.
package scheduler

import (
	"context"
	"time"

	"github.com/smallbiznis/beacon/internal/clock"
	obsmetrics "github.com/smallbiznis/beacon/internal/observability/metrics"
	occurrencedomain "github.com/smallbiznis/beacon/internal/occurrence/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	Repo      occurrencedomain.Repository
	Processor occurrencedomain.Processor
	Config    Config `optional:"true"`
}

type Scheduler struct {
	db        *gorm.DB
	log       *zap.Logger
	cfg       Config
	clock     clock.Clock
	repo      occurrencedomain.Repository
	processor occurrencedomain.Processor
}

func New(p Params) *Scheduler {
	return &Scheduler{
		db:        p.DB,
		log:       p.Log.Named("scheduler"),
		cfg:       p.Config.withDefaults(),
		clock:     p.Clock,
		repo:      p.Repo,
		processor: p.Processor,
	}
}

// RunForever sweeps until the context is cancelled.
func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		s.RunOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce executes one retry sweep and one purge sweep.
func (s *Scheduler) RunOnce(ctx context.Context) {
	if err := s.ProcessPending(ctx); err != nil {
		s.log.Error("retry sweep failed", zap.Error(err))
	}
	if _, err := s.PurgeExpired(ctx); err != nil {
		s.log.Error("purge sweep failed", zap.Error(err))
	}
}

// ProcessPending claims a batch of NEW occurrences and runs the processor
// on each. The claim lease guarantees at most one concurrent Process per
// occurrence id across workers.
func (s *Scheduler) ProcessPending(ctx context.Context) error {
	now := s.clock.Now()
	claimed, err := s.repo.Claim(ctx, now, s.cfg.Lease, s.cfg.BatchSize)
	if err != nil {
		return err
	}

	for i := range claimed {
		occ := &claimed[i]
		log := s.log.With(zap.String("occurrence_id", occ.ID.String()))

		ok, err := s.processor.Process(ctx, occ.ID)
		if err != nil {
			log.Error("processing error", zap.Error(err))
		}
		if !ok {
			remaining, decErr := s.repo.DecrementAttempts(ctx, occ.ID)
			if decErr != nil {
				log.Error("failed to decrement attempts", zap.Error(decErr))
			} else if remaining <= 0 {
				if stErr := s.repo.SetStatus(ctx, occ.ID, occurrencedomain.StatusFailed); stErr != nil {
					log.Error("failed to mark occurrence failed", zap.Error(stErr))
				} else {
					log.Warn("occurrence failed permanently")
				}
			}
		}

		if relErr := s.repo.Release(ctx, occ.ID); relErr != nil {
			log.Error("failed to release occurrence lease", zap.Error(relErr))
		}
	}
	return nil
}

// PurgeExpired deletes occurrences past their retention window.
func (s *Scheduler) PurgeExpired(ctx context.Context) (int, error) {
	now := s.clock.Now()
	ids, err := s.repo.Purgeable(ctx, now, s.cfg.RetentionDays, s.cfg.BatchSize)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	deleted, err := s.repo.Delete(ctx, ids)
	if err != nil {
		return 0, err
	}
	obsmetrics.Dispatch().AddPurged(deleted)
	if deleted > 0 {
		s.log.Info("purged occurrences", zap.Int("count", deleted))
	}
	return deleted, nil
}
