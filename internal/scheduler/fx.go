package scheduler

import (
	"time"

	"github.com/smallbiznis/beacon/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("scheduler",
	fx.Provide(NewFromConfig),
	fx.Provide(New),
)

func NewFromConfig(cfg config.Config) Config {
	return Config{
		Interval:      time.Duration(cfg.SchedulerInterval) * time.Second,
		BatchSize:     cfg.SchedulerBatchSize,
		RetentionDays: cfg.OccurrenceRetentionDays,
	}
}
