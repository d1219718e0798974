package main

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/beacon/internal/channel"
	"github.com/smallbiznis/beacon/internal/clock"
	"github.com/smallbiznis/beacon/internal/config"
	"github.com/smallbiznis/beacon/internal/dispatcher"
	"github.com/smallbiznis/beacon/internal/event"
	"github.com/smallbiznis/beacon/internal/logger"
	"github.com/smallbiznis/beacon/internal/message"
	"github.com/smallbiznis/beacon/internal/migration"
	"github.com/smallbiznis/beacon/internal/notification"
	"github.com/smallbiznis/beacon/internal/occurrence"
	"github.com/smallbiznis/beacon/internal/org"
	"github.com/smallbiznis/beacon/internal/recipient"
	"github.com/smallbiznis/beacon/internal/scheduler"
	"github.com/smallbiznis/beacon/internal/server"
	"github.com/smallbiznis/beacon/pkg/db"
	"go.uber.org/fx"
)

// The monolith: HTTP API plus the delivery scheduler in one process.
func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		org.Module,
		channel.Module,
		event.Module,
		notification.Module,
		recipient.Module,
		message.Module,
		dispatcher.Module,
		occurrence.Module,

		server.Module,
		scheduler.Module,
		fx.Invoke(StartScheduler),
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

func StartScheduler(lc fx.Lifecycle, s *scheduler.Scheduler) {
	runCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go s.RunForever(runCtx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			_ = ctx
			cancel()
			return nil
		},
	})
}
