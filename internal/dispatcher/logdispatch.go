package dispatcher

import (
	"context"

	"go.uber.org/zap"
)

// LogDispatcher writes deliveries to the application log. Useful for
// development channels and audit trails.
type LogDispatcher struct {
	log *zap.Logger
}

func NewLog(log *zap.Logger) *LogDispatcher {
	return &LogDispatcher{log: log.Named("dispatcher.log")}
}

func (d *LogDispatcher) Name() string { return "log" }

func (d *LogDispatcher) Send(ctx context.Context, payload Payload) error {
	_ = ctx
	d.log.Info("notification",
		zap.String("address", payload.Address),
		zap.String("subject", payload.Subject),
		zap.String("text", payload.Text),
	)
	return nil
}
