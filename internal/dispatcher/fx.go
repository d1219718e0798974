package dispatcher

import (
	"time"

	"github.com/smallbiznis/beacon/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("dispatcher",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config, log *zap.Logger) *Registry {
	return NewRegistry(
		NewEmail(cfg.Email),
		NewWebhook(time.Duration(cfg.Webhook.TimeoutSeconds)*time.Second),
		NewLog(log),
		NewNull(),
	)
}
