package notification

import (
	"github.com/smallbiznis/beacon/internal/notification/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("notification.service",
	fx.Provide(repository.NewRepository),
)
