package channel

import (
	"github.com/smallbiznis/beacon/internal/channel/repository"
	"github.com/smallbiznis/beacon/internal/channel/service"
	"go.uber.org/fx"
)

var Module = fx.Module("channel.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
