package event

import (
	"github.com/smallbiznis/beacon/internal/event/repository"
	"github.com/smallbiznis/beacon/internal/event/service"
	"go.uber.org/fx"
)

var Module = fx.Module("event.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
