package message

import (
	"github.com/smallbiznis/beacon/internal/message/repository"
	"github.com/smallbiznis/beacon/internal/message/service"
	"go.uber.org/fx"
)

var Module = fx.Module("message.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
