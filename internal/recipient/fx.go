package recipient

import (
	"github.com/smallbiznis/beacon/internal/recipient/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("recipient.service",
	fx.Provide(repository.NewRepository),
)
