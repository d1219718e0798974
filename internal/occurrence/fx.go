package occurrence

import (
	"github.com/smallbiznis/beacon/internal/occurrence/repository"
	"github.com/smallbiznis/beacon/internal/occurrence/service"
	"go.uber.org/fx"
)

var Module = fx.Module("occurrence.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewProcessor),
)
