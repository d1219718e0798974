package org

import (
	"github.com/smallbiznis/beacon/internal/org/repository"
	"github.com/smallbiznis/beacon/internal/org/service"
	"go.uber.org/fx"
)

var Module = fx.Module("org.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
