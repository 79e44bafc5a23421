package organization

import (
	"github.com/orgboard/orgboard/internal/organization/repository"
	"github.com/orgboard/orgboard/internal/organization/service"
	"go.uber.org/fx"
)

var Module = fx.Module("organization.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
