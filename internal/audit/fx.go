package audit

import (
	"github.com/orgboard/orgboard/internal/audit/repository"
	"github.com/orgboard/orgboard/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
