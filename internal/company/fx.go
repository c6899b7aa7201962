package company

import (
	"github.com/smallbiznis/vyapar/internal/company/repository"
	"github.com/smallbiznis/vyapar/internal/company/service"
	"go.uber.org/fx"
)

var Module = fx.Module("company.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
