package purchase

import (
	"github.com/smallbiznis/vyapar/internal/purchase/repository"
	"github.com/smallbiznis/vyapar/internal/purchase/service"
	"go.uber.org/fx"
)

var Module = fx.Module("purchase.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
