package rawmaterial

import (
	"github.com/smallbiznis/vyapar/internal/rawmaterial/repository"
	"github.com/smallbiznis/vyapar/internal/rawmaterial/service"
	"go.uber.org/fx"
)

var Module = fx.Module("rawmaterial.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
