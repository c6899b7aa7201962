package auth

import (
	"github.com/smallbiznis/vyapar/internal/auth/repository"
	"github.com/smallbiznis/vyapar/internal/auth/service"
	"github.com/smallbiznis/vyapar/internal/auth/token"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.Provide),
	fx.Provide(token.Provide),
	fx.Provide(service.New),
)
