package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/vyapar/internal/clock"
	"github.com/smallbiznis/vyapar/internal/config"
	"github.com/smallbiznis/vyapar/internal/migration"
	"github.com/smallbiznis/vyapar/internal/observability"
	"github.com/smallbiznis/vyapar/internal/scheduler"
	"github.com/smallbiznis/vyapar/internal/seed"
	"github.com/smallbiznis/vyapar/internal/server"
	"github.com/smallbiznis/vyapar/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		seed.Module,

		// HTTP server with every domain module
		server.Module,

		// Background jobs
		scheduler.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
