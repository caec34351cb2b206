package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/koomyhq/koomy/internal/cache"
	"github.com/koomyhq/koomy/internal/clock"
	"github.com/koomyhq/koomy/internal/config"
	"github.com/koomyhq/koomy/internal/migration"
	"github.com/koomyhq/koomy/internal/observability"
	"github.com/koomyhq/koomy/internal/scheduler"
	"github.com/koomyhq/koomy/internal/server"
	"github.com/koomyhq/koomy/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		cache.Module,
		server.Module,
		migration.Module,
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
