package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/orgboard/orgboard/internal/audit"
	"github.com/orgboard/orgboard/internal/config"
	"github.com/orgboard/orgboard/internal/identity"
	"github.com/orgboard/orgboard/internal/logger"
	"github.com/orgboard/orgboard/internal/migration"
	"github.com/orgboard/orgboard/internal/observability"
	"github.com/orgboard/orgboard/internal/organization"
	"github.com/orgboard/orgboard/internal/server"
	"github.com/orgboard/orgboard/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		migration.Module,

		identity.Module,
		audit.Module,
		organization.Module,
		server.Module,
	)
	app.Run()
}

func registerSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
