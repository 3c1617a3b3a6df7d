package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/addonhook/internal/activity"
	"github.com/smallbiznis/addonhook/internal/addon"
	"github.com/smallbiznis/addonhook/internal/cancellation"
	"github.com/smallbiznis/addonhook/internal/clock"
	"github.com/smallbiznis/addonhook/internal/config"
	"github.com/smallbiznis/addonhook/internal/customer"
	"github.com/smallbiznis/addonhook/internal/gateway"
	"github.com/smallbiznis/addonhook/internal/hooks"
	"github.com/smallbiznis/addonhook/internal/invoice"
	"github.com/smallbiznis/addonhook/internal/localapi"
	"github.com/smallbiznis/addonhook/internal/lock"
	"github.com/smallbiznis/addonhook/internal/logger"
	"github.com/smallbiznis/addonhook/internal/migration"
	"github.com/smallbiznis/addonhook/internal/observability"
	"github.com/smallbiznis/addonhook/internal/providers"
	"github.com/smallbiznis/addonhook/internal/server"
	"github.com/smallbiznis/addonhook/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Stores and providers
		activity.Module,
		addon.Module,
		customer.Module,
		invoice.Module,
		providers.Module,
		gateway.Module,
		localapi.Module,
		lock.Module,

		// Hooks
		hooks.Module,
		cancellation.Module,

		server.Module,

		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
	)
	app.Run()
}

func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
