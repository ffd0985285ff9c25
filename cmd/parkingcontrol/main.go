package main

import (
	"github.com/smallbiznis/parkingcontrol/internal/clock"
	"github.com/smallbiznis/parkingcontrol/internal/config"
	"github.com/smallbiznis/parkingcontrol/internal/migration"
	"github.com/smallbiznis/parkingcontrol/internal/observability"
	"github.com/smallbiznis/parkingcontrol/internal/parkingspot"
	"github.com/smallbiznis/parkingcontrol/internal/server"
	"github.com/smallbiznis/parkingcontrol/pkg/db"
	"github.com/smallbiznis/parkingcontrol/pkg/lock"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		db.Module,
		clock.Module,
		lock.Module,
		migration.Module,

		// Functional Domains
		parkingspot.Module,
		server.Module,

		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
	)
	app.Run()
}
