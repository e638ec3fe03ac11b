package main

import (
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"community-recycle-tracker/pkg/config"
	"community-recycle-tracker/pkg/db"
	"community-recycle-tracker/pkg/gen"
	"community-recycle-tracker/pkg/hashistack/secretmanager"
	"community-recycle-tracker/pkg/logger"
	"community-recycle-tracker/pkg/otelcol"
	"community-recycle-tracker/pkg/profiling"
	"community-recycle-tracker/pkg/task"
	"community-recycle-tracker/services/ledger"
	"community-recycle-tracker/services/material"
)

func main() {
	app := fx.New(
		secretmanager.Module,
		config.Module,
		logger.Module,
		otelcol.Module,
		profiling.Module,
		db.Module,
		gen.Module,
		task.Client,
		task.Server,
		ledger.Module,
		ledger.Worker,
		db.Models(&material.MaterialLog{}),
		fx.Invoke(func(trace.TracerProvider) {}),
		fxLogger,
	)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})
