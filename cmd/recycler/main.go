package main

import (
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"community-recycle-tracker/pkg/auth"
	"community-recycle-tracker/pkg/authz"
	"community-recycle-tracker/pkg/config"
	"community-recycle-tracker/pkg/db"
	"community-recycle-tracker/pkg/featureflags"
	"community-recycle-tracker/pkg/gen"
	"community-recycle-tracker/pkg/hashistack/secretmanager"
	"community-recycle-tracker/pkg/hashistack/servicediscover"
	"community-recycle-tracker/pkg/health"
	"community-recycle-tracker/pkg/httpapi"
	"community-recycle-tracker/pkg/logger"
	"community-recycle-tracker/pkg/minio"
	"community-recycle-tracker/pkg/otelcol"
	"community-recycle-tracker/pkg/profiling"
	"community-recycle-tracker/pkg/redis"
	"community-recycle-tracker/pkg/sequence"
	"community-recycle-tracker/pkg/server"
	"community-recycle-tracker/pkg/task"
	"community-recycle-tracker/services/dashboard"
	"community-recycle-tracker/services/earnings"
	"community-recycle-tracker/services/event"
	"community-recycle-tracker/services/ledger"
	"community-recycle-tracker/services/material"
	"community-recycle-tracker/services/pricing"
	"community-recycle-tracker/services/recycler"
)

func main() {
	app := fx.New(
		secretmanager.Module,
		config.Module,
		logger.Module,
		otelcol.Module,
		profiling.Module,
		db.Module,
		redis.Module,
		sequence.Module,
		task.Client,
		gen.Module,
		featureflags.Module,
		minio.Client,
		auth.Module,
		authz.Module,
		health.Module,
		httpapi.Module,

		recycler.Module,
		recycler.HTTP,
		event.Module,
		event.HTTP,
		pricing.Module,
		pricing.HTTP,
		material.Module,
		material.HTTP,
		earnings.Module,
		earnings.HTTP,
		ledger.Module,
		ledger.HTTP,
		dashboard.Module,

		server.ProvideHTTPServer,
		servicediscover.Module,
		fx.Invoke(func(trace.TracerProvider) {}),
		fxLogger,
	)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})
