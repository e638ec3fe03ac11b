package main

import (
	"context"
	"log"
	"time"

	"community-recycle-tracker/pkg/auth"
	"community-recycle-tracker/pkg/config"
	"community-recycle-tracker/pkg/db"
	"community-recycle-tracker/pkg/gen"
	"community-recycle-tracker/pkg/hashistack/secretmanager"
	"community-recycle-tracker/pkg/logger"
	"community-recycle-tracker/services/event"
	"community-recycle-tracker/services/pricing"
	"community-recycle-tracker/services/recycler"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	opts := []fx.Option{
		secretmanager.Module,
		config.Module,
		logger.Module,
		db.Module,
		gen.Module,
		auth.Module,
		db.Models(&recycler.Recycler{}, &event.Event{}, &pricing.MaterialRate{}),
		fx.Invoke(Seed),
		fx.WithLogger(func() fxevent.Logger { return fxevent.NopLogger }),
	}

	if err := fx.ValidateApp(opts...); err != nil {
		log.Fatalf("fx validation failed: %v", err)
	}

	app := fx.New(opts...)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
	if err := app.Stop(ctx); err != nil {
		zap.L().Warn("seed shutdown", zap.Error(err))
	}
}
