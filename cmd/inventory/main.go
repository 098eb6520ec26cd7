package main

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"RocketShoes/internal/config"
	"RocketShoes/internal/inventory"
	"RocketShoes/pkg/kit"
)

func main() {
	service := "inventory"
	cfg := config.Load("3333")

	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	shutdownTracer, err := kit.InitTracer(ctx, service, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal("init tracer", zap.Error(err))
	}

	var cleanup []func(context.Context) error
	cleanup = append(cleanup, shutdownTracer)

	var store inventory.Store = inventory.NewMemStore()
	if cfg.DatabaseURL != "" {
		db, err := kit.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("db connect", zap.Error(err))
		}
		cleanup = append(cleanup, func(context.Context) error { return db.Close() })

		pg := inventory.NewPostgresStore(db)
		if err := pg.Migrate(ctx); err != nil {
			log.Fatal("db migrate", zap.Error(err))
		}
		store = pg
		log.Info("inventory backed by postgres")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	h := inventory.NewHandler(&inventory.Server{Store: store, Log: log}, inventory.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: true,
		MetricsToken:   cfg.MetricsToken,
	})

	if err := kit.RunHTTPServer(":"+cfg.Port, h, log, cleanup...); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}
