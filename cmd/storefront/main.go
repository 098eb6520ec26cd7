package main

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"RocketShoes/internal/cart"
	"RocketShoes/internal/config"
	"RocketShoes/internal/inventory"
	"RocketShoes/internal/kvstore"
	"RocketShoes/internal/storefront"
	"RocketShoes/pkg/kit"
)

func main() {
	service := "storefront"
	cfg := config.Load("8080")

	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	if err := cfg.ValidateStorefront(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	ctx := context.Background()

	shutdownTracer, err := kit.InitTracer(ctx, service, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal("init tracer", zap.Error(err))
	}

	kv, closeKV, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal("open storage", zap.Error(err), zap.String("driver", cfg.StorageDriver))
	}
	log.Info("cart storage ready", zap.String("driver", cfg.StorageDriver))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s := &storefront.Server{
		Sessions: storefront.NewSessions(
			kv,
			inventory.NewClient(cfg.InventoryURL, cfg.InventoryTimeout),
			log,
			cart.NewMetrics(reg),
			cfg.SessionIdle,
		),
		Tokens: storefront.NewTokenMaker(cfg.SessionSecret),
		TTL:    cfg.SessionTTL,
		Log:    log,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	go s.Sessions.Run(sweepCtx, time.Minute)
	stopSessions := func(context.Context) error {
		stopSweep()
		return nil
	}

	h := storefront.NewHandler(s, storefront.HTTPDeps{
		Log:               log,
		Service:           service,
		Registry:          reg,
		MetricsEnabled:    true,
		MetricsToken:      cfg.MetricsToken,
		SessionRatePerMin: cfg.SessionRatePerMin,
	})

	if err := kit.RunHTTPServer(":"+cfg.Port, h, log, stopSessions, closeKV, shutdownTracer); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func openStorage(ctx context.Context, cfg config.Config, log *zap.Logger) (kvstore.Store, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	switch cfg.StorageDriver {
	case config.DriverMemory:
		return kvstore.NewMemStore(), noop, nil

	case config.DriverFile:
		fs, err := kvstore.NewFileStore(cfg.StorageDir)
		if err != nil {
			return nil, nil, err
		}
		return fs, noop, nil

	case config.DriverRedis:
		rs := kvstore.NewRedisStore(cfg.RedisAddr, log)
		if err := rs.WaitReady(ctx); err != nil {
			_ = rs.Close()
			return nil, nil, err
		}
		return rs, func(context.Context) error { return rs.Close() }, nil

	case config.DriverPostgres:
		db, err := kit.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		ps := kvstore.NewPostgresStore(db)
		if err := ps.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return ps, func(context.Context) error { return db.Close() }, nil
	}

	return nil, nil, errors.New("unsupported storage driver " + cfg.StorageDriver)
}
