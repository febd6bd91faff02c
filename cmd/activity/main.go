package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/example/ott-platform/internal/catalog"
	"github.com/example/ott-platform/internal/handlers"
	"github.com/example/ott-platform/internal/idempotency"
	"github.com/example/ott-platform/internal/platform/analytics"
	"github.com/example/ott-platform/internal/platform/auth"
	"github.com/example/ott-platform/internal/platform/config"
	"github.com/example/ott-platform/internal/platform/db"
	"github.com/example/ott-platform/internal/platform/httpserver"
	"github.com/example/ott-platform/internal/platform/logging"
	"github.com/example/ott-platform/internal/platform/natsconn"
	"github.com/example/ott-platform/internal/platform/run"
	"github.com/example/ott-platform/internal/progress"
	"github.com/example/ott-platform/internal/worker"
)

const idempotencyTTL = 24 * time.Hour

func main() {
	// All wiring lives in service so its defers unwind before the process
	// exits; os.Exit in main's body would skip them.
	run.Exit(service())
}

func service() int {
	cfg, cfgErr := config.Load()

	log, err := logging.New(cfg.ServiceName, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if cfgErr != nil {
		log.Error("invalid configuration", zap.Error(cfgErr))
		return 1
	}

	var (
		pool  *pgxpool.Pool
		store progress.Store
		cat   catalog.Catalog
	)
	if cfg.DatabaseURL != "" {
		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			log.Error("migrate", zap.Error(err))
			return 1
		}
		pool, err = db.Open(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Error("db open", zap.Error(err))
			return 1
		}
		defer pool.Close()
		store = progress.NewPostgresStore(pool)
		cat = catalog.NewPostgresCatalog(pool)
	} else {
		log.Warn("no DATABASE_URL configured, using the file-backed store",
			zap.String("data_dir", cfg.DataDir))
		store = progress.NewLocalStore(filepath.Join(cfg.DataDir, "watch-history.json"))
		fc, err := catalog.NewFromFile(cfg.CatalogPath)
		if err != nil {
			log.Error("load catalog file", zap.String("path", cfg.CatalogPath), zap.Error(err))
			return 1
		}
		cat = fc
	}

	var (
		nc *nats.Conn
		js nats.JetStreamContext
	)
	if cfg.NATSURL != "" {
		nc, err = natsconn.Connect(natsconn.Options{URL: cfg.NATSURL})
		if err != nil {
			log.Warn("nats unavailable, async writes disabled", zap.Error(err))
			nc = nil
		} else {
			defer func() { _ = nc.Drain() }()
			js, err = nc.JetStream()
			if err != nil {
				log.Warn("jetstream unavailable, async writes disabled", zap.Error(err))
				js = nil
			}
		}
	}
	publisher := handlers.NewEventPublisher(js, cfg.AsyncWrites)
	events := analytics.New(js, log)

	var dedup idempotency.Store
	if nc != nil {
		dedup, err = idempotency.NewStore(cfg.RedisDSN, pool, idempotencyTTL, cfg.IsProduction())
		if err != nil {
			log.Error("idempotency store", zap.Error(err))
			return 1
		}
	}

	r := chi.NewRouter()
	httpserver.SetupRouter(r, httpserver.RouterConfig{
		ReadyFunc: func() error {
			if pool == nil {
				return nil
			}
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Ping(ctx)
		},
	})
	handlers.MountRoutes(r, handlers.Deps{
		Store:     store,
		Catalog:   cat,
		Publisher: publisher,
		Analytics: events,
		Verifier:  auth.JWTVerifier{Secret: []byte(cfg.JWTSecret)},
	})

	srv := httpserver.New(httpserver.Options{Addr: cfg.HTTP.Addr, Router: r})
	runner := run.New(log)

	code := runner.WithSignals(func(ctx context.Context) error {
		if nc != nil {
			if err := worker.StartProgressConsumer(ctx, worker.Options{
				Conn:   nc,
				Store:  store,
				Dedup:  dedup,
				Logger: log,
			}); err != nil {
				log.Warn("progress consumer not started", zap.Error(err))
			}
		}
		return srv.Start(log)
	})
	runner.Graceful(srv.Shutdown)
	return code
}
