package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gmartincasals/clean-orders/api"
	"github.com/gmartincasals/clean-orders/api/health"
	apiorder "github.com/gmartincasals/clean-orders/api/order"
	orderapp "github.com/gmartincasals/clean-orders/application/order"
	"github.com/gmartincasals/clean-orders/config"
	domainorder "github.com/gmartincasals/clean-orders/domain/order"
	"github.com/gmartincasals/clean-orders/infrastructure/dispatcher"
	"github.com/gmartincasals/clean-orders/infrastructure/persistence/memory"
	"github.com/gmartincasals/clean-orders/infrastructure/persistence/postgres"
	"github.com/gmartincasals/clean-orders/infrastructure/pricing"
	"github.com/gmartincasals/clean-orders/pkg/logger"
	"github.com/gmartincasals/clean-orders/ports"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// App bundles everything a running process needs to serve traffic and
// drain the outbox, plus what's needed to shut both down in order (§6).
type App struct {
	Config     *config.Config
	Router     *api.Router
	Server     *http.Server
	Pool       *pgxpool.Pool
	Dispatcher *dispatcher.Dispatcher
}

// Build wires the whole application per cfg: either the Postgres-backed
// repository/outbox/dispatcher stack, or the in-memory test doubles,
// chosen by cfg.App.UseInMemory.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := logger.Init(&cfg.Log, cfg.App.Env); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewPortAdapter()

	logger.Info("starting application",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("env", cfg.App.Env),
		zap.Bool("use_inmemory", cfg.App.UseInMemory))

	var (
		repo       domainorder.Repository
		sink       ports.EventSink
		pool       *pgxpool.Pool
		dispatch   *dispatcher.Dispatcher
		pricingSvc ports.Pricing
	)

	if cfg.App.UseInMemory {
		repo = memory.NewOrderRepository()
		sink = memory.NewNoopEventSink(cfg.IsDevelopment())
	} else {
		var err error
		pool, err = postgres.NewPool(ctx, postgres.PoolConfig{
			DSN:             cfg.Database.URL,
			MaxConns:        int32(cfg.Database.MaxOpenConns),
			MaxConnIdleTime: cfg.Database.MaxIdleTime,
			ConnectTimeout:  cfg.Database.ConnectTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}

		if err := postgres.Migrate(ctx, pool, cfg.Database.MigrationsDir); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}

		repo = postgres.NewOrderRepository(pool, ports.SystemClock{})
		sink = postgres.NewAlreadyDrainedSink(log)

		// The dispatcher gets its own pool rather than sharing the HTTP
		// server's: Dispatcher.Stop() closes the pool it was given, and
		// the two lifecycles (server listener, background poller) must
		// be stoppable independently during shutdown (§6).
		dispatcherPool, err := postgres.NewPool(ctx, postgres.PoolConfig{
			DSN:             cfg.Database.URL,
			MaxConns:        int32(cfg.Database.MaxOpenConns),
			MaxConnIdleTime: cfg.Database.MaxIdleTime,
			ConnectTimeout:  cfg.Database.ConnectTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect dispatcher pool to postgres: %w", err)
		}

		dispatch = dispatcher.New(dispatcherPool, memory.NewNoopEventSink(false), log, dispatcher.Config{
			BatchSize:    cfg.Outbox.BatchSize,
			PollInterval: durationFromMs(cfg.Outbox.PollIntervalMs),
		})
	}

	if cfg.Pricing.BaseURL != "" {
		pricingSvc = pricing.NewHTTPClient(cfg.Pricing.BaseURL)
	} else {
		pricingSvc = pricing.NewStaticCatalog()
	}

	service := orderapp.NewService(repo, pricingSvc, sink, log, ports.SystemClock{})

	healthController := health.NewController(cfg, pool)
	orderController := apiorder.NewController(service)

	router := api.NewRouter(cfg, healthController, orderController)
	router.SetupRoutes()

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.GetEngine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &App{
		Config:     cfg,
		Router:     router,
		Server:     server,
		Pool:       pool,
		Dispatcher: dispatch,
	}, nil
}

func durationFromMs(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
