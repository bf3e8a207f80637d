// Command worker runs the outbox dispatcher standalone, with no HTTP
// listener — a deployment split for scaling dispatcher capacity
// independently of the API (§5's "N concurrent workers").
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gmartincasals/clean-orders/config"
	"github.com/gmartincasals/clean-orders/infrastructure/dispatcher"
	"github.com/gmartincasals/clean-orders/infrastructure/persistence/memory"
	"github.com/gmartincasals/clean-orders/infrastructure/persistence/postgres"
	"github.com/gmartincasals/clean-orders/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("worker startup failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := parseConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.App.UseInMemory {
		return fmt.Errorf("the outbox worker requires a postgres-backed configuration, not app.use_inmemory")
	}

	if err := logger.Init(&cfg.Log, cfg.App.Env); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()
	log := logger.NewPortAdapter()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
		DSN:             cfg.Database.URL,
		MaxConns:        int32(cfg.Database.MaxOpenConns),
		MaxConnIdleTime: cfg.Database.MaxIdleTime,
		ConnectTimeout:  cfg.Database.ConnectTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := postgres.Migrate(ctx, pool, cfg.Database.MigrationsDir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// No broker-backed EventSink is wired: claimed events go to the
	// in-memory noop sink, which records them and echoes them to stdout
	// only in development.
	sink := memory.NewNoopEventSink(cfg.IsDevelopment())

	d := dispatcher.New(pool, sink, log, dispatcher.Config{
		BatchSize:    cfg.Outbox.BatchSize,
		PollInterval: durationFromMs(cfg.Outbox.PollIntervalMs),
	})

	logger.Info("outbox worker started",
		zap.Int("batch_size", cfg.Outbox.BatchSize),
		zap.Int("poll_interval_ms", cfg.Outbox.PollIntervalMs))

	d.Start(ctx)
	<-ctx.Done()

	logger.Info("shutdown signal received, stopping outbox worker")
	d.Stop()

	logger.Info("outbox worker stopped")
	return nil
}

func durationFromMs(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func parseConfigPath() string {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.Parse()
	return configPath
}
