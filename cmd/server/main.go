// Command server runs the HTTP API and, when Postgres-backed, the outbox
// dispatcher in the same process — a deployment the spec explicitly
// allows (§5: "a single process may host zero or more dispatcher workers
// and a use-case serving path concurrently").
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gmartincasals/clean-orders/cmd"
	"github.com/gmartincasals/clean-orders/config"
	"github.com/gmartincasals/clean-orders/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("server startup failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := parseConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app, err := cmd.Build(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}
	defer logger.Sync()

	if app.Dispatcher != nil {
		app.Dispatcher.Start(ctx)
		logger.Info("outbox dispatcher started",
			zap.Int("batch_size", cfg.Outbox.BatchSize),
			zap.Int("poll_interval_ms", cfg.Outbox.PollIntervalMs))
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", app.Server.Addr))
		if err := app.Server.ListenAndServe(); err != nil {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		logger.Error("http server error", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := app.Server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", zap.Error(err))
	}

	if app.Dispatcher != nil {
		app.Dispatcher.Stop()
	}
	if app.Pool != nil {
		app.Pool.Close()
	}

	logger.Info("shutdown complete")
	return nil
}

func parseConfigPath() string {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.Parse()
	return configPath
}
