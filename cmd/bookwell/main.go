package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/bookwell/adapter/cli"
	"github.com/felixgeelhaar/bookwell/adapter/cli/booking"
	"github.com/felixgeelhaar/bookwell/adapter/cli/service"
	"github.com/felixgeelhaar/bookwell/internal/app"
	"github.com/felixgeelhaar/bookwell/pkg/config"
	"github.com/felixgeelhaar/bookwell/pkg/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(logConfig(cfg))
	slog.SetDefault(logger)
	cli.SetLogger(logger)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		if !cfg.IsDevelopment() {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
		// version and help still work without a database
		logger.Warn("failed to initialize container, running in limited mode", "error", err)
	} else {
		defer container.Close()

		userID, err := uuid.Parse(cfg.UserID)
		if err != nil {
			logger.Error("invalid BOOKWELL_USER_ID", "error", err)
			os.Exit(1)
		}
		cli.SetApp(cli.NewApp(container, userID))
	}

	cli.AddCommand(booking.Cmd)
	cli.AddCommand(service.Cmd)

	cli.Execute(ctx)
}

func logConfig(cfg *config.Config) observability.LogConfig {
	logCfg := observability.DefaultLogConfig()
	if cfg.IsProduction() {
		logCfg = observability.ProductionLogConfig()
	}
	if cfg.LogLevel != "" {
		logCfg.Level = observability.LogLevel(cfg.LogLevel)
	}
	if cfg.LogFormat != "" {
		logCfg.Format = observability.LogFormat(cfg.LogFormat)
	}
	logCfg.ServiceVersion = cli.Version
	return logCfg
}
