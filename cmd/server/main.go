package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nfrund/signin/internal/config"
	"github.com/nfrund/signin/internal/logging"
	"github.com/nfrund/signin/internal/server"
)

func main() {
	cfg := config.New()
	logger := logging.New(cfg.GetLogFormat(), cfg.GetLogLevel())

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	s, err := server.New(cfg, server.WithLogger(logger))
	if err != nil {
		logger.Error("Failed to initialize server", "error", err)
		os.Exit(1)
	}
	s.RegisterRoutes()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := s.Start(ctx, cfg.GetServerAddr()); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}
