package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/build-flow-labs/qualitygate/internal/service"
)

func main() {
	cfg := service.ConfigFromEnv()
	logger := service.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := service.NewServer(cfg, logger).Start(ctx); err != nil {
		logger.Error("server stopped", "error", err)
		stop()
		os.Exit(1)
	}
}
