package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"estates_console/internal/adapters/observability"
	"estates_console/internal/bootstrap"
	"estates_console/internal/shared"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	cfg := shared.Load()

	// stdout carries command output; logs go to stderr
	log.Logger = observability.NewLoggerTo(os.Stderr, cfg.AppEnv, cfg.LogLevel)

	root, c := newRootCmd(func(ctx context.Context) (*bootstrap.Services, error) {
		return bootstrap.New(ctx, cfg)
	})
	err := root.ExecuteContext(ctx)
	c.close()
	stop()
	if err != nil {
		os.Exit(1)
	}
}
