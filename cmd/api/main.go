package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	server "estates_console/internal/adapters/http_server"
	"estates_console/internal/adapters/observability"
	"estates_console/internal/bootstrap"
	"estates_console/internal/shared"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	svc, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
	defer func() {
		if err := svc.Close(); err != nil {
			log.Error().Err(err).Msg("store close failed")
		}
	}()

	// warm the collection once so the first request has data even if
	// the webhook host is cold
	log.Info().Int("listings", len(svc.Sync.FetchAll(ctx))).Msg("initial fetch done")

	// http
	srv := server.New(server.DefaultRequestTimeout)
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Sync:          svc.Sync,
		Calls:         svc.Calls,
		Settings:      svc.Settings,
		PublicBaseURL: cfg.PublicBaseURL,
	})
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	metricsSrv := observability.Serve(cfg.MetricsAddr, reg)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if cfg.RefreshInterval > 0 {
		g.Go(func() error {
			refresh(gctx, svc, cfg.RefreshInterval)
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if metricsSrv != nil {
			_ = metricsSrv.Shutdown(shutdownCtx)
		}
		log.Info().Msg("shutting down")
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("http server failed")
	}
}

// refresh re-reads the remote collection on a fixed interval so the
// local snapshot tracks edits made outside this console.
func refresh(ctx context.Context, svc *bootstrap.Services, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n := len(svc.Sync.FetchAll(ctx))
			log.Debug().Int("listings", n).Msg("background refresh")
		}
	}
}
