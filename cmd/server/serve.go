package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prudhvinik1/electoralsync/internal/handlers"
	"github.com/prudhvinik1/electoralsync/internal/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultGracefulTimeout = 30 * time.Second
	serverReadTimeout      = 10 * time.Second
	serverWriteTimeout     = 2 * time.Minute // full syncs run inside the request
	serverIdleTimeout      = 60 * time.Second
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the sync scheduler",
		Long: `Start the HTTP API serving electoral reference data.

When SYNC_INTERVAL is set, a full sync runs at startup and then on that
interval (with ±10% jitter).`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	router := handlers.NewServer(
		handlers.NewElectoralHandler(a.electoral, logger),
		handlers.NewSyncHandler(a.engine, a.audit, logger),
		a.auth,
		logger,
		handlers.WithHandler("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	var scheduler *services.Scheduler
	if cfg.SyncInterval > 0 {
		scheduler = services.NewScheduler(a.engine, cfg.SyncInterval, logger)
		g.Go(func() error {
			return scheduler.Start(gctx)
		})
	} else {
		logger.Info("SYNC_INTERVAL not set, scheduled sync disabled")
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")

		if scheduler != nil {
			scheduler.Stop()
		}

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), defaultGracefulTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		logger.Info("Server exited")
		return nil
	})

	return g.Wait()
}
