package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/neomorfeo/habitta/internal/adapter/auth"
	"github.com/neomorfeo/habitta/internal/adapter/fsm"
	handler "github.com/neomorfeo/habitta/internal/adapter/http"
	oteladapter "github.com/neomorfeo/habitta/internal/adapter/otel"
	riveradapter "github.com/neomorfeo/habitta/internal/adapter/river"
	"github.com/neomorfeo/habitta/internal/adapter/sqlite"
	"github.com/neomorfeo/habitta/internal/app"
	"github.com/neomorfeo/habitta/internal/config"
)

const shutdownTimeout = 5 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server and the notification worker",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cmd.ErrOrStderr())
		},
	}
}

func runServe(ctx context.Context, logOut io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	return serve(ctx, cfg, logOut)
}

// serve wires every adapter and blocks until ctx is cancelled or the server fails.
func serve(ctx context.Context, cfg *config.Config, logOut io.Writer) error {
	log := newLogger(cfg, logOut)

	// --- Telemetry ---
	providers, err := oteladapter.Setup(ctx, oteladapter.ConfigFrom(cfg.Telemetry))
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Warn(ctx, "telemetry shutdown failed", err)
		}
	}()

	// --- Adapters (out) ---
	db, err := oteladapter.OpenDB(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	store, err := sqlite.NewFromDB(db)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}

	queue, err := riveradapter.Setup(ctx, db, store.Notifications(), riveradapter.Options{
		MaxWorkers: cfg.Lifecycle.QueueWorkers,
		Logger:     log,
	})
	if err != nil {
		return fmt.Errorf("queue: %w", err)
	}
	// The queue outlives ctx so in-flight notifications finish during shutdown.
	if err := queue.Start(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("starting queue: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := queue.Stop(stopCtx); err != nil {
			log.Warn(ctx, "queue shutdown failed", err)
		}
	}()

	transitions, err := oteladapter.NewTransitionMetrics(otel.GetMeterProvider())
	if err != nil {
		return err
	}

	tokens, err := auth.NewTokens(cfg.Auth)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	// --- Application ---
	traced := oteladapter.NewTracingStore(store)
	notifier := oteladapter.NewTracingNotifier(riveradapter.NewNotifier(queue))
	services := handler.Services{
		Applications: app.NewApplicationService(traced, fsm.New(), notifier, app.Options{
			AtomicEffects: cfg.Lifecycle.AtomicEffects,
			Currency:      cfg.Lifecycle.Currency,
			Logger:        log,
			Observers:     []app.Effect{transitions},
		}),
		Reviews: app.NewReviewService(traced),
		Inbox:   app.NewInboxService(traced),
	}

	// --- Adapters (in) ---
	router := handler.NewRouter(cfg.Telemetry.ServiceName, log)
	api := humachi.New(router, handler.APIConfig("habitta", cfg.Telemetry.ServiceVersion))
	handler.Register(api, services, tokens, log)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(log.WithFields(ctx, map[string]any{
			"addr":           srv.Addr,
			"atomic_effects": cfg.Lifecycle.AtomicEffects,
		}), "habitta listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info(ctx, "stopped")
	return nil
}
