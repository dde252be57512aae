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

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"permitdesk/internal/draft"
	"permitdesk/internal/draft/autosave"
	"permitdesk/internal/draft/store"
	"permitdesk/internal/platform/config"
	"permitdesk/internal/platform/health"
	"permitdesk/internal/platform/httpserver"
	"permitdesk/internal/platform/logger"
	"permitdesk/internal/platform/metrics"
	"permitdesk/internal/platform/middleware"
	"permitdesk/internal/submit"
	"permitdesk/internal/wizard/handler"
	"permitdesk/internal/wizard/service"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal service packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "permitdesk: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New()
	m := metrics.New()

	healthHandler := health.New(cfg.Environment)

	var kv store.KV
	if cfg.DBPath != "" {
		db, err := store.OpenSQLite(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open draft store: %w", err)
		}
		defer db.Close()
		healthHandler.RegisterCheck("draft_store", func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return db.Ping(pingCtx)
		})
		kv = db
		log.Info("draft store ready", "backend", "sqlite", "path", cfg.DBPath)
	} else {
		kv = store.NewInMemory()
		log.Info("draft store ready", "backend", "memory")
	}

	persister := draft.New(kv, draft.WithLogger(log))
	wizard := service.New(persister, submit.NewLocal(submit.WithLogger(log)),
		service.WithLogger(log),
		service.WithMetrics(m),
	)
	wizard.Restore(ctx)

	worker := autosave.New(wizard, persister,
		autosave.WithLogger(log),
		autosave.WithInterval(cfg.AutosaveInterval),
		autosave.WithMetrics(m),
	)

	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)

	healthHandler.Register(r)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api/v1", func(r chi.Router) {
		handler.New(wizard, persister, log).Register(r)
	})

	srv := httpserver.New(cfg.Addr, r)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := worker.Start(gCtx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("autosave worker: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// Persist whatever the citizen had in progress before going down.
		if err := wizard.SaveNow(shutdownCtx); err != nil {
			log.Warn("final draft save failed", "error", err)
		}

		log.Info("shutting down server gracefully")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}
