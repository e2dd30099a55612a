package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"registrar/internal/enrollment/handler"
	enrollmentmetrics "registrar/internal/enrollment/metrics"
	"registrar/internal/enrollment/service"
	"registrar/internal/platform/config"
	"registrar/internal/platform/httpserver"
	"registrar/internal/platform/logger"
	"registrar/internal/platform/metrics"
)

// main wires dependencies, serves the HTTP API and runs the outbox relay until
// a signal arrives. Business logic lives in the internal service packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("registrar stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	infra, err := buildInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer infra.Close()

	svc, err := service.New(
		infra.reader,
		infra.tx,
		infra.students,
		infra.offerings,
		service.WithLogger(log),
		service.WithMetrics(enrollmentmetrics.New()),
		service.WithCollaboratorTimeout(cfg.CollaboratorTimeout),
		service.WithTracer(otel.Tracer("registrar/enrollment")),
	)
	if err != nil {
		return fmt.Errorf("build enrollment service: %w", err)
	}

	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler.New(svc, log, metrics.New(), cfg.RequestTimeout).Register(router)

	srv := httpserver.New(cfg.Addr, router, cfg.RequestTimeout)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting registrar", "addr", cfg.Addr, "store", infra.kind)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return infra.relay.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		if n, err := infra.relay.Drain(shutdownCtx); err != nil {
			log.Warn("outbox flush incomplete", "published", n, "error", err)
		}
		return nil
	})

	return g.Wait()
}
