package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/user/trend-ingest/internal/app"
	"github.com/user/trend-ingest/internal/delivery/http/handler"
	"github.com/user/trend-ingest/internal/delivery/http/router"
	"github.com/user/trend-ingest/internal/usecase"
	"github.com/user/trend-ingest/pkg/config"
	"github.com/user/trend-ingest/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("could not load config", zap.Error(err))
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		zap.NewExample().Fatal("could not build logger", zap.Error(err))
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, prometheus.DefaultRegisterer, log)
	if err != nil {
		log.Fatal("failed to initialize", zap.Error(err))
	}
	defer a.Close()

	var worker *usecase.IngestWorker
	if cfg.IngestInterval > 0 {
		worker = usecase.NewIngestWorker(a.Runner, cfg.IngestInterval, log.Named("worker"))
		go worker.Start(ctx)
	}

	apiHandler := handler.NewHandler(a.Runner, a.Deps, log.Named("http"))
	server := &http.Server{
		Addr:        ":" + cfg.ServerPort,
		Handler:     router.New(apiHandler, a.Metrics, prometheus.DefaultGatherer, log.Named("http")),
		ReadTimeout: 5 * time.Second,
		// Ingest requests block for the whole run.
		WriteTimeout: cfg.RunLockTTL,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("could not start server", zap.Error(err))
		}
	}()
	log.Info("server started", zap.String("port", cfg.ServerPort), zap.Duration("ingest_interval", cfg.IngestInterval))

	<-ctx.Done()
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// In-flight runs must release the run lock before a.Close drops Redis.
	if err := apiHandler.Shutdown(shutdownCtx); err != nil {
		log.Error("ingest runs did not finish before shutdown", zap.Error(err))
	}
	if worker != nil {
		worker.Stop()
		select {
		case <-worker.Done():
		case <-shutdownCtx.Done():
			log.Error("ingest worker did not stop before shutdown", zap.Error(shutdownCtx.Err()))
		}
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exiting")
}
