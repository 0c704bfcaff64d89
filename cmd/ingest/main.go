package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/user/trend-ingest/internal/app"
	"github.com/user/trend-ingest/internal/entity"
	"github.com/user/trend-ingest/internal/repository"
	"github.com/user/trend-ingest/pkg/config"
	"github.com/user/trend-ingest/pkg/logger"
)

func main() {
	refresh := flag.Bool("refresh", false, "delete trend data before ingesting")
	flag.Parse()

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

	a, err := app.New(ctx, cfg, prometheus.NewRegistry(), log)
	if err != nil {
		log.Fatal("failed to initialize", zap.Error(err))
	}
	defer a.Close()

	var result entity.IngestResult
	if *refresh {
		result, err = a.Runner.Refresh(ctx)
	} else {
		result, err = a.Runner.Run(ctx)
	}
	if err != nil {
		if errors.Is(err, repository.ErrRunInProgress) {
			log.Warn("another ingest run is in progress")
		} else {
			log.Error("ingest failed", zap.Error(err))
		}
		a.Close()
		_ = log.Sync()
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Error("failed to write result", zap.Error(err))
	}
}
