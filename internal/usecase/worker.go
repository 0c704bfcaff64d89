package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/user/trend-ingest/internal/repository"
)

// IngestWorker triggers a run once on start and then every interval.
type IngestWorker struct {
	runner   Runner
	interval time.Duration
	logger   *zap.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewIngestWorker creates a worker that ticks every interval.
func NewIngestWorker(runner Runner, interval time.Duration, l *zap.Logger) *IngestWorker {
	return &IngestWorker{
		runner:   runner,
		interval: interval,
		logger:   l,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start blocks until ctx is done or Stop is called.
func (w *IngestWorker) Start(ctx context.Context) {
	defer close(w.done)
	w.logger.Info("Ingest worker starting", zap.Duration("interval", w.interval))

	w.tick(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.tick(ctx)
		case <-ctx.Done():
			w.logger.Info("Ingest worker stopping", zap.String("reason", "context canceled"))
			return
		case <-w.stopCh:
			w.logger.Info("Ingest worker stopping", zap.String("reason", "stop signal"))
			return
		}
	}
}

// Stop signals the worker to stop. It is safe to call more than once.
// A run already in progress is not interrupted; cancel the ctx passed to
// Start for that.
func (w *IngestWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

// Done is closed once Start has returned, after any in-flight run has
// released its lock and recorded its status.
func (w *IngestWorker) Done() <-chan struct{} {
	return w.done
}

func (w *IngestWorker) tick(ctx context.Context) {
	result, err := w.runner.Run(ctx)
	switch {
	case errors.Is(err, repository.ErrRunInProgress):
		w.logger.Info("Skipping scheduled ingest, a run is in progress")
	case err != nil:
		w.logger.Error("Scheduled ingest failed", zap.Error(err))
	default:
		w.logger.Info("Scheduled ingest complete", zap.Int("total_processed", result.TotalProcessed))
	}
}
