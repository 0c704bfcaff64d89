package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/user/trend-ingest/internal/entity"
	"github.com/user/trend-ingest/internal/repository"
	"github.com/user/trend-ingest/pkg/metrics"
)

const (
	KindIngest  = "ingest"
	KindRefresh = "refresh"
)

// Runner is the entry point used by the HTTP trigger, the scheduler and the
// one-shot binary. It makes sure only one run executes at a time.
type Runner interface {
	// Run executes the ingest pipeline. It returns repository.ErrRunInProgress
	// when another run holds the lock.
	Run(ctx context.Context) (entity.IngestResult, error)
	// Refresh deletes all trend data, then runs the ingest pipeline.
	Refresh(ctx context.Context) (entity.IngestResult, error)
	// LastRun returns the most recently finished run.
	LastRun(ctx context.Context) (*entity.IngestRun, error)
}

type runnerUseCase struct {
	orchestrator Orchestrator
	store        repository.TrendStore
	lock         repository.RunLockRepository
	status       repository.RunStatusRepository
	lockTTL      time.Duration
	metrics      *metrics.Metrics
	logger       *zap.Logger
	now          func() time.Time
}

// NewRunnerUseCase creates a new instance of the runner use case.
func NewRunnerUseCase(
	orchestrator Orchestrator,
	store repository.TrendStore,
	lock repository.RunLockRepository,
	status repository.RunStatusRepository,
	lockTTL time.Duration,
	m *metrics.Metrics,
	l *zap.Logger,
) Runner {
	return &runnerUseCase{
		orchestrator: orchestrator,
		store:        store,
		lock:         lock,
		status:       status,
		lockTTL:      lockTTL,
		metrics:      m,
		logger:       l,
		now:          time.Now,
	}
}

func (uc *runnerUseCase) Run(ctx context.Context) (entity.IngestResult, error) {
	return uc.execute(ctx, KindIngest)
}

func (uc *runnerUseCase) Refresh(ctx context.Context) (entity.IngestResult, error) {
	return uc.execute(ctx, KindRefresh)
}

func (uc *runnerUseCase) LastRun(ctx context.Context) (*entity.IngestRun, error) {
	return uc.status.Last(ctx)
}

func (uc *runnerUseCase) execute(ctx context.Context, kind string) (entity.IngestResult, error) {
	log := uc.logger.With(zap.String("kind", kind))

	acquired, err := uc.lock.Acquire(ctx, uc.lockTTL)
	switch {
	case err != nil:
		log.Warn("Could not take the run lock, running without it", zap.Error(err))
	case !acquired:
		uc.metrics.IngestRunsTotal.WithLabelValues("skipped").Inc()
		return entity.IngestResult{}, repository.ErrRunInProgress
	default:
		defer func() {
			if err := uc.lock.Release(context.WithoutCancel(ctx)); err != nil {
				log.Warn("Failed to release the run lock", zap.Error(err))
			}
		}()
	}

	started := uc.now()

	if kind == KindRefresh {
		// A failed clear still re-ingests; upserts keep the data consistent.
		if err := uc.store.ClearTrendData(ctx); err != nil {
			uc.metrics.PersistErrors.WithLabelValues("clear_trend_data").Inc()
			log.Error("Failed to clear trend data", zap.Error(err))
		} else {
			log.Info("Trend data cleared")
		}
	}

	result, runErr := uc.orchestrator.Run(ctx)
	finished := uc.now()
	uc.metrics.IngestRunDuration.Observe(finished.Sub(started).Seconds())

	outcome := "success"
	if runErr != nil {
		outcome = "canceled"
		if !errors.Is(runErr, context.Canceled) && !errors.Is(runErr, context.DeadlineExceeded) {
			outcome = "failed"
		}
	}
	uc.metrics.IngestRunsTotal.WithLabelValues(outcome).Inc()

	run := &entity.IngestRun{Kind: kind, Result: result, StartedAt: started.UTC(), FinishedAt: finished.UTC()}
	if err := uc.status.Save(context.WithoutCancel(ctx), run); err != nil {
		log.Warn("Failed to record run status", zap.Error(err))
	}

	if runErr != nil {
		log.Error("Run aborted", zap.Error(runErr), zap.Int("total_processed", result.TotalProcessed))
		return result, runErr
	}
	log.Info("Run complete", zap.Int("total_processed", result.TotalProcessed),
		zap.Duration("elapsed", finished.Sub(started)))
	return result, nil
}
