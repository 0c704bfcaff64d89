package repository

import (
	"context"
	"time"

	"github.com/user/trend-ingest/internal/entity"
)

// RunLockRepository guards against overlapping ingest runs.
type RunLockRepository interface {
	// Acquire takes the lock for ttl. It reports false if someone else holds it.
	Acquire(ctx context.Context, ttl time.Duration) (bool, error)
	// Release drops the lock if this holder still owns it.
	Release(ctx context.Context) error
}

// RunStatusRepository keeps the outcome of the most recent run.
type RunStatusRepository interface {
	Save(ctx context.Context, run *entity.IngestRun) error
	// Last returns ErrNoRunRecorded when nothing was saved yet.
	Last(ctx context.Context) (*entity.IngestRun, error)
}
