package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/user/trend-ingest/internal/entity"
	"github.com/user/trend-ingest/internal/repository"
)

const (
	runHistoryKey = "trend-ingest:runs"
	runHistoryLen = 20
)

// RunStatusRepoImpl keeps the most recent runs in a Redis list, newest first.
type RunStatusRepoImpl struct {
	client *redis.Client
}

var _ repository.RunStatusRepository = (*RunStatusRepoImpl)(nil)

// NewRunStatusRepo creates a new instance of RunStatusRepoImpl.
func NewRunStatusRepo(client *redis.Client) *RunStatusRepoImpl {
	return &RunStatusRepoImpl{client: client}
}

// Save pushes run to the head of the history and trims it.
func (r *RunStatusRepoImpl) Save(ctx context.Context, run *entity.IngestRun) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encode run: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, runHistoryKey, data)
	pipe.LTrim(ctx, runHistoryKey, 0, runHistoryLen-1)
	_, err = pipe.Exec(ctx)
	return err
}

// Last returns the newest run or repository.ErrNoRunRecorded.
func (r *RunStatusRepoImpl) Last(ctx context.Context) (*entity.IngestRun, error) {
	data, err := r.client.LIndex(ctx, runHistoryKey, 0).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrNoRunRecorded
	}
	if err != nil {
		return nil, err
	}

	var run entity.IngestRun
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("decode run: %w", err)
	}
	return &run, nil
}
