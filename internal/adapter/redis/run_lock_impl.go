package redis

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/user/trend-ingest/internal/repository"
)

const runLockKey = "trend-ingest:run-lock"

// releaseScript deletes the lock only if it still carries our token, so an
// expired lock taken over by another process is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RunLockRepoImpl provides a concrete implementation for the RunLockRepository interface using Redis.
type RunLockRepoImpl struct {
	client *redis.Client

	mu    sync.Mutex
	token string
}

var _ repository.RunLockRepository = (*RunLockRepoImpl)(nil)

// NewRunLockRepo creates a new instance of RunLockRepoImpl.
func NewRunLockRepo(client *redis.Client) *RunLockRepoImpl {
	return &RunLockRepoImpl{client: client}
}

// Acquire sets the lock key with SET NX and the given expiry.
func (r *RunLockRepoImpl) Acquire(ctx context.Context, ttl time.Duration) (bool, error) {
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, runLockKey, token, ttl).Result()
	if err != nil || !ok {
		return false, err
	}

	r.mu.Lock()
	r.token = token
	r.mu.Unlock()
	return true, nil
}

// Release removes the lock if this holder still owns it.
func (r *RunLockRepoImpl) Release(ctx context.Context) error {
	r.mu.Lock()
	token := r.token
	r.token = ""
	r.mu.Unlock()

	if token == "" {
		return nil
	}
	return releaseScript.Run(ctx, r.client, []string{runLockKey}, token).Err()
}
