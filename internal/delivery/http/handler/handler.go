package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/user/trend-ingest/internal/delivery/http/response"
	"github.com/user/trend-ingest/internal/entity"
	"github.com/user/trend-ingest/internal/repository"
	"github.com/user/trend-ingest/internal/usecase"
)

const healthTimeout = 2 * time.Second

// Pinger is a dependency whose liveness is reported by the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	runner usecase.Runner
	deps   map[string]Pinger
	logger *zap.Logger

	// Triggered runs outlive their request but not the server.
	runCtx     context.Context
	cancelRuns context.CancelFunc
	mu         sync.Mutex
	closed     bool
	runs       sync.WaitGroup
}

// NewHandler creates the HTTP handler. deps are checked by name on /api/health.
func NewHandler(runner usecase.Runner, deps map[string]Pinger, l *zap.Logger) *Handler {
	runCtx, cancel := context.WithCancel(context.Background())
	return &Handler{
		runner:     runner,
		deps:       deps,
		logger:     l,
		runCtx:     runCtx,
		cancelRuns: cancel,
	}
}

// Shutdown cancels in-flight ingest runs and waits for them to return, so
// their lock release and status write land before connections are closed.
// Later trigger requests get 503.
func (h *Handler) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	h.cancelRuns()

	done := make(chan struct{})
	go func() {
		h.runs.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HandleIngest runs the pipeline synchronously and returns its summary.
func (h *Handler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	h.trigger(w, r, h.runner.Run)
}

// HandleRefresh clears trend data, re-ingests and returns the summary.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	h.trigger(w, r, h.runner.Refresh)
}

func (h *Handler) trigger(w http.ResponseWriter, r *http.Request, run func(context.Context) (entity.IngestResult, error)) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		h.writeJSONError(w, "Server is shutting down", http.StatusServiceUnavailable)
		return
	}
	h.runs.Add(1)
	h.mu.Unlock()
	defer h.runs.Done()

	// A dropped client must not abort a half-written run.
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()
	stop := context.AfterFunc(h.runCtx, cancel)
	defer stop()

	result, err := run(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrRunInProgress) {
			h.writeJSONError(w, err.Error(), http.StatusConflict)
			return
		}
		h.logger.Error("Ingest run failed", zap.String("path", r.URL.Path), zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// HandleStatus reports the last finished run.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	run, err := h.runner.LastRun(r.Context())
	if err != nil {
		if errors.Is(err, repository.ErrNoRunRecorded) {
			h.writeJSONError(w, "No ingest run recorded yet", http.StatusNotFound)
			return
		}
		h.logger.Error("Failed to get run status", zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, response.RunStatusResponse{
		Kind:           run.Kind,
		Success:        run.Result.Success,
		TotalProcessed: run.Result.TotalProcessed,
		StartedAt:      run.StartedAt,
		FinishedAt:     run.FinishedAt,
		DurationMS:     run.FinishedAt.Sub(run.StartedAt).Milliseconds(),
	})
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	status := response.HealthResponse{}
	healthy := true
	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			status[name] = "unhealthy"
			healthy = false
			h.logger.Error("Health check failed", zap.String("dependency", name), zap.Error(err))
			continue
		}
		status[name] = "healthy"
	}

	if !healthy {
		h.writeJSON(w, http.StatusServiceUnavailable, status)
		return
	}
	h.writeJSON(w, http.StatusOK, status)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, response.ErrorResponse{Error: message})
}
