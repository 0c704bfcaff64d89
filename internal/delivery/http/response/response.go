package response

import "time"

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RunStatusResponse is a DTO for the last finished run, mirroring entity.IngestRun.
type RunStatusResponse struct {
	Kind           string    `json:"kind"`
	Success        bool      `json:"success"`
	TotalProcessed int       `json:"totalProcessed"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	DurationMS     int64     `json:"duration_ms"`
}

// HealthResponse maps each dependency to "healthy" or "unhealthy".
type HealthResponse map[string]string
