package entity

import "time"

// IngestResult is the summary handed back to whoever triggered a run.
type IngestResult struct {
	Success        bool `json:"success"`
	TotalProcessed int  `json:"totalProcessed"`
}

// IngestRun records one finished run, used for status reporting.
type IngestRun struct {
	Kind       string       `json:"kind"` // "ingest" or "refresh"
	Result     IngestResult `json:"result"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
}
