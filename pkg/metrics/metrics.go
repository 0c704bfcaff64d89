package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors of the service.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	APICallsTotal        *prometheus.CounterVec
	CandidatesDiscovered *prometheus.CounterVec
	VideosPersisted      *prometheus.CounterVec
	PersistErrors        *prometheus.CounterVec
	IngestRunsTotal      *prometheus.CounterVec
	IngestRunDuration    prometheus.Histogram
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		APICallsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "youtube_api_calls_total",
				Help: "Calls made to the YouTube Data API.",
			},
			[]string{"endpoint", "outcome"}, // outcome: ok, quota, error
		),
		CandidatesDiscovered: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "discovered_candidates_total",
				Help: "Short video candidates accepted by a discovery strategy.",
			},
			[]string{"region", "strategy"},
		),
		VideosPersisted: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "persisted_videos_total",
				Help: "Videos written by the ingest pipeline.",
			},
			[]string{"region", "round"}, // round: initial, deep
		),
		PersistErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "persist_errors_total",
				Help: "Failed persistence operations.",
			},
			[]string{"operation"},
		),
		IngestRunsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingest_runs_total",
				Help: "Ingest runs by outcome.",
			},
			[]string{"outcome"},
		),
		IngestRunDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ingest_run_duration_seconds",
				Help:    "Wall time of complete ingest runs.",
				Buckets: []float64{10, 30, 60, 120, 300, 600, 1200},
			},
		),
	}
}
