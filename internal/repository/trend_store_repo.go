package repository

import (
	"context"

	"github.com/user/trend-ingest/internal/entity"
)

// TrendStore defines the persistence operations used by an ingest run.
// Upserts are keyed on platform ids, so repeated runs do not duplicate rows.
type TrendStore interface {
	// UpsertChannels inserts or updates channels keyed by platform id.
	UpsertChannels(ctx context.Context, rows []entity.ChannelRow) error
	// SelectChannelIDMap maps platform channel ids to internal ids.
	SelectChannelIDMap(ctx context.Context, platformIDs []string) (map[string]string, error)
	// UpsertVideos inserts or updates videos keyed by platform id and returns the stored rows.
	UpsertVideos(ctx context.Context, rows []entity.VideoRow) ([]entity.StoredVideo, error)
	// InsertMetrics appends one metrics point per row.
	InsertMetrics(ctx context.Context, rows []entity.MetricRow) error
	// UpsertKeywords inserts or updates keyword frequencies keyed by (keyword, region).
	UpsertKeywords(ctx context.Context, rows []entity.KeywordRow) error
	// ClearTrendData deletes metrics, then videos, then keywords.
	ClearTrendData(ctx context.Context) error
}
