package repository

import (
	"context"

	"github.com/user/trend-ingest/internal/entity"
)

// ChartPage is one page of the region's most-popular chart.
type ChartPage struct {
	Items         []entity.VideoCandidate
	NextPageToken string
}

// SearchQuery describes a relevance search ordered by view count and
// restricted to short videos.
type SearchQuery struct {
	Query      string
	RegionCode string
	Language   string
	MaxResults int
}

// VideoPlatform defines the contract for the external video-platform API.
// Implementations map wire payloads into entities before returning.
type VideoPlatform interface {
	// MostPopular returns one page of the most-popular chart for a region.
	MostPopular(ctx context.Context, regionCode, pageToken string, maxResults int) (*ChartPage, error)
	// SearchVideoIDs runs a search and returns the matching video ids only.
	SearchVideoIDs(ctx context.Context, q SearchQuery) ([]string, error)
	// VideosByID resolves at most 50 ids to full video records.
	VideosByID(ctx context.Context, ids []string) ([]entity.VideoCandidate, error)
	// ChannelsByID resolves at most 50 ids to channel summaries.
	ChannelsByID(ctx context.Context, ids []string) ([]entity.ChannelSummary, error)
}
