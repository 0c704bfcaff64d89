package usecase

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/user/trend-ingest/internal/analysis"
	"github.com/user/trend-ingest/internal/entity"
	"github.com/user/trend-ingest/internal/repository"
	"github.com/user/trend-ingest/pkg/metrics"
	"github.com/user/trend-ingest/pkg/utils"
)

const (
	chartMaxPages  = 10
	batchSize      = 50 // API ceiling for page size and id lookups
	shortsTag      = "#Shorts"
	japaneseRegion = "JP"

	strategyChart  = "chart"
	strategySearch = "search"
)

// DiscoverRequest describes one discovery call for a region.
type DiscoverRequest struct {
	RegionCode  string
	Language    string
	Keywords    []string
	TargetCount int
	// ForceSearch skips the chart scan and issues one search per keyword.
	ForceSearch bool
}

// Discoverer finds short video candidates and channel statistics on the
// video platform. Upstream failures never surface to the caller; they
// shrink the result instead.
type Discoverer interface {
	Discover(ctx context.Context, req DiscoverRequest) []entity.VideoCandidate
	FetchChannelStats(ctx context.Context, channelIDs []string) []entity.ChannelSummary
}

type discoveryUseCase struct {
	platform repository.VideoPlatform
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewDiscoveryUseCase creates a new instance of the discovery use case.
func NewDiscoveryUseCase(platform repository.VideoPlatform, m *metrics.Metrics, l *zap.Logger) Discoverer {
	return &discoveryUseCase{
		platform: platform,
		metrics:  m,
		logger:   l,
	}
}

// Discover runs the chart scan, then the search backfill if the target was
// not reached. The result may contain duplicates and may overshoot the target.
func (uc *discoveryUseCase) Discover(ctx context.Context, req DiscoverRequest) []entity.VideoCandidate {
	log := uc.logger.With(zap.String("region", req.RegionCode), zap.Bool("force_search", req.ForceSearch))

	var shorts []entity.VideoCandidate
	if !req.ForceSearch {
		shorts = uc.scanChart(ctx, req, log)
		log.Info("Chart scan finished", zap.Int("shorts", len(shorts)))
	}

	if req.ForceSearch || len(shorts) < req.TargetCount {
		for _, query := range searchQueries(req) {
			if len(shorts) >= req.TargetCount || ctx.Err() != nil {
				break
			}
			found := uc.searchShorts(ctx, req, query, log)
			uc.metrics.CandidatesDiscovered.WithLabelValues(req.RegionCode, strategySearch).Add(float64(len(found)))
			shorts = append(shorts, found...)
		}
	}

	log.Info("Discovery finished", zap.Int("candidates", len(shorts)))
	return shorts
}

func (uc *discoveryUseCase) scanChart(ctx context.Context, req DiscoverRequest, log *zap.Logger) []entity.VideoCandidate {
	var shorts []entity.VideoCandidate
	pageToken := ""

	for page := 1; page <= chartMaxPages; page++ {
		if len(shorts) >= req.TargetCount || ctx.Err() != nil {
			break
		}

		resp, err := uc.platform.MostPopular(ctx, req.RegionCode, pageToken, batchSize)
		if err != nil {
			logUpstreamError(log, "Chart page request failed", err, zap.Int("page", page))
			break
		}

		var pageShorts int
		for _, item := range resp.Items {
			if analysis.IsShort(item.DurationSeconds) {
				shorts = append(shorts, item)
				pageShorts++
			}
		}
		uc.metrics.CandidatesDiscovered.WithLabelValues(req.RegionCode, strategyChart).Add(float64(pageShorts))
		log.Debug("Chart page scanned", zap.Int("page", page), zap.Int("shorts", pageShorts))

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return shorts
}

// searchQueries builds the backfill queries. A plain run tries the OR-joined
// seeds and then the bare tag; a forced run searches each keyword on its own.
func searchQueries(req DiscoverRequest) []string {
	if req.ForceSearch {
		queries := make([]string, 0, len(req.Keywords))
		for _, k := range req.Keywords {
			queries = append(queries, k+" "+shortsTag)
		}
		return queries
	}

	var queries []string
	if len(req.Keywords) > 0 {
		queries = append(queries, strings.Join(req.Keywords, "|")+" "+shortsTag)
	}
	return append(queries, shortsTag)
}

func (uc *discoveryUseCase) searchShorts(ctx context.Context, req DiscoverRequest, query string, log *zap.Logger) []entity.VideoCandidate {
	log = log.With(zap.String("query", query))

	ids, err := uc.platform.SearchVideoIDs(ctx, repository.SearchQuery{
		Query:      query,
		RegionCode: req.RegionCode,
		Language:   req.Language,
		MaxResults: batchSize,
	})
	if err != nil {
		logUpstreamError(log, "Search request failed", err)
		return nil
	}
	if len(ids) == 0 {
		return nil
	}
	if len(ids) > batchSize {
		ids = ids[:batchSize]
	}

	details, err := uc.platform.VideosByID(ctx, ids)
	if err != nil {
		logUpstreamError(log, "Video details request failed", err, zap.Int("ids", len(ids)))
		return nil
	}

	var shorts []entity.VideoCandidate
	for _, item := range details {
		if !analysis.IsShort(item.DurationSeconds) {
			continue
		}
		if req.RegionCode == japaneseRegion &&
			!analysis.ContainsJapanese(item.Title) && !analysis.ContainsJapanese(item.Description) {
			continue
		}
		shorts = append(shorts, item)
	}
	return shorts
}

// FetchChannelStats looks up channels in batches of 50. Failed batches are
// logged and skipped.
func (uc *discoveryUseCase) FetchChannelStats(ctx context.Context, channelIDs []string) []entity.ChannelSummary {
	ids := utils.UniqueTrimmed(channelIDs)
	if len(ids) == 0 {
		uc.logger.Debug("No channel ids left after cleaning")
		return nil
	}

	var out []entity.ChannelSummary
	for i, chunk := range utils.Chunk(ids, batchSize) {
		if ctx.Err() != nil {
			break
		}
		channels, err := uc.platform.ChannelsByID(ctx, chunk)
		if err != nil {
			logUpstreamError(uc.logger, "Channel stats request failed", err,
				zap.Int("chunk", i+1), zap.Int("ids", len(chunk)))
			continue
		}
		out = append(out, channels...)
	}
	return out
}

func logUpstreamError(log *zap.Logger, msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if errors.Is(err, repository.ErrQuotaExceeded) {
		log.Error(msg+", quota exhausted", fields...)
		return
	}
	log.Warn(msg, fields...)
}
