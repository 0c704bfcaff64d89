package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/user/trend-ingest/internal/analysis"
	"github.com/user/trend-ingest/internal/entity"
	"github.com/user/trend-ingest/internal/repository"
	"github.com/user/trend-ingest/pkg/metrics"
	"github.com/user/trend-ingest/pkg/utils"
)

const (
	initialTarget      = 200
	deepSearchKeywords = 5
	deepSearchTarget   = 10

	roundInitial = "initial"
	roundDeep    = "deep"
)

// Orchestrator runs the full ingest pipeline over every configured region.
type Orchestrator interface {
	Run(ctx context.Context) (entity.IngestResult, error)
}

type ingestUseCase struct {
	regions    []entity.RegionSpec
	discoverer Discoverer
	classifier *analysis.Classifier
	extractor  *analysis.KeywordExtractor
	store      repository.TrendStore
	metrics    *metrics.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// NewIngestUseCase creates a new instance of the ingest use case.
func NewIngestUseCase(
	regions []entity.RegionSpec,
	discoverer Discoverer,
	classifier *analysis.Classifier,
	extractor *analysis.KeywordExtractor,
	store repository.TrendStore,
	m *metrics.Metrics,
	l *zap.Logger,
) Orchestrator {
	return &ingestUseCase{
		regions:    regions,
		discoverer: discoverer,
		classifier: classifier,
		extractor:  extractor,
		store:      store,
		metrics:    m,
		logger:     l,
		now:        time.Now,
	}
}

// Run processes regions one at a time. Upstream and persistence failures are
// logged and reduce the total; only a canceled context is returned.
func (uc *ingestUseCase) Run(ctx context.Context) (entity.IngestResult, error) {
	uc.logger.Info("Starting multi-region ingest", zap.Int("regions", len(uc.regions)))

	total := 0
	for _, region := range uc.regions {
		if err := ctx.Err(); err != nil {
			return entity.IngestResult{TotalProcessed: total}, err
		}
		total += uc.ingestRegion(ctx, region)
	}
	if err := ctx.Err(); err != nil {
		return entity.IngestResult{TotalProcessed: total}, err
	}

	uc.logger.Info("Ingest finished", zap.Int("total_processed", total))
	return entity.IngestResult{Success: true, TotalProcessed: total}, nil
}

func (uc *ingestUseCase) ingestRegion(ctx context.Context, region entity.RegionSpec) int {
	log := uc.logger.With(zap.String("region", region.Code))
	log.Info("Processing region", zap.Int("target", initialTarget))

	initial := Dedupe(uc.classifier, uc.discoverer.Discover(ctx, DiscoverRequest{
		RegionCode:  region.Code,
		Language:    region.Language,
		Keywords:    region.SeedKeywords,
		TargetCount: initialTarget,
	}))
	processed := uc.persist(ctx, region, roundInitial, initial)

	keywords := uc.extractor.Extract(textItems(initial))
	uc.saveKeywords(ctx, region, keywords)

	// Deep search is a single bounded pass over the top keywords of the
	// initial batch; its own results never feed another round.
	top := keywords[:min(len(keywords), deepSearchKeywords)]
	for _, kw := range top {
		if ctx.Err() != nil {
			break
		}
		log.Info("Deep search", zap.String("keyword", kw.Keyword))
		batch := Dedupe(uc.classifier, uc.discoverer.Discover(ctx, DiscoverRequest{
			RegionCode:  region.Code,
			Language:    region.Language,
			Keywords:    []string{kw.Keyword},
			TargetCount: deepSearchTarget,
			ForceSearch: true,
		}))
		processed += uc.persist(ctx, region, roundDeep, batch)
	}

	log.Info("Region finished", zap.Int("processed", processed), zap.Int("keywords", len(keywords)))
	return processed
}

// persist writes channels, then videos, then metrics for one batch and
// returns how many videos the store accepted.
func (uc *ingestUseCase) persist(ctx context.Context, region entity.RegionSpec, round string, videos []entity.ClassifiedVideo) int {
	if len(videos) == 0 {
		return 0
	}
	log := uc.logger.With(zap.String("region", region.Code), zap.String("round", round))

	channelIDs := make([]string, 0, len(videos))
	for _, v := range videos {
		channelIDs = append(channelIDs, v.ChannelPlatformID)
	}
	channelIDs = utils.UniqueTrimmed(channelIDs)

	summaries := uc.discoverer.FetchChannelStats(ctx, channelIDs)
	if len(summaries) > 0 {
		if err := uc.store.UpsertChannels(ctx, channelRows(summaries, region.Code)); err != nil {
			uc.persistFailed(log, "upsert_channels", err)
		}
	}

	channelMap, err := uc.store.SelectChannelIDMap(ctx, channelIDs)
	if err != nil {
		uc.persistFailed(log, "select_channels", err)
		return 0
	}

	rows := make([]entity.VideoRow, 0, len(videos))
	for _, v := range videos {
		channelID, ok := channelMap[v.ChannelPlatformID]
		if !ok {
			continue
		}
		rows = append(rows, videoRow(v, channelID, region.Code))
	}
	if len(rows) == 0 {
		log.Warn("No videos with a stored channel", zap.Int("videos", len(videos)))
		return 0
	}

	stored, err := uc.store.UpsertVideos(ctx, rows)
	if err != nil {
		uc.persistFailed(log, "upsert_videos", err)
		return 0
	}

	videoIDs := make(map[string]string, len(stored))
	for _, s := range stored {
		videoIDs[s.PlatformID] = s.ID
	}

	recordedAt := uc.now().UTC()
	points := make([]entity.MetricRow, 0, len(stored))
	for _, v := range videos {
		id, ok := videoIDs[v.PlatformID]
		if !ok {
			continue
		}
		points = append(points, entity.MetricRow{
			VideoID:      id,
			ViewCount:    v.ViewCount,
			LikeCount:    v.LikeCount,
			CommentCount: v.CommentCount,
			RecordedAt:   recordedAt,
		})
	}
	if len(points) > 0 {
		if err := uc.store.InsertMetrics(ctx, points); err != nil {
			uc.persistFailed(log, "insert_metrics", err)
		}
	}

	uc.metrics.VideosPersisted.WithLabelValues(region.Code, round).Add(float64(len(stored)))
	log.Info("Batch persisted", zap.Int("videos", len(stored)), zap.Int("channels", len(summaries)))
	return len(stored)
}

func (uc *ingestUseCase) saveKeywords(ctx context.Context, region entity.RegionSpec, keywords []entity.KeywordStat) {
	if len(keywords) == 0 {
		return
	}
	rows := make([]entity.KeywordRow, 0, len(keywords))
	for _, k := range keywords[:min(len(keywords), analysis.MaxKeywords)] {
		rows = append(rows, entity.KeywordRow{Keyword: k.Keyword, Region: region.Code, Frequency: k.Count})
	}
	if err := uc.store.UpsertKeywords(ctx, rows); err != nil {
		uc.persistFailed(uc.logger.With(zap.String("region", region.Code)), "upsert_keywords", err)
	}
}

func (uc *ingestUseCase) persistFailed(log *zap.Logger, operation string, err error) {
	uc.metrics.PersistErrors.WithLabelValues(operation).Inc()
	log.Error("Persistence failed", zap.String("operation", operation), zap.Error(err))
}

func textItems(videos []entity.ClassifiedVideo) []analysis.TextItem {
	items := make([]analysis.TextItem, 0, len(videos))
	for _, v := range videos {
		items = append(items, analysis.TextItem{Title: v.Title, Description: v.Description})
	}
	return items
}

func channelRows(summaries []entity.ChannelSummary, regionCode string) []entity.ChannelRow {
	rows := make([]entity.ChannelRow, 0, len(summaries))
	for _, s := range summaries {
		row := entity.ChannelRow(s)
		if row.Country == "" {
			row.Country = regionCode
		}
		rows = append(rows, row)
	}
	return rows
}

func videoRow(v entity.ClassifiedVideo, channelID, regionCode string) entity.VideoRow {
	return entity.VideoRow{
		PlatformID:   v.PlatformID,
		ChannelID:    channelID,
		Title:        v.Title,
		Description:  v.Description,
		PublishedAt:  v.PublishedAt,
		ThumbnailURL: v.ThumbnailURL,
		Duration:     v.Duration,
		Region:       regionCode,
		IsKids:       v.IsKids,
		IsHighRPM:    v.IsHighRPM,
		IsFaceless:   v.IsFaceless,
		AudioInfo:    v.AudioInfo,
	}
}
