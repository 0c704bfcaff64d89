package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/user/trend-ingest/internal/entity"
	"github.com/user/trend-ingest/internal/repository"
	"github.com/user/trend-ingest/pkg/metrics"
)

func newTestMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func short(id, channel, title string) entity.VideoCandidate {
	return entity.VideoCandidate{
		PlatformID:        id,
		ChannelPlatformID: channel,
		Title:             title,
		Duration:          "PT30S",
		DurationSeconds:   30,
		ViewCount:         100,
		LikeCount:         10,
		CommentCount:      1,
	}
}

func long(id, channel, title string) entity.VideoCandidate {
	v := short(id, channel, title)
	v.Duration = "PT5M"
	v.DurationSeconds = 300
	return v
}

// fakePlatform serves canned responses keyed by page token, query and id.
type fakePlatform struct {
	mu sync.Mutex

	chart       map[string]repository.ChartPage // page token -> page, "" is the first page
	chartErr    map[string]error
	search      map[string][]string // query -> ids
	searchErr   map[string]error
	videos      map[string]entity.VideoCandidate
	videosErr   error
	channels    map[string]entity.ChannelSummary
	channelsErr map[int]error // 1-based call number -> error

	chartCalls     int
	queries        []string
	searchRequests []repository.SearchQuery
	channelBatches [][]string
}

func (f *fakePlatform) MostPopular(_ context.Context, _, pageToken string, _ int) (*repository.ChartPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chartCalls++
	if err := f.chartErr[pageToken]; err != nil {
		return nil, err
	}
	page, ok := f.chart[pageToken]
	if !ok {
		return &repository.ChartPage{}, nil
	}
	return &page, nil
}

func (f *fakePlatform) SearchVideoIDs(_ context.Context, q repository.SearchQuery) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q.Query)
	f.searchRequests = append(f.searchRequests, q)
	if err := f.searchErr[q.Query]; err != nil {
		return nil, err
	}
	return f.search[q.Query], nil
}

func (f *fakePlatform) VideosByID(_ context.Context, ids []string) ([]entity.VideoCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.videosErr != nil {
		return nil, f.videosErr
	}
	var out []entity.VideoCandidate
	for _, id := range ids {
		if v, ok := f.videos[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakePlatform) ChannelsByID(_ context.Context, ids []string) ([]entity.ChannelSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channelBatches = append(f.channelBatches, ids)
	if err := f.channelsErr[len(f.channelBatches)]; err != nil {
		return nil, err
	}
	var out []entity.ChannelSummary
	for _, id := range ids {
		if c, ok := f.channels[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// memoryStore is an in-memory TrendStore with the same upsert keys as the
// Postgres tables.
type memoryStore struct {
	mu sync.Mutex

	channels   map[string]entity.ChannelRow
	channelIDs map[string]string
	videos     map[string]entity.VideoRow
	videoIDs   map[string]string
	metrics    []entity.MetricRow
	keywords   map[string]entity.KeywordRow
	cleared    int

	upsertVideosErr error
	clearErr        error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		channels:   make(map[string]entity.ChannelRow),
		channelIDs: make(map[string]string),
		videos:     make(map[string]entity.VideoRow),
		videoIDs:   make(map[string]string),
		keywords:   make(map[string]entity.KeywordRow),
	}
}

func (s *memoryStore) UpsertChannels(_ context.Context, rows []entity.ChannelRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		if _, ok := s.channelIDs[r.PlatformID]; !ok {
			s.channelIDs[r.PlatformID] = fmt.Sprintf("channel-%d", len(s.channelIDs)+1)
		}
		s.channels[r.PlatformID] = r
	}
	return nil
}

func (s *memoryStore) SelectChannelIDMap(_ context.Context, platformIDs []string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string)
	for _, id := range platformIDs {
		if internal, ok := s.channelIDs[id]; ok {
			out[id] = internal
		}
	}
	return out, nil
}

func (s *memoryStore) UpsertVideos(_ context.Context, rows []entity.VideoRow) ([]entity.StoredVideo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertVideosErr != nil {
		return nil, s.upsertVideosErr
	}
	out := make([]entity.StoredVideo, 0, len(rows))
	for _, r := range rows {
		if _, ok := s.videoIDs[r.PlatformID]; !ok {
			s.videoIDs[r.PlatformID] = fmt.Sprintf("video-%d", len(s.videoIDs)+1)
		}
		s.videos[r.PlatformID] = r
		out = append(out, entity.StoredVideo{ID: s.videoIDs[r.PlatformID], PlatformID: r.PlatformID})
	}
	return out, nil
}

func (s *memoryStore) InsertMetrics(_ context.Context, rows []entity.MetricRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = append(s.metrics, rows...)
	return nil
}

func (s *memoryStore) UpsertKeywords(_ context.Context, rows []entity.KeywordRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.keywords[r.Keyword+"|"+r.Region] = r
	}
	return nil
}

func (s *memoryStore) ClearTrendData(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clearErr != nil {
		return s.clearErr
	}
	s.cleared++
	s.metrics = nil
	s.videos = make(map[string]entity.VideoRow)
	s.videoIDs = make(map[string]string)
	s.keywords = make(map[string]entity.KeywordRow)
	return nil
}

type fakeLock struct {
	mu       sync.Mutex
	held     bool
	err      error
	released int
}

func (l *fakeLock) Acquire(context.Context, time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return false, l.err
	}
	if l.held {
		return false, nil
	}
	l.held = true
	return true, nil
}

func (l *fakeLock) Release(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held = false
	l.released++
	return nil
}

type fakeStatus struct {
	mu   sync.Mutex
	last *entity.IngestRun
}

func (s *fakeStatus) Save(_ context.Context, run *entity.IngestRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = run
	return nil
}

func (s *fakeStatus) Last(context.Context) (*entity.IngestRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return nil, repository.ErrNoRunRecorded
	}
	return s.last, nil
}
