package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/user/trend-ingest/internal/entity"
	"github.com/user/trend-ingest/internal/repository"
	"github.com/user/trend-ingest/pkg/metrics"
)

// MaxBatch is the API ceiling for ids per detail lookup and results per page.
const MaxBatch = 50

var videoParts = []string{"snippet", "statistics", "contentDetails", "status"}

// ClientConfig configures the YouTube Data API client.
type ClientConfig struct {
	APIKey    string
	Endpoint  string        // overrides the API base URL when set
	Timeout   time.Duration // per request
	RateLimit float64       // requests per second
	RateBurst int

	// HTTPClient replaces the key-authenticated transport, for tests.
	HTTPClient *http.Client
}

// Client implements repository.VideoPlatform on top of the YouTube Data API v3.
// One Client is built at process start and shared by the whole pipeline.
type Client struct {
	svc     *yt.Service
	limiter *rate.Limiter
	timeout time.Duration
	metrics *metrics.Metrics
	logger  *zap.Logger
}

var _ repository.VideoPlatform = (*Client)(nil)

// NewClient creates a new YouTube client.
func NewClient(ctx context.Context, cfg ClientConfig, m *metrics.Metrics, l *zap.Logger) (*Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 5
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 1
	}

	var opts []option.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	} else {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}

	svc, err := yt.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	return &Client{
		svc:     svc,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		timeout: cfg.Timeout,
		metrics: m,
		logger:  l,
	}, nil
}

// MostPopular returns one page of the region's most-popular chart.
func (c *Client) MostPopular(ctx context.Context, regionCode, pageToken string, maxResults int) (*repository.ChartPage, error) {
	ctx, cancel, err := c.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	call := c.svc.Videos.List(videoParts).
		Chart("mostPopular").
		RegionCode(regionCode).
		MaxResults(int64(clampBatch(maxResults)))
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, c.fail("videos.chart", err)
	}
	c.ok("videos.chart")

	page := &repository.ChartPage{NextPageToken: resp.NextPageToken}
	for _, item := range resp.Items {
		if item != nil {
			page.Items = append(page.Items, toCandidate(item))
		}
	}
	return page, nil
}

// SearchVideoIDs runs a short-video search ordered by view count.
func (c *Client) SearchVideoIDs(ctx context.Context, q repository.SearchQuery) ([]string, error) {
	ctx, cancel, err := c.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	call := c.svc.Search.List([]string{"snippet"}).
		Q(q.Query).
		Type("video").
		VideoDuration("short").
		Order("viewCount").
		MaxResults(int64(clampBatch(q.MaxResults)))
	if q.RegionCode != "" {
		call = call.RegionCode(q.RegionCode)
	}
	if q.Language != "" {
		call = call.RelevanceLanguage(q.Language)
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, c.fail("search", err)
	}
	c.ok("search")

	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item != nil && item.Id != nil && item.Id.VideoId != "" {
			ids = append(ids, item.Id.VideoId)
		}
	}
	return ids, nil
}

// VideosByID resolves up to MaxBatch ids to full video records.
func (c *Client) VideosByID(ctx context.Context, ids []string) ([]entity.VideoCandidate, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > MaxBatch {
		return nil, fmt.Errorf("videos.list accepts at most %d ids, got %d", MaxBatch, len(ids))
	}

	ctx, cancel, err := c.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	resp, err := c.svc.Videos.List(videoParts).Id(ids...).Context(ctx).Do()
	if err != nil {
		return nil, c.fail("videos.byId", err)
	}
	c.ok("videos.byId")

	out := make([]entity.VideoCandidate, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item != nil {
			out = append(out, toCandidate(item))
		}
	}
	return out, nil
}

// ChannelsByID resolves up to MaxBatch channel ids to summaries.
func (c *Client) ChannelsByID(ctx context.Context, ids []string) ([]entity.ChannelSummary, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > MaxBatch {
		return nil, fmt.Errorf("channels.list accepts at most %d ids, got %d", MaxBatch, len(ids))
	}

	ctx, cancel, err := c.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	resp, err := c.svc.Channels.List([]string{"snippet", "statistics"}).Id(ids...).Context(ctx).Do()
	if err != nil {
		return nil, c.fail("channels", err)
	}
	c.ok("channels")

	out := make([]entity.ChannelSummary, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item != nil {
			out = append(out, toChannelSummary(item))
		}
	}
	return out, nil
}

// begin waits for the rate limiter and applies the per-request timeout.
func (c *Client) begin(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, nil, fmt.Errorf("rate limiter: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	return ctx, cancel, nil
}

func (c *Client) ok(endpoint string) {
	c.metrics.APICallsTotal.WithLabelValues(endpoint, "ok").Inc()
}

func (c *Client) fail(endpoint string, err error) error {
	c.logger.Debug("YouTube API call failed", zap.String("endpoint", endpoint), zap.Error(err))
	if isQuotaError(err) {
		c.metrics.APICallsTotal.WithLabelValues(endpoint, "quota").Inc()
		return fmt.Errorf("%s: %w: %w", endpoint, repository.ErrQuotaExceeded, err)
	}
	c.metrics.APICallsTotal.WithLabelValues(endpoint, "error").Inc()
	return fmt.Errorf("%s: %w: %w", endpoint, repository.ErrUpstream, err)
}

func isQuotaError(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	if gerr.Code == http.StatusTooManyRequests {
		return true
	}
	if gerr.Code != http.StatusForbidden {
		return false
	}
	for _, item := range gerr.Errors {
		switch item.Reason {
		case "quotaExceeded", "dailyLimitExceeded", "rateLimitExceeded", "userRateLimitExceeded":
			return true
		}
	}
	return false
}

func clampBatch(n int) int {
	if n <= 0 || n > MaxBatch {
		return MaxBatch
	}
	return n
}
