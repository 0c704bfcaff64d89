package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/trend-ingest/internal/entity"
	"github.com/user/trend-ingest/internal/repository"
)

// TrendStoreImpl provides a concrete implementation for the TrendStore interface using PostgreSQL.
type TrendStoreImpl struct {
	db *pgxpool.Pool
}

var _ repository.TrendStore = (*TrendStoreImpl)(nil)

// NewTrendStore creates a new instance of TrendStoreImpl.
func NewTrendStore(db *pgxpool.Pool) *TrendStoreImpl {
	return &TrendStoreImpl{db: db}
}

// Ping checks database connectivity.
func (r *TrendStoreImpl) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

const upsertChannelSQL = `
	INSERT INTO channels (id, youtube_id, title, thumbnail_url, custom_url, video_count, view_count, published_at, country)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (youtube_id) DO UPDATE SET
		title = EXCLUDED.title,
		thumbnail_url = EXCLUDED.thumbnail_url,
		custom_url = EXCLUDED.custom_url,
		video_count = EXCLUDED.video_count,
		view_count = EXCLUDED.view_count,
		published_at = EXCLUDED.published_at,
		country = EXCLUDED.country,
		updated_at = NOW()`

// UpsertChannels stores or updates channels keyed by youtube_id in one transaction.
func (r *TrendStoreImpl) UpsertChannels(ctx context.Context, rows []entity.ChannelRow) error {
	if len(rows) == 0 {
		return nil
	}

	return r.inTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, c := range rows {
			batch.Queue(upsertChannelSQL,
				uuid.NewString(),
				c.PlatformID,
				c.Title,
				c.ThumbnailURL,
				c.CustomURL,
				c.VideoCount,
				c.ViewCount,
				nullTime(c.PublishedAt),
				c.Country,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("upsert channels: %w", err)
		}
		return nil
	})
}

// SelectChannelIDMap maps youtube channel ids to internal ids. Unknown ids are absent.
func (r *TrendStoreImpl) SelectChannelIDMap(ctx context.Context, platformIDs []string) (map[string]string, error) {
	out := make(map[string]string, len(platformIDs))
	if len(platformIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx, `SELECT id::text, youtube_id FROM channels WHERE youtube_id = ANY($1)`, platformIDs)
	if err != nil {
		return nil, fmt.Errorf("select channels: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, youtubeID string
		if err := rows.Scan(&id, &youtubeID); err != nil {
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		out[youtubeID] = id
	}
	return out, rows.Err()
}

const upsertVideoSQL = `
	INSERT INTO videos (id, youtube_id, channel_id, title, description, published_at, thumbnail_url, duration, region, is_kids, is_high_rpm, is_faceless, audio_info)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	ON CONFLICT (youtube_id) DO UPDATE SET
		channel_id = EXCLUDED.channel_id,
		title = EXCLUDED.title,
		description = EXCLUDED.description,
		published_at = EXCLUDED.published_at,
		thumbnail_url = EXCLUDED.thumbnail_url,
		duration = EXCLUDED.duration,
		region = EXCLUDED.region,
		is_kids = EXCLUDED.is_kids,
		is_high_rpm = EXCLUDED.is_high_rpm,
		is_faceless = EXCLUDED.is_faceless,
		audio_info = EXCLUDED.audio_info,
		updated_at = NOW()
	RETURNING id::text, youtube_id`

// UpsertVideos stores or updates videos keyed by youtube_id and returns the
// stored ids. An existing row keeps its id.
func (r *TrendStoreImpl) UpsertVideos(ctx context.Context, rows []entity.VideoRow) ([]entity.StoredVideo, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	stored := make([]entity.StoredVideo, 0, len(rows))
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, v := range rows {
			batch.Queue(upsertVideoSQL,
				uuid.NewString(),
				v.PlatformID,
				v.ChannelID,
				v.Title,
				v.Description,
				nullTime(v.PublishedAt),
				v.ThumbnailURL,
				v.Duration,
				v.Region,
				v.IsKids,
				v.IsHighRPM,
				v.IsFaceless,
				v.AudioInfo,
			)
		}

		br := tx.SendBatch(ctx, batch)
		for range rows {
			var s entity.StoredVideo
			if err := br.QueryRow().Scan(&s.ID, &s.PlatformID); err != nil {
				_ = br.Close()
				return fmt.Errorf("upsert video: %w", err)
			}
			stored = append(stored, s)
		}
		return br.Close()
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// InsertMetrics appends one daily_metrics row per entry.
func (r *TrendStoreImpl) InsertMetrics(ctx context.Context, rows []entity.MetricRow) error {
	if len(rows) == 0 {
		return nil
	}

	return r.inTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, m := range rows {
			batch.Queue(`INSERT INTO daily_metrics (video_id, view_count, like_count, comment_count, recorded_at)
			             VALUES ($1, $2, $3, $4, $5)`,
				m.VideoID, m.ViewCount, m.LikeCount, m.CommentCount, m.RecordedAt)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert metrics: %w", err)
		}
		return nil
	})
}

// UpsertKeywords stores or updates keyword frequencies keyed by (keyword, region).
func (r *TrendStoreImpl) UpsertKeywords(ctx context.Context, rows []entity.KeywordRow) error {
	if len(rows) == 0 {
		return nil
	}

	return r.inTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, k := range rows {
			batch.Queue(`INSERT INTO trending_keywords (keyword, region, frequency)
			             VALUES ($1, $2, $3)
			             ON CONFLICT (keyword, region) DO UPDATE SET
			               frequency = EXCLUDED.frequency, updated_at = NOW()`,
				k.Keyword, k.Region, k.Frequency)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("upsert keywords: %w", err)
		}
		return nil
	})
}

// ClearTrendData deletes metrics, videos and keywords in one transaction.
// Channels are kept.
func (r *TrendStoreImpl) ClearTrendData(ctx context.Context) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		for _, table := range []string{"daily_metrics", "videos", "trending_keywords"} {
			if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}

func (r *TrendStoreImpl) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// nullTime stores a zero time as NULL.
func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
