package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS channels (
		id            UUID PRIMARY KEY,
		youtube_id    TEXT NOT NULL UNIQUE,
		title         TEXT NOT NULL DEFAULT '',
		thumbnail_url TEXT NOT NULL DEFAULT '',
		custom_url    TEXT NOT NULL DEFAULT '',
		video_count   BIGINT NOT NULL DEFAULT 0,
		view_count    BIGINT NOT NULL DEFAULT 0,
		published_at  TIMESTAMPTZ,
		country       TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS videos (
		id            UUID PRIMARY KEY,
		youtube_id    TEXT NOT NULL UNIQUE,
		channel_id    UUID NOT NULL REFERENCES channels (id),
		title         TEXT NOT NULL DEFAULT '',
		description   TEXT NOT NULL DEFAULT '',
		published_at  TIMESTAMPTZ,
		thumbnail_url TEXT NOT NULL DEFAULT '',
		duration      TEXT NOT NULL DEFAULT '',
		region        TEXT NOT NULL,
		is_kids       BOOLEAN NOT NULL DEFAULT FALSE,
		is_high_rpm   BOOLEAN NOT NULL DEFAULT FALSE,
		is_faceless   BOOLEAN NOT NULL DEFAULT FALSE,
		audio_info    TEXT,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS videos_region_idx ON videos (region)`,
	`CREATE TABLE IF NOT EXISTS daily_metrics (
		id            BIGSERIAL PRIMARY KEY,
		video_id      UUID NOT NULL REFERENCES videos (id),
		view_count    BIGINT NOT NULL DEFAULT 0,
		like_count    BIGINT NOT NULL DEFAULT 0,
		comment_count BIGINT NOT NULL DEFAULT 0,
		recorded_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS daily_metrics_video_recorded_idx ON daily_metrics (video_id, recorded_at)`,
	`CREATE TABLE IF NOT EXISTS trending_keywords (
		id         BIGSERIAL PRIMARY KEY,
		keyword    TEXT NOT NULL,
		region     TEXT NOT NULL,
		frequency  INTEGER NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (keyword, region)
	)`,
}

// Migrate creates the trend tables if they do not exist yet. It is safe to
// run on every start.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	for i, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
