package entity

import "time"

// VideoCandidate is a video as returned by the platform API, already mapped
// out of the wire payload. Missing optional fields are zero values.
type VideoCandidate struct {
	PlatformID        string
	ChannelPlatformID string
	ChannelTitle      string
	Title             string
	Description       string
	PublishedAt       time.Time
	ThumbnailURL      string
	Duration          string // raw ISO-8601 duration, e.g. "PT59S"
	DurationSeconds   int
	CategoryID        string
	MadeForKids       bool
	ViewCount         int64
	LikeCount         int64
	CommentCount      int64
}

// Classification holds the heuristic flags computed for a candidate.
type Classification struct {
	IsKids     bool
	IsHighRPM  bool
	IsFaceless bool
	AudioInfo  *string
}

// ClassifiedVideo is a deduplicated candidate with its classification attached.
type ClassifiedVideo struct {
	VideoCandidate
	Classification
}

// VideoRow mirrors the `videos` PostgreSQL table schema.
type VideoRow struct {
	PlatformID   string
	ChannelID    string // internal channels.id
	Title        string
	Description  string
	PublishedAt  time.Time
	ThumbnailURL string
	Duration     string
	Region       string
	IsKids       bool
	IsHighRPM    bool
	IsFaceless   bool
	AudioInfo    *string
}

// StoredVideo is what an upsert into `videos` hands back.
type StoredVideo struct {
	ID         string
	PlatformID string
}

// MetricRow mirrors the `daily_metrics` PostgreSQL table schema.
type MetricRow struct {
	VideoID      string
	ViewCount    int64
	LikeCount    int64
	CommentCount int64
	RecordedAt   time.Time
}
