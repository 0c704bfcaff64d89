package entity

import "time"

// ChannelSummary is channel metadata and statistics as returned by the platform API.
type ChannelSummary struct {
	PlatformID   string
	Title        string
	ThumbnailURL string
	CustomURL    string
	VideoCount   int64
	ViewCount    int64
	PublishedAt  time.Time
	Country      string
}

// ChannelRow mirrors the `channels` PostgreSQL table schema.
type ChannelRow struct {
	PlatformID   string
	Title        string
	ThumbnailURL string
	CustomURL    string
	VideoCount   int64
	ViewCount    int64
	PublishedAt  time.Time
	Country      string
}
