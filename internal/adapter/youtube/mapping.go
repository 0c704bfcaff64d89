package youtube

import (
	"time"

	yt "google.golang.org/api/youtube/v3"

	"github.com/user/trend-ingest/internal/analysis"
	"github.com/user/trend-ingest/internal/entity"
)

// toCandidate maps an API video into a VideoCandidate. Absent sub-objects
// leave their fields at zero values.
func toCandidate(v *yt.Video) entity.VideoCandidate {
	c := entity.VideoCandidate{PlatformID: v.Id}

	if s := v.Snippet; s != nil {
		c.ChannelPlatformID = s.ChannelId
		c.ChannelTitle = s.ChannelTitle
		c.Title = s.Title
		c.Description = s.Description
		c.CategoryID = s.CategoryId
		c.PublishedAt = parseTime(s.PublishedAt)
		c.ThumbnailURL = thumbnailURL(s.Thumbnails, true)
	}
	if cd := v.ContentDetails; cd != nil {
		c.Duration = cd.Duration
	}
	c.DurationSeconds = analysis.ParseDuration(c.Duration)
	if st := v.Status; st != nil {
		c.MadeForKids = st.MadeForKids
	}
	if stats := v.Statistics; stats != nil {
		c.ViewCount = int64(stats.ViewCount)
		c.LikeCount = int64(stats.LikeCount)
		c.CommentCount = int64(stats.CommentCount)
	}
	return c
}

func toChannelSummary(ch *yt.Channel) entity.ChannelSummary {
	s := entity.ChannelSummary{PlatformID: ch.Id}

	if sn := ch.Snippet; sn != nil {
		s.Title = sn.Title
		s.CustomURL = sn.CustomUrl
		s.Country = sn.Country
		s.PublishedAt = parseTime(sn.PublishedAt)
		s.ThumbnailURL = thumbnailURL(sn.Thumbnails, false)
	}
	if stats := ch.Statistics; stats != nil {
		s.VideoCount = int64(stats.VideoCount)
		s.ViewCount = int64(stats.ViewCount)
	}
	return s
}

// thumbnailURL picks the high-resolution thumbnail when preferHigh is set and
// falls back to the default one.
func thumbnailURL(t *yt.ThumbnailDetails, preferHigh bool) string {
	if t == nil {
		return ""
	}
	if preferHigh && t.High != nil && t.High.Url != "" {
		return t.High.Url
	}
	if t.Default != nil {
		return t.Default.Url
	}
	return ""
}

func parseTime(s string) time.Time {
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return ts
}
