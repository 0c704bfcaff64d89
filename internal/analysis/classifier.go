package analysis

import (
	"regexp"
	"slices"
	"strings"

	"github.com/user/trend-ingest/internal/entity"
)

var audioPattern = regexp.MustCompile(`(?i)(?:Music in this video|Music|Song|Track|Soundtrack)[:\s]+([^\n]+)`)

// Classifier applies the kids, high-RPM and faceless heuristics and extracts
// soundtrack credits. It holds no mutable state.
type Classifier struct {
	vocab *Vocabulary
}

// NewClassifier creates a classifier backed by vocab.
func NewClassifier(vocab *Vocabulary) *Classifier {
	return &Classifier{vocab: vocab}
}

// Classify computes every flag for v.
func (c *Classifier) Classify(v entity.VideoCandidate) entity.Classification {
	cls := entity.Classification{
		IsKids:     c.IsKids(v),
		IsHighRPM:  c.IsHighRPM(v),
		IsFaceless: c.IsFaceless(v),
	}
	if audio, ok := AudioInfo(v.Description); ok {
		cls.AudioInfo = &audio
	}
	return cls
}

// IsKids reports whether v looks like children's content. The whole Film &
// Animation category counts as kids content.
func (c *Classifier) IsKids(v entity.VideoCandidate) bool {
	if v.MadeForKids {
		return true
	}
	if slices.Contains(c.vocab.Kids.Categories, v.CategoryID) {
		return true
	}
	title := strings.ToLower(v.Title)
	channel := strings.ToLower(v.ChannelTitle)
	for _, term := range c.vocab.Kids.Terms {
		if strings.Contains(title, term) || strings.Contains(channel, term) {
			return true
		}
	}
	return false
}

// IsHighRPM reports whether v likely earns high advertising revenue per view.
func (c *Classifier) IsHighRPM(v entity.VideoCandidate) bool {
	if slices.Contains(c.vocab.HighRPM.Categories, v.CategoryID) {
		return true
	}
	return containsAny(combinedText(v), c.vocab.HighRPM.Terms)
}

// IsFaceless reports whether v looks like voice-over, animation or compilation content.
func (c *Classifier) IsFaceless(v entity.VideoCandidate) bool {
	return containsAny(combinedText(v), c.vocab.Faceless.Terms)
}

// AudioInfo returns the soundtrack credit from a description, if any.
func AudioInfo(description string) (string, bool) {
	m := audioPattern.FindStringSubmatch(description)
	if m == nil {
		return "", false
	}
	audio := strings.TrimSpace(m[1])
	if audio == "" {
		return "", false
	}
	return audio, true
}

func combinedText(v entity.VideoCandidate) string {
	return strings.ToLower(v.Title + " " + v.Description)
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
