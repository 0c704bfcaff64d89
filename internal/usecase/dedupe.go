package usecase

import (
	"github.com/user/trend-ingest/internal/analysis"
	"github.com/user/trend-ingest/internal/entity"
)

// Dedupe keeps the first candidate for every platform id, in input order, and
// classifies it once. Candidates without an id are dropped.
func Dedupe(classifier *analysis.Classifier, candidates []entity.VideoCandidate) []entity.ClassifiedVideo {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]entity.ClassifiedVideo, 0, len(candidates))

	for _, c := range candidates {
		if c.PlatformID == "" {
			continue
		}
		if _, ok := seen[c.PlatformID]; ok {
			continue
		}
		seen[c.PlatformID] = struct{}{}
		out = append(out, entity.ClassifiedVideo{
			VideoCandidate: c,
			Classification: classifier.Classify(c),
		})
	}
	return out
}
