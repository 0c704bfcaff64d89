// Package analysis holds the rule-based text heuristics of the pipeline:
// content classification, keyword extraction and the duration/script predicates
// used while discovering candidates. Everything here is pure.
package analysis

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var defaultVocabulary []byte

type termList struct {
	Categories []string `yaml:"categories"`
	Terms      []string `yaml:"terms"`
}

// Vocabulary is the tunable data behind the classifier and the keyword extractor.
type Vocabulary struct {
	Kids      termList `yaml:"kids"`
	HighRPM   termList `yaml:"high_rpm"`
	Faceless  termList `yaml:"faceless"`
	Stopwords []string `yaml:"stopwords"`
}

// DefaultVocabulary returns the built-in vocabulary.
func DefaultVocabulary() *Vocabulary {
	v, err := parseVocabulary(defaultVocabulary)
	if err != nil {
		panic(fmt.Sprintf("analysis: built-in vocabulary is invalid: %v", err))
	}
	return v
}

// LoadVocabulary reads a vocabulary file. An empty path yields the built-in one.
func LoadVocabulary(path string) (*Vocabulary, error) {
	if path == "" {
		return DefaultVocabulary(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	return parseVocabulary(data)
}

func parseVocabulary(data []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode vocabulary: %w", err)
	}
	v.Kids.Terms = lowerAll(v.Kids.Terms)
	v.HighRPM.Terms = lowerAll(v.HighRPM.Terms)
	v.Faceless.Terms = lowerAll(v.Faceless.Terms)
	v.Stopwords = lowerAll(v.Stopwords)
	return &v, nil
}

func lowerAll(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
