package analysis

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/user/trend-ingest/internal/entity"
)

// MaxKeywords caps the ranked list returned by Extract.
const MaxKeywords = 20

var (
	hashtagPattern = regexp.MustCompile(`#[^\s\p{Z}#]+`)

	punctuation = strings.NewReplacer(
		"!", " ", "?", " ", ",", " ", ".", " ", "。", " ", `"`, " ",
		"'", " ", ";", " ", ":", " ", "(", " ", ")", " ", "[", " ", "]", " ",
	)
)

// TextItem is the text of one video fed to the extractor.
type TextItem struct {
	Title       string
	Description string
}

// KeywordExtractor ranks hashtags and words by frequency across a batch.
type KeywordExtractor struct {
	stopwords map[string]struct{}
}

// NewKeywordExtractor creates an extractor using the stopwords of vocab.
func NewKeywordExtractor(vocab *Vocabulary) *KeywordExtractor {
	stop := make(map[string]struct{}, len(vocab.Stopwords))
	for _, w := range vocab.Stopwords {
		stop[w] = struct{}{}
	}
	return &KeywordExtractor{stopwords: stop}
}

// counter keeps first-seen order so ties rank by first occurrence.
type counter struct {
	counts map[string]int
	order  []string
}

func (c *counter) add(word string) {
	if _, ok := c.counts[word]; !ok {
		c.order = append(c.order, word)
	}
	c.counts[word]++
}

// Extract returns at most MaxKeywords keywords, most frequent first. Every call
// starts from zero.
func (e *KeywordExtractor) Extract(items []TextItem) []entity.KeywordStat {
	c := &counter{counts: make(map[string]int)}

	for _, item := range items {
		text := strings.ToLower(item.Title + " " + item.Description)

		for _, tag := range hashtagPattern.FindAllString(text, -1) {
			word := strings.TrimPrefix(tag, "#")
			if utf8.RuneCountInString(word) > 1 && !e.isStopword(word) {
				c.add(word)
			}
		}

		rest := punctuation.Replace(hashtagPattern.ReplaceAllString(text, ""))
		for _, word := range strings.Fields(rest) {
			if utf8.RuneCountInString(word) < 2 || isNumeric(word) || e.isStopword(word) {
				continue
			}
			c.add(word)
		}
	}

	stats := make([]entity.KeywordStat, 0, len(c.order))
	for _, word := range c.order {
		stats = append(stats, entity.KeywordStat{Keyword: word, Count: c.counts[word]})
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Count > stats[j].Count
	})

	if len(stats) > MaxKeywords {
		stats = stats[:MaxKeywords]
	}
	return stats
}

func (e *KeywordExtractor) isStopword(word string) bool {
	_, ok := e.stopwords[word]
	return ok
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
