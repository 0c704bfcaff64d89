package analysis

import (
	"regexp"
	"strconv"
)

// MaxShortSeconds is the longest duration still treated as a short.
const MaxShortSeconds = 61

var durationPattern = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

// ParseDuration converts an ISO-8601 video duration such as "PT1M5S" to
// seconds. Missing components count as zero; anything unparsable is 0.
func ParseDuration(d string) int {
	m := durationPattern.FindStringSubmatch(d)
	if m == nil {
		return 0
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])
	return hours*3600 + minutes*60 + seconds
}

// IsShort reports whether a duration in seconds qualifies as a short video.
func IsShort(seconds int) bool {
	return seconds > 0 && seconds <= MaxShortSeconds
}

// ContainsJapanese reports whether s has at least one rune from the Japanese
// punctuation, kana, half/full-width or CJK ideograph blocks.
func ContainsJapanese(s string) bool {
	for _, r := range s {
		switch {
		case r >= 0x3000 && r <= 0x303f, // CJK symbols and punctuation
			r >= 0x3040 && r <= 0x309f, // hiragana
			r >= 0x30a0 && r <= 0x30ff, // katakana
			r >= 0xff00 && r <= 0xff9f, // half/full-width forms
			r >= 0x4e00 && r <= 0x9faf, // CJK unified ideographs
			r >= 0x3400 && r <= 0x4dbf: // CJK extension A
			return true
		}
	}
	return false
}
