package analysis

import (
	"testing"

	"github.com/user/trend-ingest/internal/entity"
)

func TestClassifier_IsKids(t *testing.T) {
	c := NewClassifier(DefaultVocabulary())

	tests := []struct {
		name string
		in   entity.VideoCandidate
		want bool
	}{
		{"blacklisted brand in title", entity.VideoCandidate{Title: "CoComelon Nursery Rhymes", CategoryID: "24"}, true},
		{"made for kids flag", entity.VideoCandidate{Title: "cooking", MadeForKids: true, CategoryID: "26"}, true},
		{"film and animation category", entity.VideoCandidate{Title: "short film", CategoryID: "1"}, true},
		{"japanese term in channel title", entity.VideoCandidate{Title: "うた", ChannelTitle: "童謡チャンネル", CategoryID: "10"}, true},
		{"case insensitive channel", entity.VideoCandidate{Title: "bus song", ChannelTitle: "PINKFONG Official", CategoryID: "10"}, true},
		{"plain comedy", entity.VideoCandidate{Title: "office prank", ChannelTitle: "Pranksters", CategoryID: "23"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsKids(tt.in); got != tt.want {
				t.Errorf("IsKids() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifier_IsHighRPM(t *testing.T) {
	c := NewClassifier(DefaultVocabulary())

	tests := []struct {
		name string
		in   entity.VideoCandidate
		want bool
	}{
		{"education category", entity.VideoCandidate{Title: "how volcanoes work", CategoryID: "27"}, true},
		{"science and technology category", entity.VideoCandidate{Title: "robot arm", CategoryID: "28"}, true},
		{"finance term in description", entity.VideoCandidate{Title: "my morning", Description: "I invest in stocks", CategoryID: "23"}, true},
		{"japanese gadget term", entity.VideoCandidate{Title: "最新ガジェット紹介", CategoryID: "22"}, true},
		{"neither", entity.VideoCandidate{Title: "dog jumps", Description: "so funny", CategoryID: "23"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsHighRPM(tt.in); got != tt.want {
				t.Errorf("IsHighRPM() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifier_IsFaceless(t *testing.T) {
	c := NewClassifier(DefaultVocabulary())

	tests := []struct {
		name string
		in   entity.VideoCandidate
		want bool
	}{
		{"voiceover", entity.VideoCandidate{Title: "Top 5 castles", Description: "VoiceOver edition"}, true},
		{"kirinuki", entity.VideoCandidate{Title: "配信の切り抜き"}, true},
		{"on camera", entity.VideoCandidate{Title: "my gym routine", Description: "lets go"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsFaceless(tt.in); got != tt.want {
				t.Errorf("IsFaceless() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAudioInfo(t *testing.T) {
	tests := []struct {
		name   string
		desc   string
		want   string
		wantOK bool
	}{
		{"music label", "Great video!\nMusic: Epic Adventure by Someone\nThanks for watching", "Epic Adventure by Someone", true},
		{"music in this video", "Music in this video: Lo-fi Beat - Artist", "Lo-fi Beat - Artist", true},
		{"song lower case", "song  Summer Breeze ", "Summer Breeze", true},
		{"soundtrack", "Soundtrack: Main Theme", "Main Theme", true},
		{"no label", "just a clip\nthanks", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AudioInfo(tt.desc)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("AudioInfo() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestClassifier_Deterministic(t *testing.T) {
	c := NewClassifier(DefaultVocabulary())
	v := entity.VideoCandidate{
		Title:       "AI money tips",
		Description: "Track: Night Drive",
		CategoryID:  "1",
	}

	first := c.Classify(v)
	for i := 0; i < 5; i++ {
		got := c.Classify(v)
		if got.IsKids != first.IsKids || got.IsHighRPM != first.IsHighRPM || got.IsFaceless != first.IsFaceless {
			t.Fatalf("run %d: flags changed: %+v vs %+v", i, got, first)
		}
		if got.AudioInfo == nil || *got.AudioInfo != *first.AudioInfo {
			t.Fatalf("run %d: audio info changed", i)
		}
	}
	if !first.IsKids || !first.IsHighRPM || !first.IsFaceless {
		t.Errorf("expected all flags set, got %+v", first)
	}
	if *first.AudioInfo != "Night Drive" {
		t.Errorf("AudioInfo = %q, want %q", *first.AudioInfo, "Night Drive")
	}
}
