package analysis

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestDefaultVocabulary_IsLowerCased(t *testing.T) {
	v := DefaultVocabulary()

	if !slices.Contains(v.Kids.Terms, "cocomelon") {
		t.Errorf("kids terms not lower-cased: %v", v.Kids.Terms[:3])
	}
	if !slices.Contains(v.Stopwords, "shorts") || !slices.Contains(v.Stopwords, "動画") {
		t.Error("default stopwords missing generic platform terms")
	}
	if !slices.Equal(v.HighRPM.Categories, []string{"27", "28"}) {
		t.Errorf("high rpm categories = %v", v.HighRPM.Categories)
	}
}

func TestLoadVocabulary_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.yaml")
	data := []byte("kids:\n  terms: [\"  Toddler TV \"]\nstopwords: [Foo]\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	v, err := LoadVocabulary(path)
	if err != nil {
		t.Fatalf("LoadVocabulary: %v", err)
	}
	if !slices.Equal(v.Kids.Terms, []string{"toddler tv"}) {
		t.Errorf("kids terms = %q", v.Kids.Terms)
	}
	if !slices.Equal(v.Stopwords, []string{"foo"}) {
		t.Errorf("stopwords = %q", v.Stopwords)
	}
}

func TestLoadVocabulary_Errors(t *testing.T) {
	if _, err := LoadVocabulary(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("kids: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadVocabulary(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}
