package entity

// RegionSpec is the static configuration of one market processed by an ingest run.
type RegionSpec struct {
	Code         string   `yaml:"code"`
	Language     string   `yaml:"language"`
	SeedKeywords []string `yaml:"seed_keywords"`
}
