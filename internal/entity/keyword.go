package entity

// KeywordStat is one ranked keyword and how often it occurred in a batch.
type KeywordStat struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// KeywordRow mirrors the `trending_keywords` PostgreSQL table schema.
type KeywordRow struct {
	Keyword   string
	Region    string
	Frequency int
}
