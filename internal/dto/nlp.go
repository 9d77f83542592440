package dto

// Entity is one named entity extracted from article text.
type Entity struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// Sentiment is the result of sentiment scoring.
// Polarity is in [-1, 1], Subjectivity in [0, 1].
type Sentiment struct {
	Polarity     float64 `json:"polarity"`
	Subjectivity float64 `json:"subjectivity"`
}

// EnrichmentReport summarizes one enrichment run.
type EnrichmentReport struct {
	ArticlesAnalyzed   int `json:"articles_analyzed"`
	SummariesGenerated int `json:"summaries_generated"`
	SummariesSkipped   int `json:"summaries_skipped"`
	SummariesFailed    int `json:"summaries_failed"`
}
