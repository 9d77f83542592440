package dto

// RawArticle is one article record as returned by an ingestion source
// before it is persisted.
type RawArticle struct {
	Title       string `json:"title"`
	SourceName  string `json:"source_name"`
	Author      string `json:"author"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at"` // ISO-8601
	Content     string `json:"content"`
}

// NewsAPIResponse mirrors the newsapi.org /v2/everything payload.
type NewsAPIResponse struct {
	Status       string           `json:"status"`
	TotalResults int              `json:"totalResults"`
	Articles     []NewsAPIArticle `json:"articles"`
	Code         string           `json:"code,omitempty"`
	Message      string           `json:"message,omitempty"`
}

// NewsAPIArticle is a single article in a NewsAPI response.
type NewsAPIArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

// IngestReport summarizes one ingestion run.
type IngestReport struct {
	Fetched int `json:"fetched"`
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}
