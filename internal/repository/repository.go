package repository

import (
	"context"

	"news-nexus/internal/dto"
)

// NLPRepository defines the model capabilities the pipeline and the
// query engine depend on. Implementations are black boxes; callers only
// rely on the documented input/output contracts.
type NLPRepository interface {
	ExtractEntities(ctx context.Context, text string) ([]dto.Entity, error)
	ScoreSentiment(ctx context.Context, text string) (*dto.Sentiment, error)
	Summarize(ctx context.Context, text string, minLen, maxLen int) (string, error)
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// NewsSourceRepository defines the interface for fetching raw articles
// from an external news source.
type NewsSourceRepository interface {
	Fetch(ctx context.Context, query string) ([]dto.RawArticle, error)
}
