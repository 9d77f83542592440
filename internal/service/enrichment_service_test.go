package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"news-nexus/internal/config"
	"news-nexus/internal/dto"
	"news-nexus/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enrichmentConfig() *config.Config {
	return &config.Config{
		Pipeline: config.Pipeline{
			SummaryMaxInputChars: 1024,
			SummaryMinLength:     40,
			SummaryMaxLength:     150,
		},
	}
}

func TestEnrichNewArticle(t *testing.T) {
	repo := newFakeArticleRepo()
	require.NoError(t, repo.Create(context.Background(), &entity.Article{
		Title:   "AI breakthrough",
		URL:     "http://x/1",
		Content: "Researchers at Acme Labs announced a new model.",
	}))

	nlp := &fakeNLPRepo{
		entities:  []dto.Entity{{Text: "Acme Labs", Category: entity.EntityOrganization}},
		sentiment: dto.Sentiment{Polarity: 0.4, Subjectivity: 0.3},
		summary:   "Acme Labs announced a new model.",
	}
	svc := NewEnrichmentService(enrichmentConfig(), repo, nlp, testLogger(t))

	report, err := svc.Enrich(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.ArticlesAnalyzed)
	assert.Equal(t, 1, report.SummariesGenerated)
	assert.Equal(t, 0, report.SummariesFailed)

	analysis := repo.analyses[1]
	require.NotNil(t, analysis)
	assert.Equal(t, 0.4, analysis.SentimentPolarity)
	assert.Equal(t, 0.3, analysis.SentimentSubjectivity)
	require.True(t, analysis.HasSummary())
	assert.Equal(t, "Acme Labs announced a new model.", *analysis.Summary)

	var entities []dto.Entity
	require.NoError(t, json.Unmarshal(analysis.Entities, &entities))
	require.NotEmpty(t, entities)
	assert.Equal(t, entity.EntityOrganization, entities[0].Category)
	assert.Equal(t, "Acme Labs", entities[0].Text)
}

func TestEnrichIsIdempotent(t *testing.T) {
	repo := newFakeArticleRepo()
	require.NoError(t, repo.Create(context.Background(), &entity.Article{
		Title: "One", URL: "http://x/1", Content: "some content here",
	}))

	nlp := &fakeNLPRepo{summary: "a summary"}
	svc := NewEnrichmentService(enrichmentConfig(), repo, nlp, testLogger(t))

	_, err := svc.Enrich(context.Background())
	require.NoError(t, err)

	firstExtract := nlp.extractCalls
	firstSummarize := nlp.summarizeCalls

	// Second run on an unchanged corpus performs zero model calls.
	report, err := svc.Enrich(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, report.ArticlesAnalyzed)
	assert.Equal(t, firstExtract, nlp.extractCalls)
	assert.Equal(t, firstSummarize, nlp.summarizeCalls)
	assert.Equal(t, firstExtract, nlp.sentimentCalls)
}

func TestEnrichEmptyContentUsesDefaultAnalysis(t *testing.T) {
	repo := newFakeArticleRepo()
	require.NoError(t, repo.Create(context.Background(), &entity.Article{
		Title: "Empty", URL: "http://x/1", Content: "",
	}))

	nlp := &fakeNLPRepo{}
	svc := NewEnrichmentService(enrichmentConfig(), repo, nlp, testLogger(t))

	report, err := svc.Enrich(context.Background())
	require.NoError(t, err)

	// No NLP capability is invoked on empty input.
	assert.Equal(t, 0, nlp.extractCalls)
	assert.Equal(t, 0, nlp.sentimentCalls)
	assert.Equal(t, 0, nlp.summarizeCalls)
	assert.Equal(t, 1, report.ArticlesAnalyzed)
	assert.Equal(t, 1, report.SummariesSkipped)

	analysis := repo.analyses[1]
	require.NotNil(t, analysis)
	assert.Equal(t, 0.0, analysis.SentimentPolarity)
	assert.Equal(t, 0.0, analysis.SentimentSubjectivity)
	assert.False(t, analysis.HasSummary())

	var entities []dto.Entity
	require.NoError(t, json.Unmarshal(analysis.Entities, &entities))
	assert.Empty(t, entities)
}

func TestEnrichSummaryFailureIsNotFatal(t *testing.T) {
	repo := newFakeArticleRepo()
	require.NoError(t, repo.Create(context.Background(), &entity.Article{
		Title: "One", URL: "http://x/1", Content: "content one",
	}))
	require.NoError(t, repo.Create(context.Background(), &entity.Article{
		Title: "Two", URL: "http://x/2", Content: "content two",
	}))

	nlp := &fakeNLPRepo{summarizeErr: errors.New("model timeout")}
	svc := NewEnrichmentService(enrichmentConfig(), repo, nlp, testLogger(t))

	report, err := svc.Enrich(context.Background())
	require.NoError(t, err)

	// Both articles got their entities and sentiment despite the
	// summarizer failing every time; the failures are reported, never
	// silently dropped.
	assert.Equal(t, 2, report.ArticlesAnalyzed)
	assert.Equal(t, 2, report.SummariesFailed)
	assert.Equal(t, 0, report.SummariesGenerated)
	require.NotNil(t, repo.analyses[1])
	require.NotNil(t, repo.analyses[2])
	assert.False(t, repo.analyses[1].HasSummary())

	// Failed summaries are retried on the next run.
	_, err = svc.Enrich(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, nlp.summarizeCalls)
	// But entities/sentiment are not recomputed.
	assert.Equal(t, 2, nlp.extractCalls)
}

func TestEnrichMaxSummaryAttemptsStopsRetrying(t *testing.T) {
	repo := newFakeArticleRepo()
	require.NoError(t, repo.Create(context.Background(), &entity.Article{
		Title: "One", URL: "http://x/1", Content: "content one",
	}))

	cfg := enrichmentConfig()
	cfg.Pipeline.MaxSummaryAttempts = 2
	nlp := &fakeNLPRepo{summarizeErr: errors.New("model timeout")}
	svc := NewEnrichmentService(cfg, repo, nlp, testLogger(t))

	for i := 0; i < 4; i++ {
		_, err := svc.Enrich(context.Background())
		require.NoError(t, err)
	}

	assert.Equal(t, 2, nlp.summarizeCalls)
}

func TestEnrichTruncatesSummarizerInput(t *testing.T) {
	long := make([]byte, 5000)
	for i := range long {
		long[i] = 'a'
	}
	repo := newFakeArticleRepo()
	require.NoError(t, repo.Create(context.Background(), &entity.Article{
		Title: "Long", URL: "http://x/1", Content: string(long),
	}))

	nlp := &fakeNLPRepo{summary: "short"}
	svc := NewEnrichmentService(enrichmentConfig(), repo, nlp, testLogger(t))

	_, err := svc.Enrich(context.Background())
	require.NoError(t, err)

	assert.Len(t, nlp.lastSummarizeInput, 1024)
}
