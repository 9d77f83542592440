package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"news-nexus/internal/dto"
	"news-nexus/internal/entity"
	"news-nexus/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "console")
	if err != nil {
		t.Fatalf("failed to create test logger: %v", err)
	}
	return log
}

// fakeArticleRepo is an in-memory ArticleRepository.
type fakeArticleRepo struct {
	articles []entity.Article
	analyses map[uint]*entity.ArticleAnalysis

	createErr error
}

func newFakeArticleRepo() *fakeArticleRepo {
	return &fakeArticleRepo{
		analyses: make(map[uint]*entity.ArticleAnalysis),
	}
}

func (f *fakeArticleRepo) FindByURL(_ context.Context, url string) (*entity.Article, error) {
	for i := range f.articles {
		if f.articles[i].URL == url {
			a := f.articles[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (f *fakeArticleRepo) Create(_ context.Context, article *entity.Article) error {
	if f.createErr != nil {
		return f.createErr
	}
	article.ID = uint(len(f.articles) + 1)
	f.articles = append(f.articles, *article)
	return nil
}

func (f *fakeArticleRepo) FindNeedingEnrichment(_ context.Context, maxSummaryAttempts int) ([]dto.ArticleWithAnalysis, error) {
	var out []dto.ArticleWithAnalysis
	for _, a := range f.articles {
		analysis := f.analyses[a.ID]
		switch {
		case analysis == nil:
			out = append(out, dto.ArticleWithAnalysis{Article: a})
		case !analysis.HasSummary():
			if maxSummaryAttempts > 0 && analysis.SummaryAttempts >= maxSummaryAttempts {
				continue
			}
			cp := *analysis
			out = append(out, dto.ArticleWithAnalysis{Article: a, Analysis: &cp})
		}
	}
	return out, nil
}

func (f *fakeArticleRepo) UpsertAnalysis(_ context.Context, analysis *entity.ArticleAnalysis) error {
	if analysis.ArticleID == 0 {
		return errors.New("analysis without article id")
	}
	cp := *analysis
	if existing, ok := f.analyses[analysis.ArticleID]; ok {
		cp.ID = existing.ID
	} else {
		cp.ID = uint(len(f.analyses) + 1)
	}
	f.analyses[analysis.ArticleID] = &cp
	return nil
}

func (f *fakeArticleRepo) FindAllWithAnalysis(_ context.Context) ([]dto.ArticleWithAnalysis, error) {
	out := make([]dto.ArticleWithAnalysis, 0, len(f.articles))
	for _, a := range f.articles {
		var analysis *entity.ArticleAnalysis
		if found, ok := f.analyses[a.ID]; ok {
			cp := *found
			analysis = &cp
		}
		out = append(out, dto.ArticleWithAnalysis{Article: a, Analysis: analysis})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Article.ID < out[j].Article.ID })
	return out, nil
}

// fakeNLPRepo counts capability invocations and returns canned results.
type fakeNLPRepo struct {
	entities  []dto.Entity
	sentiment dto.Sentiment
	summary   string

	extractErr   error
	sentimentErr error
	summarizeErr error
	generateErr  error

	extractCalls   int
	sentimentCalls int
	summarizeCalls int
	generateCalls  int

	lastSummarizeInput string
	lastPrompt         string
}

func (f *fakeNLPRepo) ExtractEntities(_ context.Context, text string) ([]dto.Entity, error) {
	f.extractCalls++
	if f.extractErr != nil {
		return nil, f.extractErr
	}
	return f.entities, nil
}

func (f *fakeNLPRepo) ScoreSentiment(_ context.Context, text string) (*dto.Sentiment, error) {
	f.sentimentCalls++
	if f.sentimentErr != nil {
		return nil, f.sentimentErr
	}
	s := f.sentiment
	return &s, nil
}

func (f *fakeNLPRepo) Summarize(_ context.Context, text string, minLen, maxLen int) (string, error) {
	f.summarizeCalls++
	f.lastSummarizeInput = text
	if f.summarizeErr != nil {
		return "", f.summarizeErr
	}
	return f.summary, nil
}

func (f *fakeNLPRepo) Generate(_ context.Context, prompt string, maxTokens int) (string, error) {
	f.generateCalls++
	f.lastPrompt = prompt
	if f.generateErr != nil {
		return "", f.generateErr
	}
	return fmt.Sprintf("answer %d chars", len(prompt)), nil
}

// fakeNewsSource returns a fixed set of raw articles.
type fakeNewsSource struct {
	records  []dto.RawArticle
	fetchErr error
	calls    int
}

func (f *fakeNewsSource) Fetch(_ context.Context, query string) ([]dto.RawArticle, error) {
	f.calls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.records, nil
}
