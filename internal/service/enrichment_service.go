package service

import (
	"context"
	"encoding/json"
	"fmt"

	"news-nexus/internal/config"
	"news-nexus/internal/dto"
	"news-nexus/internal/entity"
	"news-nexus/internal/repository"
	"news-nexus/pkg/logger"
	"news-nexus/pkg/utils"

	"gorm.io/datatypes"
)

// EnrichmentService defines the interface for the batch pipeline that
// derives entities, sentiment and summaries for stored articles.
type EnrichmentService interface {
	Enrich(ctx context.Context) (*dto.EnrichmentReport, error)
}

// NewEnrichmentService creates a new enrichment service.
func NewEnrichmentService(cfg *config.Config, articleRepo repository.ArticleRepository, nlpRepo repository.NLPRepository, log *logger.Logger) EnrichmentService {
	return &enrichmentService{
		cfg:         cfg,
		articleRepo: articleRepo,
		nlpRepo:     nlpRepo,
		logger:      log,
	}
}

type enrichmentService struct {
	cfg         *config.Config
	articleRepo repository.ArticleRepository
	nlpRepo     repository.NLPRepository
	logger      *logger.Logger
}

// Enrich processes every article that has no analysis yet, or an
// analysis without a summary. Repeated runs converge: articles with a
// complete analysis are never selected again, so an unchanged corpus
// costs zero model calls on the second run. Each article's changes are
// committed individually, so an interrupted run leaves only valid rows
// behind and is safe to re-run.
func (s *enrichmentService) Enrich(ctx context.Context) (*dto.EnrichmentReport, error) {
	items, err := s.articleRepo.FindNeedingEnrichment(ctx, s.cfg.Pipeline.MaxSummaryAttempts)
	if err != nil {
		return nil, fmt.Errorf("failed to select articles for enrichment: %w", err)
	}

	report := &dto.EnrichmentReport{}
	if len(items) == 0 {
		s.logger.Info("No articles need enrichment, corpus is up to date")
		return report, nil
	}

	s.logger.Info("Found articles to process", logger.IntField("count", len(items)))

	for _, item := range items {
		if !utils.ShouldContinue(ctx, s.logger) {
			return report, ctx.Err()
		}
		if err := s.enrichOne(ctx, item, report); err != nil {
			return report, err
		}
	}

	s.logger.Info("Enrichment run complete",
		logger.IntField("articles_analyzed", report.ArticlesAnalyzed),
		logger.IntField("summaries_generated", report.SummariesGenerated),
		logger.IntField("summaries_skipped", report.SummariesSkipped),
		logger.IntField("summaries_failed", report.SummariesFailed),
	)
	return report, nil
}

func (s *enrichmentService) enrichOne(ctx context.Context, item dto.ArticleWithAnalysis, report *dto.EnrichmentReport) error {
	article := item.Article
	analysis := item.Analysis
	dirty := false

	if analysis == nil {
		s.logger.Info("Performing initial analysis", logger.IntField("article_id", int(article.ID)))

		entities, sentiment, err := s.analyzeContent(ctx, article.Content)
		if err != nil {
			// Persist nothing for this article; the selection rule
			// picks it up again on the next run.
			s.logger.Error("Failed to analyze article, skipping",
				logger.ErrorField(err),
				logger.IntField("article_id", int(article.ID)),
			)
			return nil
		}

		entitiesJSON, err := json.Marshal(entities)
		if err != nil {
			return fmt.Errorf("failed to marshal entities: %w", err)
		}

		analysis = &entity.ArticleAnalysis{
			ArticleID:             article.ID,
			Entities:              datatypes.JSON(entitiesJSON),
			SentimentPolarity:     sentiment.Polarity,
			SentimentSubjectivity: sentiment.Subjectivity,
		}
		dirty = true
		report.ArticlesAnalyzed++
	}

	// Summarization is independent of the initial analysis and never
	// fatal: a failure is recorded and the run moves on.
	if !analysis.HasSummary() {
		if article.Content == "" {
			report.SummariesSkipped++
		} else {
			input := utils.TruncateText(article.Content, s.cfg.Pipeline.SummaryMaxInputChars)
			summary, err := s.nlpRepo.Summarize(ctx, input, s.cfg.Pipeline.SummaryMinLength, s.cfg.Pipeline.SummaryMaxLength)
			if err != nil {
				s.logger.Error("Could not generate summary",
					logger.ErrorField(err),
					logger.IntField("article_id", int(article.ID)),
				)
				analysis.SummaryAttempts++
				dirty = true
				report.SummariesFailed++
			} else {
				analysis.Summary = &summary
				analysis.SummaryAttempts++
				dirty = true
				report.SummariesGenerated++
				s.logger.Info("Summary generated", logger.IntField("article_id", int(article.ID)))
			}
		}
	}

	if dirty {
		if err := s.articleRepo.UpsertAnalysis(ctx, analysis); err != nil {
			return fmt.Errorf("failed to persist analysis for article %d: %w", article.ID, err)
		}
	}
	return nil
}

// analyzeContent runs entity extraction and sentiment scoring. Empty
// content degrades to the documented default analysis without touching
// the models: no entities, neutral polarity, zero subjectivity.
func (s *enrichmentService) analyzeContent(ctx context.Context, content string) ([]dto.Entity, *dto.Sentiment, error) {
	if content == "" {
		return []dto.Entity{}, &dto.Sentiment{Polarity: 0.0, Subjectivity: 0.0}, nil
	}

	entities, err := s.nlpRepo.ExtractEntities(ctx, content)
	if err != nil {
		return nil, nil, fmt.Errorf("entity extraction failed: %w", err)
	}
	if entities == nil {
		entities = []dto.Entity{}
	}

	sentiment, err := s.nlpRepo.ScoreSentiment(ctx, content)
	if err != nil {
		return nil, nil, fmt.Errorf("sentiment scoring failed: %w", err)
	}

	return entities, sentiment, nil
}
