package service

import (
	"context"
	"fmt"
	"time"

	"news-nexus/internal/dto"
	"news-nexus/internal/entity"
	"news-nexus/internal/repository"
	"news-nexus/pkg/logger"
	"news-nexus/pkg/utils"
)

// IngestionService defines the interface for pulling articles from the
// configured news sources into the corpus store.
type IngestionService interface {
	Run(ctx context.Context, query string) (*dto.IngestReport, error)
}

// NewIngestionService creates a new ingestion service over the given
// sources. A record's URL is the dedup key: articles already present
// are skipped, never rewritten.
func NewIngestionService(articleRepo repository.ArticleRepository, sources []repository.NewsSourceRepository, log *logger.Logger) IngestionService {
	return &ingestionService{
		articleRepo: articleRepo,
		sources:     sources,
		logger:      log,
	}
}

type ingestionService struct {
	articleRepo repository.ArticleRepository
	sources     []repository.NewsSourceRepository
	logger      *logger.Logger
}

// Run fetches from every source and inserts unseen articles. A source
// fetch failure aborts the run with the store unchanged beyond what was
// already committed; per-record failures are counted and skipped.
func (s *ingestionService) Run(ctx context.Context, query string) (*dto.IngestReport, error) {
	report := &dto.IngestReport{}

	for _, source := range s.sources {
		records, err := source.Fetch(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch news: %w", err)
		}
		report.Fetched += len(records)

		for _, record := range records {
			if !utils.ShouldContinue(ctx, s.logger) {
				return report, ctx.Err()
			}
			if record.URL == "" {
				report.Failed++
				continue
			}

			existing, err := s.articleRepo.FindByURL(ctx, record.URL)
			if err != nil {
				return report, fmt.Errorf("failed to look up article by url: %w", err)
			}
			if existing != nil {
				s.logger.Debug("Article already exists, skipping",
					logger.StringField("url", record.URL),
				)
				report.Skipped++
				continue
			}

			article, err := s.toArticle(record)
			if err != nil {
				s.logger.Warn("Skipping malformed article record",
					logger.ErrorField(err),
					logger.StringField("url", record.URL),
				)
				report.Failed++
				continue
			}

			if err := s.articleRepo.Create(ctx, article); err != nil {
				return report, fmt.Errorf("failed to insert article: %w", err)
			}
			report.Added++
		}
	}

	s.logger.Info("Ingestion run complete",
		logger.IntField("fetched", report.Fetched),
		logger.IntField("added", report.Added),
		logger.IntField("skipped", report.Skipped),
		logger.IntField("failed", report.Failed),
	)
	return report, nil
}

func (s *ingestionService) toArticle(record dto.RawArticle) (*entity.Article, error) {
	var publishedAt *time.Time
	if record.PublishedAt != "" {
		t, err := time.Parse(time.RFC3339, record.PublishedAt)
		if err != nil {
			return nil, fmt.Errorf("invalid publishedAt %q: %w", record.PublishedAt, err)
		}
		publishedAt = &t
	}

	var author *string
	if record.Author != "" {
		author = &record.Author
	}

	return &entity.Article{
		Title:       record.Title,
		SourceName:  record.SourceName,
		Author:      author,
		URL:         record.URL,
		PublishedAt: publishedAt,
		Content:     record.Content,
	}, nil
}
