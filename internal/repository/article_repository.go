package repository

import (
	"context"
	"errors"

	"news-nexus/internal/dto"
	"news-nexus/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ArticleRepository defines the interface for interacting with the
// article corpus and its derived analyses.
type ArticleRepository interface {
	FindByURL(ctx context.Context, url string) (*entity.Article, error)
	Create(ctx context.Context, article *entity.Article) error
	FindNeedingEnrichment(ctx context.Context, maxSummaryAttempts int) ([]dto.ArticleWithAnalysis, error)
	UpsertAnalysis(ctx context.Context, analysis *entity.ArticleAnalysis) error
	FindAllWithAnalysis(ctx context.Context) ([]dto.ArticleWithAnalysis, error)
}

// NewArticleRepository creates a new instance of ArticleRepository.
func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{
		db: db,
	}
}

type articleRepository struct {
	db *gorm.DB
}

// FindByURL returns the article with the given URL, or nil when no such
// article exists. Absence is not an error.
func (r *articleRepository) FindByURL(ctx context.Context, url string) (*entity.Article, error) {
	var article entity.Article
	err := r.db.WithContext(ctx).Where("url = ?", url).First(&article).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// Create saves a new article to the database.
func (r *articleRepository) Create(ctx context.Context, article *entity.Article) error {
	return r.db.WithContext(ctx).Create(article).Error
}

// FindNeedingEnrichment returns every article that either has no
// analysis row, or has one whose summary is still unset. This selection
// rule makes repeated pipeline runs converge to a fixed point.
// maxSummaryAttempts > 0 additionally excludes rows whose summarization
// already failed that many times.
func (r *articleRepository) FindNeedingEnrichment(ctx context.Context, maxSummaryAttempts int) ([]dto.ArticleWithAnalysis, error) {
	query := r.db.WithContext(ctx).
		Model(&entity.Article{}).
		Joins("LEFT JOIN article_analysis ON article_analysis.article_id = articles.id").
		Order("articles.id ASC")

	if maxSummaryAttempts > 0 {
		query = query.Where(
			"article_analysis.id IS NULL OR (article_analysis.summary IS NULL AND article_analysis.summary_attempts < ?)",
			maxSummaryAttempts,
		)
	} else {
		query = query.Where("article_analysis.id IS NULL OR article_analysis.summary IS NULL")
	}

	var articles []entity.Article
	if err := query.Find(&articles).Error; err != nil {
		return nil, err
	}
	return r.attachAnalyses(ctx, articles)
}

// UpsertAnalysis inserts the analysis row, or updates the existing one
// keyed on article_id. Entities and sentiment always land in the same
// write as the row itself, so they are never partially written.
func (r *articleRepository) UpsertAnalysis(ctx context.Context, analysis *entity.ArticleAnalysis) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "article_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"entities", "sentiment_polarity", "sentiment_subjectivity",
			"summary", "summary_attempts", "updated_at",
		}),
	}).Create(analysis).Error
}

// FindAllWithAnalysis returns every article paired with its analysis if
// one exists, ordered by article id.
func (r *articleRepository) FindAllWithAnalysis(ctx context.Context) ([]dto.ArticleWithAnalysis, error) {
	var articles []entity.Article
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&articles).Error; err != nil {
		return nil, err
	}
	return r.attachAnalyses(ctx, articles)
}

func (r *articleRepository) attachAnalyses(ctx context.Context, articles []entity.Article) ([]dto.ArticleWithAnalysis, error) {
	if len(articles) == 0 {
		return []dto.ArticleWithAnalysis{}, nil
	}

	ids := make([]uint, 0, len(articles))
	for _, a := range articles {
		ids = append(ids, a.ID)
	}

	var analyses []entity.ArticleAnalysis
	if err := r.db.WithContext(ctx).Where("article_id IN ?", ids).Find(&analyses).Error; err != nil {
		return nil, err
	}

	byArticleID := make(map[uint]*entity.ArticleAnalysis, len(analyses))
	for i := range analyses {
		byArticleID[analyses[i].ArticleID] = &analyses[i]
	}

	result := make([]dto.ArticleWithAnalysis, 0, len(articles))
	for _, a := range articles {
		result = append(result, dto.ArticleWithAnalysis{
			Article:  a,
			Analysis: byArticleID[a.ID],
		})
	}
	return result, nil
}
