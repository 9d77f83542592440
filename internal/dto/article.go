package dto

import (
	"news-nexus/internal/entity"
)

// ArticleWithAnalysis pairs an article with its analysis, if any.
// Analysis is nil when the article has not been enriched yet.
type ArticleWithAnalysis struct {
	Article  entity.Article
	Analysis *entity.ArticleAnalysis
}
