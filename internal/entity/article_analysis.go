package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Entity categories recognized by the entity extraction capability.
const (
	EntityPerson       = "PERSON"
	EntityOrganization = "ORGANIZATION"
	EntityLocation     = "LOCATION"
)

// ArticleAnalysis holds the NLP annotations derived from one article.
// There is at most one analysis per article; the article is referenced
// by id only, the join back to it is done by the repository.
type ArticleAnalysis struct {
	ID                    uint           `gorm:"primaryKey" json:"id"`
	ArticleID             uint           `gorm:"unique;not null" json:"article_id"`
	Entities              datatypes.JSON `gorm:"type:jsonb" json:"entities"`
	SentimentPolarity     float64        `json:"sentiment_polarity"`
	SentimentSubjectivity float64        `json:"sentiment_subjectivity"`
	Summary               *string        `gorm:"type:text" json:"summary,omitempty"`
	SummaryAttempts       int            `gorm:"not null;default:0" json:"summary_attempts"`
	CreatedAt             time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for the ArticleAnalysis model.
func (ArticleAnalysis) TableName() string {
	return "article_analysis"
}

// HasSummary reports whether summarization has succeeded for this row.
func (a *ArticleAnalysis) HasSummary() bool {
	return a.Summary != nil && *a.Summary != ""
}
