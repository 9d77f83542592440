package entity

import (
	"time"
)

// Article represents a single ingested news article. Articles are
// immutable after insertion; derived data lives in ArticleAnalysis.
type Article struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	SourceName  string     `gorm:"type:varchar(100)" json:"source_name"`
	Author      *string    `gorm:"type:varchar(100)" json:"author,omitempty"`
	URL         string     `gorm:"unique;not null" json:"url"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Content     string     `gorm:"type:text" json:"content"`
	FetchedAt   time.Time  `gorm:"autoCreateTime" json:"fetched_at"`
}

// TableName specifies the table name for the Article model.
func (Article) TableName() string {
	return "articles"
}
