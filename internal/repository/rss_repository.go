package repository

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"news-nexus/internal/config"
	"news-nexus/internal/dto"
	"news-nexus/pkg/logger"

	"github.com/PuerkitoBio/goquery"
	"github.com/mauidude/go-readability"
	"github.com/mmcdole/gofeed"
)

// rssRepository fetches articles from a configured set of RSS feeds.
type rssRepository struct {
	cfg    *config.Config
	logger *logger.Logger
	client *http.Client
	parser *gofeed.Parser
}

// NewRSSRepository creates a new instance of rssRepository.
func NewRSSRepository(cfg *config.Config, log *logger.Logger) NewsSourceRepository {
	return &rssRepository{
		cfg:    cfg,
		logger: log,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		parser: gofeed.NewParser(),
	}
}

// Fetch parses every configured feed and returns its items as raw
// articles. The query parameter is unused for RSS; feeds are already
// topic-scoped by configuration. A feed that fails to parse is skipped
// so one dead feed does not abort the run.
func (r *rssRepository) Fetch(ctx context.Context, query string) ([]dto.RawArticle, error) {
	var articles []dto.RawArticle

	for _, feedURL := range r.cfg.RSS.Feeds {
		feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			r.logger.Error("Failed to parse RSS feed",
				logger.ErrorField(err),
				logger.StringField("feed", feedURL),
			)
			continue
		}

		for _, item := range feed.Items {
			if item.Link == "" {
				continue
			}
			content := stripHTML(item.Content)
			if content == "" {
				content = stripHTML(item.Description)
			}
			if content == "" && r.cfg.RSS.FetchFullContent {
				extracted, err := r.extractContent(ctx, item.Link)
				if err != nil {
					r.logger.Warn("Failed to extract article content",
						logger.ErrorField(err),
						logger.StringField("link", item.Link),
					)
				} else {
					content = extracted
				}
			}

			author := ""
			if item.Author != nil {
				author = item.Author.Name
			}
			publishedAt := ""
			if item.PublishedParsed != nil {
				publishedAt = item.PublishedParsed.Format(time.RFC3339)
			}

			articles = append(articles, dto.RawArticle{
				Title:       item.Title,
				SourceName:  feed.Title,
				Author:      author,
				URL:         item.Link,
				PublishedAt: publishedAt,
				Content:     content,
			})
		}
	}

	return articles, nil
}

// extractContent downloads the linked page and pulls the readable
// article body out of it.
func (r *rssRepository) extractContent(ctx context.Context, link string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read page body: %w", err)
	}

	doc, err := readability.NewDocument(string(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse page: %w", err)
	}

	return strings.TrimSpace(stripHTML(doc.Content())), nil
}

// stripHTML reduces an HTML fragment to its text content.
func stripHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}
