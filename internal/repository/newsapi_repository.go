package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"news-nexus/internal/config"
	"news-nexus/internal/dto"
	"news-nexus/pkg/logger"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const defaultNewsAPIBaseURL = "https://newsapi.org/v2/everything"

// newsAPIRepository fetches articles from newsapi.org.
type newsAPIRepository struct {
	client         *http.Client
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
	responseCache  *cache.Cache
}

// NewNewsAPIRepository creates a new instance of newsAPIRepository.
func NewNewsAPIRepository(cfg *config.Config, log *logger.Logger) NewsSourceRepository {
	limit := rate.Inf
	if cfg.NewsAPI.MaxRequestPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.NewsAPI.MaxRequestPerMinute))
	}
	cacheTTL := cfg.NewsAPI.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}
	return &newsAPIRepository{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		cfg:            cfg,
		logger:         log,
		requestLimiter: rate.NewLimiter(limit, 1),
		responseCache:  cache.New(cacheTTL, 2*cacheTTL),
	}
}

// Fetch retrieves articles matching the query from the NewsAPI
// /v2/everything endpoint. A non-2xx response aborts the fetch.
func (r *newsAPIRepository) Fetch(ctx context.Context, query string) ([]dto.RawArticle, error) {
	if cached, found := r.responseCache.Get(query); found {
		r.logger.Debug("NewsAPI cache hit", logger.StringField("query", query))
		return cached.([]dto.RawArticle), nil
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	baseURL := r.cfg.NewsAPI.BaseURL
	if baseURL == "" {
		baseURL = defaultNewsAPIBaseURL
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("language", r.cfg.NewsAPI.Language)
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", strconv.Itoa(r.cfg.NewsAPI.PageSize))
	params.Set("apiKey", r.cfg.NewsAPI.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create news request: %w", err)
	}

	r.logger.Info("Fetching news", logger.StringField("query", query))

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch news: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read news response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.Error("Received non-OK response from NewsAPI",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", string(body)),
		)
		return nil, fmt.Errorf("newsapi returned status %d", resp.StatusCode)
	}

	var apiResp dto.NewsAPIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal news response: %w", err)
	}
	if apiResp.Status != "ok" {
		return nil, fmt.Errorf("newsapi error %s: %s", apiResp.Code, apiResp.Message)
	}

	articles := make([]dto.RawArticle, 0, len(apiResp.Articles))
	for _, item := range apiResp.Articles {
		articles = append(articles, dto.RawArticle{
			Title:       item.Title,
			SourceName:  item.Source.Name,
			Author:      item.Author,
			URL:         item.URL,
			PublishedAt: item.PublishedAt,
			Content:     item.Content,
		})
	}

	r.logger.Info("Successfully fetched articles", logger.IntField("count", len(articles)))
	r.responseCache.Set(query, articles, cache.DefaultExpiration)

	return articles, nil
}
