package config

import (
	"time"

	"news-nexus/pkg/config"
)

// NewsAPI holds the configuration for the newsapi.org client.
type NewsAPI struct {
	BaseURL             string        `mapstructure:"base_url"`
	APIKey              string        `mapstructure:"api_key"`
	Query               string        `mapstructure:"query"`
	Language            string        `mapstructure:"language"`
	PageSize            int           `mapstructure:"page_size"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	CacheTTL            time.Duration `mapstructure:"cache_ttl"`
}

// RSS holds the configuration for RSS feed ingestion.
type RSS struct {
	Feeds            []string `mapstructure:"feeds"`
	FetchFullContent bool     `mapstructure:"fetch_full_content"`
}

// Gemini holds the configuration for the Gemini API.
type Gemini struct {
	APIKey              string        `mapstructure:"api_key"`
	Model               string        `mapstructure:"model"`
	BaseURL             string        `mapstructure:"base_url"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int           `mapstructure:"max_token_per_minute"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout"`
}

// RAG holds the configuration for the question answering engine.
type RAG struct {
	TopK            int           `mapstructure:"top_k"`
	MaxAnswerTokens int           `mapstructure:"max_answer_tokens"`
	AnswerCacheTTL  time.Duration `mapstructure:"answer_cache_ttl"`
}

// Pipeline holds the configuration for the ingest/enrich batch pipeline.
type Pipeline struct {
	CronSchedule         string `mapstructure:"cron_schedule"`
	SummaryMaxInputChars int    `mapstructure:"summary_max_input_chars"`
	SummaryMinLength     int    `mapstructure:"summary_min_length"`
	SummaryMaxLength     int    `mapstructure:"summary_max_length"`
	// MaxSummaryAttempts stops retrying failed summaries after the
	// given number of runs. 0 retries forever.
	MaxSummaryAttempts int `mapstructure:"max_summary_attempts"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Config holds the full configuration for both services.
type Config struct {
	App      config.App      `mapstructure:"app"`
	Logger   config.Logger   `mapstructure:"logger"`
	Database config.Database `mapstructure:"database"`
	Redis    config.Redis    `mapstructure:"redis"`
	API      config.API      `mapstructure:"api"`
	NewsAPI  NewsAPI         `mapstructure:"newsapi"`
	RSS      RSS             `mapstructure:"rss"`
	Gemini   Gemini          `mapstructure:"gemini"`
	RAG      RAG             `mapstructure:"rag"`
	Pipeline Pipeline        `mapstructure:"pipeline"`
	Telegram Telegram        `mapstructure:"telegram"`
}

// Load loads the configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.RAG.TopK == 0 {
		c.RAG.TopK = 3
	}
	if c.RAG.MaxAnswerTokens == 0 {
		c.RAG.MaxAnswerTokens = 512
	}
	if c.Pipeline.SummaryMaxInputChars == 0 {
		c.Pipeline.SummaryMaxInputChars = 1024
	}
	if c.Pipeline.SummaryMinLength == 0 {
		c.Pipeline.SummaryMinLength = 40
	}
	if c.Pipeline.SummaryMaxLength == 0 {
		c.Pipeline.SummaryMaxLength = 150
	}
	if c.NewsAPI.PageSize == 0 {
		c.NewsAPI.PageSize = 100
	}
	if c.NewsAPI.Language == "" {
		c.NewsAPI.Language = "en"
	}
	if c.Gemini.RequestTimeout == 0 {
		c.Gemini.RequestTimeout = 90 * time.Second
	}
}
