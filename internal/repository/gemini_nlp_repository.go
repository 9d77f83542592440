package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"news-nexus/internal/config"
	"news-nexus/internal/dto"
	"news-nexus/internal/entity"
	"news-nexus/pkg/logger"
	"news-nexus/pkg/ratelimit"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// geminiNLPRepository implements NLPRepository against the Google
// Gemini API. Decoding is pinned to temperature 0 / topK 1 so repeated
// calls with identical input produce identical output.
type geminiNLPRepository struct {
	client         *http.Client
	cfg            *config.Config
	logger         *logger.Logger
	tokenLimiter   *ratelimit.TokenLimiter
	requestLimiter *rate.Limiter
	genAiClient    *genai.Client
}

// NewGeminiNLPRepository creates a new instance of geminiNLPRepository.
func NewGeminiNLPRepository(cfg *config.Config, log *logger.Logger, genAiClient *genai.Client) (NLPRepository, error) {
	requestLimiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.Gemini.MaxRequestPerMinute > 0 {
		secondsPerRequest := time.Minute / time.Duration(cfg.Gemini.MaxRequestPerMinute)
		requestLimiter = rate.NewLimiter(rate.Every(secondsPerRequest), 1)
	}

	tokenLimiter := ratelimit.NewTokenLimiter(cfg.Gemini.MaxTokenPerMinute)

	return &geminiNLPRepository{
		client: &http.Client{
			Timeout: cfg.Gemini.RequestTimeout,
		},
		cfg:            cfg,
		logger:         log,
		requestLimiter: requestLimiter,
		tokenLimiter:   tokenLimiter,
		genAiClient:    genAiClient,
	}, nil
}

// ExtractEntities pulls named entities out of the text, keeping only
// PERSON, ORGANIZATION and LOCATION categories, in order of appearance.
func (r *geminiNLPRepository) ExtractEntities(ctx context.Context, text string) ([]dto.Entity, error) {
	prompt := BuildEntityExtractionPrompt(text)

	resp, err := r.executeGeminiRequest(ctx, prompt, 0)
	if err != nil {
		return nil, err
	}

	var result dto.EntityExtractionResult
	if err := r.unmarshalCandidate(resp, &result); err != nil {
		return nil, err
	}

	entities := make([]dto.Entity, 0, len(result.Entities))
	for _, e := range result.Entities {
		switch e.Category {
		case entity.EntityPerson, entity.EntityOrganization, entity.EntityLocation:
			entities = append(entities, e)
		}
	}
	return entities, nil
}

// ScoreSentiment returns polarity in [-1, 1] and subjectivity in [0, 1]
// for the given text.
func (r *geminiNLPRepository) ScoreSentiment(ctx context.Context, text string) (*dto.Sentiment, error) {
	prompt := BuildSentimentPrompt(text)

	resp, err := r.executeGeminiRequest(ctx, prompt, 0)
	if err != nil {
		return nil, err
	}

	var result dto.SentimentResult
	if err := r.unmarshalCandidate(resp, &result); err != nil {
		return nil, err
	}

	return &dto.Sentiment{
		Polarity:     clamp(result.Polarity, -1.0, 1.0),
		Subjectivity: clamp(result.Subjectivity, 0.0, 1.0),
	}, nil
}

// Summarize produces an abstractive summary of the text. The caller is
// responsible for truncating the input to the model's limit.
func (r *geminiNLPRepository) Summarize(ctx context.Context, text string, minLen, maxLen int) (string, error) {
	prompt := BuildSummarizePrompt(text, minLen, maxLen)

	resp, err := r.executeGeminiRequest(ctx, prompt, maxLen*2)
	if err != nil {
		return "", err
	}

	summary, err := r.candidateText(resp)
	if err != nil {
		return "", err
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", fmt.Errorf("model returned an empty summary")
	}
	return summary, nil
}

// Generate runs the prompt through the model with bounded output.
func (r *geminiNLPRepository) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	resp, err := r.executeGeminiRequest(ctx, prompt, maxTokens)
	if err != nil {
		return "", err
	}
	text, err := r.candidateText(resp)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (r *geminiNLPRepository) executeGeminiRequest(ctx context.Context, prompt string, maxOutputTokens int) (*dto.GeminiAPIResponse, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, "user"),
	}
	tokenResp, err := r.genAiClient.Models.CountTokens(ctx, r.cfg.Gemini.Model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count tokens: %w", err)
	}

	r.logger.Debug("Gemini token count",
		logger.IntField("total_tokens", int(tokenResp.TotalTokens)),
		logger.IntField("remaining", r.tokenLimiter.GetRemaining()),
	)

	if err := r.tokenLimiter.Wait(ctx, int(tokenResp.TotalTokens)); err != nil {
		return nil, fmt.Errorf("failed to wait for token limit: %w", err)
	}
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	payload := dto.GeminiAPIRequest{
		Contents: []dto.Content{{Parts: []dto.Part{{Text: prompt}}}},
		GenerationConfig: &dto.GenerationConfig{
			Temperature:     0,
			TopK:            1,
			MaxOutputTokens: maxOutputTokens,
		},
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		r.logger.Error("Failed to marshal payload", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	apiURL := fmt.Sprintf("%s/%s:generateContent?key=%s", r.cfg.Gemini.BaseURL, r.cfg.Gemini.Model, r.cfg.Gemini.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		r.logger.Error("Failed to create new http request", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to create new http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Error("Failed to send request to Gemini API", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to send request to Gemini API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		r.logger.Error("Received non-OK response from Gemini API",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", string(body)),
		)
		return nil, fmt.Errorf("gemini API returned status %d", resp.StatusCode)
	}

	var geminiResp dto.GeminiAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return nil, fmt.Errorf("failed to decode Gemini response: %w", err)
	}
	return &geminiResp, nil
}

func (r *geminiNLPRepository) candidateText(resp *dto.GeminiAPIResponse) (string, error) {
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content found in Gemini response")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

func (r *geminiNLPRepository) unmarshalCandidate(resp *dto.GeminiAPIResponse, out interface{}) error {
	rawJSON, err := r.candidateText(resp)
	if err != nil {
		return err
	}
	rawJSON = strings.Trim(rawJSON, "`json\n`")

	if err := json.Unmarshal([]byte(rawJSON), out); err != nil {
		r.logger.Error("Failed to unmarshal Gemini response", logger.ErrorField(err), logger.StringField("response", rawJSON))
		return fmt.Errorf("failed to unmarshal Gemini response: %w", err)
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
