package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"news-nexus/internal/config"
	"news-nexus/internal/dto"
	"news-nexus/internal/index"
	"news-nexus/internal/repository"
	"news-nexus/pkg/logger"
	pkgredis "news-nexus/pkg/redis"
)

const contextSeparator = "\n\n---\n\n"

const answerCacheKeyPrefix = "nexus:answer:"

// RAGService answers questions over the enriched corpus: retrieve the
// most similar articles, assemble their context, and generate a grounded
// answer.
type RAGService interface {
	Answer(ctx context.Context, question string) (*dto.AskResponse, error)
}

// NewRAGService creates a new RAG service. cache may be nil, in which
// case answers are generated fresh on every request; generation is
// deterministic, so the cache only saves model calls, never changes
// results.
func NewRAGService(cfg *config.Config, idx *index.Index, nlpRepo repository.NLPRepository, cache *pkgredis.Client, log *logger.Logger) RAGService {
	return &ragService{
		cfg:     cfg,
		index:   idx,
		nlpRepo: nlpRepo,
		cache:   cache,
		logger:  log,
	}
}

type ragService struct {
	cfg     *config.Config
	index   *index.Index
	nlpRepo repository.NLPRepository
	cache   *pkgredis.Client
	logger  *logger.Logger
}

// Answer runs the full retrieve, augment, generate pipeline for one
// question. Validation happens before any retrieval work.
func (s *ragService) Answer(ctx context.Context, question string) (*dto.AskResponse, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}

	if cached := s.cacheGet(ctx, question); cached != nil {
		return cached, nil
	}

	matches := s.index.Search(question, s.cfg.RAG.TopK)
	s.logger.Info("Retrieved relevant articles",
		logger.IntField("count", len(matches)),
		logger.StringField("question", question),
	)
	for _, m := range matches {
		s.logger.Debug("Retrieval match",
			logger.StringField("title", m.Article.Title),
			logger.Float64Field("score", m.Score),
		)
	}

	prompt := repository.BuildAnswerPrompt(buildContextBlock(matches), question)

	answer, err := s.nlpRepo.Generate(ctx, prompt, s.cfg.RAG.MaxAnswerTokens)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	sources := make([]dto.Source, 0, len(matches))
	for _, m := range matches {
		sources = append(sources, dto.Source{
			Title: m.Article.Title,
			URL:   m.Article.URL,
		})
	}

	resp := &dto.AskResponse{
		Answer:  answer,
		Sources: sources,
	}
	s.cacheSet(ctx, question, resp)
	return resp, nil
}

// buildContextBlock renders the retrieved articles, highest similarity
// first, as fixed two-line blocks joined by a separator. Articles
// without content contribute nothing to the context but stay in the
// sources list, which tracks retrieval order positionally.
func buildContextBlock(matches []index.Match) string {
	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		if m.Article.Content == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("Article Title: %s\nArticle Content: %s",
			m.Article.Title, m.Article.Content))
	}
	return strings.Join(parts, contextSeparator)
}

func (s *ragService) cacheGet(ctx context.Context, question string) *dto.AskResponse {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, answerCacheKey(question)).Bytes()
	if err != nil {
		return nil
	}
	var resp dto.AskResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil
	}
	s.logger.Debug("Answer cache hit", logger.StringField("question", question))
	return &resp
}

func (s *ragService) cacheSet(ctx context.Context, question string, resp *dto.AskResponse) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, answerCacheKey(question), raw, s.cfg.RAG.AnswerCacheTTL).Err(); err != nil {
		s.logger.Warn("Failed to cache answer", logger.ErrorField(err))
	}
}

func answerCacheKey(question string) string {
	sum := sha256.Sum256([]byte(question))
	return answerCacheKeyPrefix + hex.EncodeToString(sum[:])
}
