package index

import (
	"sort"

	"news-nexus/internal/dto"
	"news-nexus/internal/entity"
)

// Match is one retrieval result: an article and its cosine similarity
// to the query.
type Match struct {
	Article entity.Article
	Score   float64
}

// Index is the retrieval index over the enriched corpus. It is built
// once at startup and read-only afterwards, so concurrent searches are
// safe.
type Index struct {
	vectorizer *Vectorizer
	articles   []entity.Article
	matrix     [][]float64
}

// Build constructs the index from the corpus. Each article contributes
// its summary when present, otherwise its raw content; articles with
// neither are excluded from both the matrix and the article table so
// positions always correspond.
func Build(items []dto.ArticleWithAnalysis) *Index {
	articles := make([]entity.Article, 0, len(items))
	docs := make([]string, 0, len(items))

	for _, item := range items {
		doc := item.Article.Content
		if item.Analysis != nil && item.Analysis.HasSummary() {
			doc = *item.Analysis.Summary
		}
		if doc == "" {
			continue
		}
		articles = append(articles, item.Article)
		docs = append(docs, doc)
	}

	v := NewVectorizer()
	v.Fit(docs)

	matrix := make([][]float64, len(docs))
	for i, doc := range docs {
		matrix[i] = v.Transform(doc)
	}

	return &Index{
		vectorizer: v,
		articles:   articles,
		matrix:     matrix,
	}
}

// Size returns the number of retrievable documents.
func (ix *Index) Size() int {
	return len(ix.articles)
}

// Search returns the top-k articles by cosine similarity to the
// question, highest first. Ties keep corpus order. Fewer than k
// documents returns all of them; an empty index returns an empty slice.
// A question with only out-of-vocabulary terms scores 0 against every
// document; that is not an error.
func (ix *Index) Search(question string, k int) []Match {
	if k <= 0 || len(ix.articles) == 0 {
		return []Match{}
	}

	qv := ix.vectorizer.Transform(question)

	matches := make([]Match, len(ix.articles))
	for i := range ix.articles {
		matches[i] = Match{
			Article: ix.articles[i],
			Score:   dot(qv, ix.matrix[i]),
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if k > len(matches) {
		k = len(matches)
	}
	return matches[:k]
}

// Both vectors are L2-normalized, so the dot product is the cosine.
func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
