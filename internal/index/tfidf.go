package index

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// defaultMaxDF drops terms occurring in more than this fraction of
// documents; such terms carry almost no signal for retrieval.
const defaultMaxDF = 0.7

// Vectorizer is a TF-IDF vectorizer. It builds a vocabulary from a
// fixed corpus and maps texts into that vector space; terms outside the
// fitted vocabulary contribute nothing at transform time.
type Vectorizer struct {
	vocabulary   map[string]int
	idf          []float64
	dimension    int
	maxDF        float64
	fitted       bool
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewVectorizer creates an unfitted TF-IDF vectorizer with the default
// english stopword list and document-frequency cutoff.
func NewVectorizer() *Vectorizer {
	return &Vectorizer{
		vocabulary:   make(map[string]int),
		maxDF:        defaultMaxDF,
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		stopwords:    englishStopwords(),
	}
}

// Fit builds the vocabulary and IDF values from the corpus. Fitting an
// empty corpus is valid and yields a zero-dimensional space.
func (v *Vectorizer) Fit(corpus []string) {
	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range v.tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	n := float64(len(corpus))
	terms := make([]string, 0, len(df))
	for term, count := range df {
		// Drop terms above the document-frequency cutoff.
		if n > 0 && float64(count)/n > v.maxDF {
			continue
		}
		terms = append(terms, term)
	}
	// Stable vocabulary ordering.
	sort.Strings(terms)

	v.vocabulary = make(map[string]int, len(terms))
	v.idf = make([]float64, len(terms))
	for i, term := range terms {
		v.vocabulary[term] = i
		// Smoothed IDF.
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	v.dimension = len(terms)
	v.fitted = true
}

// Dimension returns the size of the fitted vocabulary.
func (v *Vectorizer) Dimension() int { return v.dimension }

// Transform maps text into the fitted vector space. The result is
// L2-normalized, so cosine similarity between transformed vectors is a
// plain dot product. A text with only out-of-vocabulary terms maps to
// the zero vector.
func (v *Vectorizer) Transform(text string) []float64 {
	vec := make([]float64, v.dimension)
	if !v.fitted || v.dimension == 0 {
		return vec
	}

	tf := make(map[int]int)
	total := 0
	for _, tok := range v.tokenize(text) {
		if idx, ok := v.vocabulary[tok]; ok {
			tf[idx]++
			total++
		}
	}
	if total == 0 {
		return vec
	}

	for idx, count := range tf {
		vec[idx] = float64(count) / float64(total) * v.idf[idx]
	}

	norm := 0.0
	for _, x := range vec {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

func (v *Vectorizer) tokenize(text string) []string {
	raw := v.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, tok := range raw {
		if _, isStop := v.stopwords[tok]; isStop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func englishStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for",
		"to", "of", "in", "on", "at", "by", "with", "as", "is", "are",
		"was", "were", "be", "been", "being", "it", "its", "this", "that",
		"these", "those", "from", "up", "down", "over", "under", "again",
		"further", "than", "so", "such", "into", "about", "between",
		"through", "during", "before", "after", "above", "below", "out",
		"off", "own", "same", "too", "very", "can", "will", "just",
		"should", "now", "he", "she", "they", "them", "his", "her",
		"their", "we", "you", "i", "what", "which", "who", "whom", "when",
		"where", "why", "how", "all", "any", "both", "each", "few",
		"more", "most", "other", "some", "no", "nor", "not", "only",
		"do", "does", "did", "doing", "have", "has", "had", "having",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
