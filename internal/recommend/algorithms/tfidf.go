// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package algorithms

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// tokenPattern matches runs of two or more word characters.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Tokenizer splits text into normalized terms: NFKC, case folded, accents
// stripped, stop words removed.
type Tokenizer struct {
	stopWords map[string]struct{}
}

// NewTokenizer creates a tokenizer with an optional stop word list.
func NewTokenizer(stopWords []string) *Tokenizer {
	t := &Tokenizer{
		stopWords: make(map[string]struct{}, len(stopWords)),
	}
	for _, w := range stopWords {
		t.stopWords[w] = struct{}{}
	}
	return t
}

// Tokens returns the terms of text in order of appearance.
func (t *Tokenizer) Tokens(text string) []string {
	if text == "" {
		return nil
	}

	// cases.Caser and the transform chain keep state, so build per call.
	chain := transform.Chain(
		norm.NFKD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFKC,
		cases.Fold(),
	)
	normalized, _, err := transform.String(chain, text)
	if err != nil {
		normalized = strings.ToLower(text)
	}

	matches := tokenPattern.FindAllString(normalized, -1)
	tokens := matches[:0]
	for _, m := range matches {
		if _, stop := t.stopWords[m]; stop {
			continue
		}
		tokens = append(tokens, m)
	}
	return tokens
}

// SparseVector is a sparse row with strictly ascending indices.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// Dot returns the inner product with another sparse vector.
func (v SparseVector) Dot(o SparseVector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(v.Indices) && j < len(o.Indices) {
		switch {
		case v.Indices[i] == o.Indices[j]:
			sum += v.Values[i] * o.Values[j]
			i++
			j++
		case v.Indices[i] < o.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// DotDense returns the inner product with a dense vector.
func (v SparseVector) DotDense(dense []float64) float64 {
	var sum float64
	for k, idx := range v.Indices {
		if idx < len(dense) {
			sum += v.Values[k] * dense[idx]
		}
	}
	return sum
}

// Norm returns the L2 norm.
func (v SparseVector) Norm() float64 {
	var sum float64
	for _, x := range v.Values {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// VectorizerConfig contains configuration for the TF-IDF vectorizer.
type VectorizerConfig struct {
	// StopWords are removed before counting.
	StopWords []string

	// MinDF drops terms found in fewer documents. Values < 1 mean 1.
	MinDF int

	// MaxFeatures keeps only the most frequent terms. Zero keeps all.
	MaxFeatures int
}

// Vectorizer converts text into L2-normalized TF-IDF vectors using
// smoothed inverse document frequency: idf = ln((1+n)/(1+df)) + 1.
type Vectorizer struct {
	modelState
	config    VectorizerConfig
	tokenizer *Tokenizer

	vocabulary map[string]int
	terms      []string
	idf        []float64
}

// NewVectorizer creates an unfitted vectorizer.
func NewVectorizer(cfg VectorizerConfig) *Vectorizer {
	if cfg.MinDF < 1 {
		cfg.MinDF = 1
	}
	if cfg.MaxFeatures < 0 {
		cfg.MaxFeatures = 0
	}
	return &Vectorizer{
		modelState: modelState{name: "tfidf"},
		config:     cfg,
		tokenizer:  NewTokenizer(cfg.StopWords),
		vocabulary: make(map[string]int),
	}
}

// ErrEmptyVocabulary is returned when fitting leaves no terms.
var ErrEmptyVocabulary = errors.New("empty vocabulary")

// Fit learns the vocabulary and idf weights. Terms are indexed in
// lexical order.
func (v *Vectorizer) Fit(ctx context.Context, docs []string) error {
	v.lockFit()
	defer v.unlockFit()

	df := make(map[string]int)
	tf := make(map[string]int)
	for i, doc := range docs {
		if i%1000 == 0 && canceled(ctx) {
			return ctx.Err()
		}
		seen := make(map[string]struct{})
		for _, term := range v.tokenizer.Tokens(doc) {
			tf[term]++
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				df[term]++
			}
		}
	}

	terms := make([]string, 0, len(df))
	for term, count := range df {
		if count >= v.config.MinDF {
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		return fmt.Errorf("fit tfidf over %d documents: %w", len(docs), ErrEmptyVocabulary)
	}

	if v.config.MaxFeatures > 0 && len(terms) > v.config.MaxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if tf[terms[i]] != tf[terms[j]] {
				return tf[terms[i]] > tf[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:v.config.MaxFeatures]
	}
	sort.Strings(terms)

	n := float64(len(docs))
	v.terms = terms
	v.vocabulary = make(map[string]int, len(terms))
	v.idf = make([]float64, len(terms))
	for i, term := range terms {
		v.vocabulary[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	v.markTrained()
	return nil
}

// NumFeatures returns the vocabulary size.
func (v *Vectorizer) NumFeatures() int {
	return len(v.terms)
}

// Transform returns the L2-normalized TF-IDF vector of doc. Documents
// with no known terms yield an empty vector.
func (v *Vectorizer) Transform(doc string) SparseVector {
	counts := make(map[int]float64)
	for _, term := range v.tokenizer.Tokens(doc) {
		if idx, ok := v.vocabulary[term]; ok {
			counts[idx]++
		}
	}
	if len(counts) == 0 {
		return SparseVector{}
	}

	vec := SparseVector{
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}
	for idx := range counts {
		vec.Indices = append(vec.Indices, idx)
	}
	sort.Ints(vec.Indices)

	var sumSq float64
	for _, idx := range vec.Indices {
		w := counts[idx] * v.idf[idx]
		vec.Values = append(vec.Values, w)
		sumSq += w * w
	}

	length := math.Sqrt(sumSq)
	for k := range vec.Values {
		vec.Values[k] /= length
	}
	return vec
}

// VectorizerState is the serializable form of a fitted vectorizer.
type VectorizerState struct {
	Terms     []string
	IDF       []float64
	StopWords []string
	MinDF     int
	MaxFeat   int
	FittedAt  time.Time
}

// State exports the fitted vectorizer for persistence.
func (v *Vectorizer) State() VectorizerState {
	v.lockFit()
	defer v.unlockFit()

	return VectorizerState{
		Terms:     v.terms,
		IDF:       v.idf,
		StopWords: v.config.StopWords,
		MinDF:     v.config.MinDF,
		MaxFeat:   v.config.MaxFeatures,
		FittedAt:  v.LastTrainedAt(),
	}
}

// NewVectorizerFromState restores a fitted vectorizer.
//
//nolint:gocritic // hugeParam: state is consumed once at load
func NewVectorizerFromState(state VectorizerState) (*Vectorizer, error) {
	if len(state.Terms) == 0 {
		return nil, ErrEmptyVocabulary
	}
	if len(state.Terms) != len(state.IDF) {
		return nil, fmt.Errorf("vocabulary has %d terms and %d idf weights", len(state.Terms), len(state.IDF))
	}

	v := NewVectorizer(VectorizerConfig{
		StopWords:   state.StopWords,
		MinDF:       state.MinDF,
		MaxFeatures: state.MaxFeat,
	})
	v.terms = state.Terms
	v.idf = state.IDF
	v.vocabulary = make(map[string]int, len(state.Terms))
	for i, term := range state.Terms {
		if _, dup := v.vocabulary[term]; dup {
			return nil, fmt.Errorf("duplicate term %q", term)
		}
		v.vocabulary[term] = i
	}

	v.markLoaded(state.FittedAt)
	return v, nil
}
