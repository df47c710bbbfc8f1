// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package algorithms

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/tomtom215/animerec/internal/recommend"
)

// ContentModel owns the TF-IDF matrix: one L2-normalized vector per
// catalog item. The matrix is built once on first use and shared
// read-only afterwards.
type ContentModel struct {
	vectorizer *Vectorizer
	itemIDs    []int
	synopses   []string

	once   sync.Once
	builds atomic.Int32
	matrix []SparseVector
	index  map[int]int
}

// NewContentModel pairs a fitted vectorizer with the catalog. Duplicate
// item IDs keep their first occurrence.
//
//nolint:gocritic // rangeValCopy: Item is small
func NewContentModel(vectorizer *Vectorizer, items []recommend.Item) *ContentModel {
	m := &ContentModel{
		vectorizer: vectorizer,
		itemIDs:    make([]int, 0, len(items)),
		synopses:   make([]string, 0, len(items)),
	}
	seen := make(map[int]struct{}, len(items))
	for _, item := range items {
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}
		m.itemIDs = append(m.itemIDs, item.ID)
		m.synopses = append(m.synopses, item.Synopsis)
	}
	return m
}

// Build transforms every synopsis. Only the first call does any work.
func (m *ContentModel) Build() {
	m.once.Do(func() {
		m.builds.Add(1)
		matrix := make([]SparseVector, len(m.synopses))
		index := make(map[int]int, len(m.itemIDs))
		for row, id := range m.itemIDs {
			matrix[row] = m.vectorizer.Transform(m.synopses[row])
			index[id] = row
		}
		m.matrix = matrix
		m.index = index
		// Synopses are no longer needed once vectorized.
		m.synopses = nil
	})
}

// NumFeatures returns the vocabulary size of the underlying vectorizer.
func (m *ContentModel) NumFeatures() int {
	return m.vectorizer.NumFeatures()
}

// Len returns the number of item vectors.
func (m *ContentModel) Len() int {
	m.Build()
	return len(m.matrix)
}

// ItemIDs returns the catalog item IDs in matrix row order.
func (m *ContentModel) ItemIDs() []int {
	out := make([]int, len(m.itemIDs))
	copy(out, m.itemIDs)
	return out
}

// Vector returns the TF-IDF vector of an item.
func (m *ContentModel) Vector(itemID int) (SparseVector, bool) {
	m.Build()
	row, ok := m.index[itemID]
	if !ok {
		return SparseVector{}, false
	}
	return m.matrix[row], true
}

// Centroid returns the arithmetic mean of the vectors of the given items
// as a dense vector, and how many items contributed. Unknown items are
// skipped; a zero count means there is no profile.
func (m *ContentModel) Centroid(itemIDs []int) ([]float64, int) {
	m.Build()

	var profile []float64
	count := 0
	for _, id := range itemIDs {
		row, ok := m.index[id]
		if !ok {
			continue
		}
		if profile == nil {
			profile = make([]float64, m.vectorizer.NumFeatures())
		}
		vec := m.matrix[row]
		for k, idx := range vec.Indices {
			profile[idx] += vec.Values[k]
		}
		count++
	}
	if count == 0 {
		return nil, 0
	}

	inv := 1.0 / float64(count)
	for i := range profile {
		profile[i] *= inv
	}
	return profile, count
}

// Similarities scores each candidate against a profile. Unknown
// candidates score 0.
func (m *ContentModel) Similarities(profile []float64, candidates []int) map[int]float64 {
	m.Build()

	scores := recommend.ZeroScores(candidates)
	if profile == nil {
		return scores
	}
	for _, id := range candidates {
		row, ok := m.index[id]
		if !ok {
			continue
		}
		scores[id] = m.matrix[row].DotDense(profile)
	}
	return scores
}

// ContentScorer scores candidates by similarity to the centroid of the
// items a user liked.
type ContentScorer struct {
	model     *ContentModel
	ratings   recommend.LikedItemsSource
	threshold float64
	logger    zerolog.Logger
}

// NewContentScorer creates a content scorer. threshold is the minimum
// rating counted as liked.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewContentScorer(model *ContentModel, ratings recommend.LikedItemsSource, threshold float64, logger zerolog.Logger) *ContentScorer {
	return &ContentScorer{
		model:     model,
		ratings:   ratings,
		threshold: threshold,
		logger:    logger.With().Str("component", "content_scorer").Logger(),
	}
}

// Name returns the signal name.
func (s *ContentScorer) Name() string {
	return "content"
}

// Score returns the cosine similarity of each candidate to the user's
// profile. Users with no liked items score 0 everywhere. A ratings store
// failure also scores 0 everywhere and is returned wrapped in
// ErrRatingsStoreUnavailable.
func (s *ContentScorer) Score(ctx context.Context, userID int, candidates []int) (map[int]float64, error) {
	liked, err := s.ratings.LikedItems(ctx, userID, s.threshold)
	if err != nil {
		return recommend.ZeroScores(candidates), recommend.NewError(recommend.KindRatingsStoreUnavailable, "liked items", err)
	}

	profile, n := s.model.Centroid(liked)
	if n == 0 {
		s.logger.Debug().Int("user_id", userID).Int("liked", len(liked)).Msg("no content profile")
		return recommend.ZeroScores(candidates), nil
	}

	return s.model.Similarities(profile, candidates), nil
}

// Profile returns the user's centroid, or nil when there is none.
func (s *ContentScorer) Profile(ctx context.Context, userID int) ([]float64, []int, error) {
	liked, err := s.ratings.LikedItems(ctx, userID, s.threshold)
	if err != nil {
		return nil, nil, recommend.NewError(recommend.KindRatingsStoreUnavailable, "liked items", err)
	}
	profile, n := s.model.Centroid(liked)
	if n == 0 {
		return nil, liked, nil
	}
	return profile, liked, nil
}
