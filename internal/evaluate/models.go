// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package evaluate

import (
	"context"
	"errors"
	"sort"

	"github.com/tomtom215/animerec/internal/catalog"
	"github.com/tomtom215/animerec/internal/recommend"
	"github.com/tomtom215/animerec/internal/recommend/algorithms"
)

// Recommender is one model under evaluation.
type Recommender interface {
	Name() string

	// Recommend returns up to n item IDs, best first. An empty result
	// means the model has nothing for this user.
	Recommend(ctx context.Context, userID, n int) ([]int, error)
}

// CFOnly recommends straight from the ALS model, excluding seen items.
type CFOnly struct {
	model *algorithms.ALS
}

// NewCFOnly wraps a fitted ALS model.
func NewCFOnly(model *algorithms.ALS) *CFOnly {
	return &CFOnly{model: model}
}

// Name returns the report label.
func (m *CFOnly) Name() string { return "CF-Only" }

// Recommend returns nothing for users the model has not seen.
func (m *CFOnly) Recommend(_ context.Context, userID, n int) ([]int, error) {
	ids, _, err := m.model.Recommend(userID, n)
	if errors.Is(err, recommend.ErrUnknownUser) {
		return nil, nil
	}
	return ids, err
}

// ContentOnly ranks the whole catalog by similarity to the user's liked
// items centroid.
type ContentOnly struct {
	scorer  *algorithms.ContentScorer
	model   *algorithms.ContentModel
	catalog *catalog.Catalog
}

// NewContentOnly builds the content-only model.
func NewContentOnly(scorer *algorithms.ContentScorer, model *algorithms.ContentModel, cat *catalog.Catalog) *ContentOnly {
	return &ContentOnly{scorer: scorer, model: model, catalog: cat}
}

// Name returns the report label.
func (m *ContentOnly) Name() string { return "Content-Only" }

// Recommend falls back to the most popular items when the user has no
// liked items. Liked items are never recommended back.
func (m *ContentOnly) Recommend(ctx context.Context, userID, n int) ([]int, error) {
	profile, liked, err := m.scorer.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(liked) == 0 {
		return m.catalog.MostPopular(n), nil
	}

	ids := m.model.ItemIDs()
	var scores map[int]float64
	if profile != nil {
		scores = m.model.Similarities(profile, ids)
	} else {
		scores = recommend.ZeroScores(ids)
	}
	for _, id := range liked {
		delete(scores, id)
	}

	ranked := make([]int, 0, len(scores))
	for _, id := range ids {
		if _, ok := scores[id]; ok {
			ranked = append(ranked, id)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i]] > scores[ranked[j]]
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}

// Hybrid delegates to the serving engine with its configured weights.
type Hybrid struct {
	engine *recommend.Engine
}

// NewHybrid wraps an engine.
func NewHybrid(engine *recommend.Engine) *Hybrid {
	return &Hybrid{engine: engine}
}

// Name returns the report label.
func (m *Hybrid) Name() string { return "Hybrid" }

// Recommend returns the engine's ranked item IDs.
func (m *Hybrid) Recommend(ctx context.Context, userID, n int) ([]int, error) {
	resp, err := m.engine.Recommend(ctx, recommend.Request{UserID: userID, Limit: n})
	if err != nil {
		return nil, err
	}
	ids := make([]int, len(resp.Recommendations))
	for i := range resp.Recommendations {
		ids[i] = resp.Recommendations[i].ItemID
	}
	return ids, nil
}
