// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package algorithms

import (
	"context"

	"github.com/tomtom215/animerec/internal/recommend"
)

// CollaborativeScorer scores candidates by the latent-factor dot product
// of a fitted ALS model.
type CollaborativeScorer struct {
	model *ALS
}

// NewCollaborativeScorer creates a scorer over a fitted model.
func NewCollaborativeScorer(model *ALS) *CollaborativeScorer {
	return &CollaborativeScorer{model: model}
}

// Name returns the signal name.
func (s *CollaborativeScorer) Name() string {
	return "collaborative"
}

// Score returns x_u' * y_i per candidate. Unknown users score 0 on every
// candidate and unknown candidates score 0.
func (s *CollaborativeScorer) Score(ctx context.Context, userID int, candidates []int) (map[int]float64, error) {
	scores := recommend.ZeroScores(candidates)

	userVec, ok := s.model.userVector(userID)
	if !ok {
		return scores, nil
	}

	for _, itemID := range candidates {
		itemVec, ok := s.model.itemVector(itemID)
		if !ok {
			continue
		}
		scores[itemID] = dot(userVec, itemVec)
	}
	return scores, nil
}
