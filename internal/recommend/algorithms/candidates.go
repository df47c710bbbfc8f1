// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package algorithms

import (
	"context"
	"errors"

	"github.com/tomtom215/animerec/internal/recommend"
)

// CandidateGenerator produces the per-request candidate pool: the ALS
// top-N for known users and the popularity ranking for everyone else.
type CandidateGenerator struct {
	model    *ALS
	fallback *Popularity
}

// NewCandidateGenerator validates its artifacts up front; a nil model or
// ranking is reported as ErrMissingArtifact.
func NewCandidateGenerator(model *ALS, fallback *Popularity) (*CandidateGenerator, error) {
	if model == nil {
		return nil, recommend.NewError(recommend.KindMissingArtifact, "new candidate generator", errors.New("collaborative model is nil"))
	}
	if fallback == nil {
		return nil, recommend.NewError(recommend.KindMissingArtifact, "new candidate generator", errors.New("popularity ranking is nil"))
	}
	return &CandidateGenerator{model: model, fallback: fallback}, nil
}

// Generate returns at most count item IDs. Unknown users take the
// cold-start path and never produce an error.
func (g *CandidateGenerator) Generate(ctx context.Context, userID, count int) (recommend.CandidateSet, error) {
	if count <= 0 {
		return recommend.CandidateSet{Items: []int{}, Path: recommend.PathModel}, nil
	}

	ids, _, err := g.model.Recommend(userID, count)
	switch {
	case err == nil:
		return recommend.CandidateSet{Items: ids, Path: recommend.PathModel}, nil
	case errors.Is(err, recommend.ErrUnknownUser):
		return recommend.CandidateSet{Items: g.fallback.GetTopK(count), Path: recommend.PathColdStart}, nil
	default:
		return recommend.CandidateSet{}, err
	}
}
