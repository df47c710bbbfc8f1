// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package api

import (
	"net/http"
	"strconv"

	"github.com/tomtom215/animerec/internal/models"
	"github.com/tomtom215/animerec/internal/recommend"
)

// RecommendationsRequest holds the parsed query of
// GET /api/v1/recommendations/{userID}.
type RecommendationsRequest struct {
	Limit int      `query:"limit" validate:"min=1,max=50"`
	Alpha *float64 `query:"alpha" validate:"omitempty,finite,gte=0,lte=1"`
	Beta  *float64 `query:"beta" validate:"omitempty,finite,gte=0,lte=1"`
	Gamma *float64 `query:"gamma" validate:"omitempty,finite,gte=0,lte=1"`
}

// parseRecommendationsRequest reads and validates the query parameters.
// A missing limit uses defaultLimit.
func parseRecommendationsRequest(r *http.Request, defaultLimit int) (*RecommendationsRequest, *models.APIError) {
	q := r.URL.Query()
	req := &RecommendationsRequest{Limit: defaultLimit}

	if s := q.Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil {
			return nil, malformed("limit")
		}
		req.Limit = limit
	}

	for _, p := range []struct {
		name string
		dst  **float64
	}{
		{"alpha", &req.Alpha},
		{"beta", &req.Beta},
		{"gamma", &req.Gamma},
	} {
		s := q.Get(p.name)
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, malformed(p.name)
		}
		*p.dst = &v
	}

	if apiErr := validateRequest(req); apiErr != nil {
		return nil, apiErr
	}
	return req, nil
}

// Weights merges the overrides onto base. It returns nil when no weight
// was overridden so the engine keeps its configured weights.
func (req *RecommendationsRequest) Weights(base recommend.Weights) *recommend.Weights {
	if req.Alpha == nil && req.Beta == nil && req.Gamma == nil {
		return nil
	}
	w := base
	if req.Alpha != nil {
		w.Content = *req.Alpha
	}
	if req.Beta != nil {
		w.Collaborative = *req.Beta
	}
	if req.Gamma != nil {
		w.Quality = *req.Gamma
	}
	return &w
}

func malformed(field string) *models.APIError {
	return &models.APIError{
		Code:    ErrCodeValidation,
		Message: msgInvalidParameters,
		Details: map[string]interface{}{
			"field":  field,
			"reason": field + " must be a number",
		},
	}
}
