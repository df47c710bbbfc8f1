// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/animerec/internal/logging"
	"github.com/tomtom215/animerec/internal/metrics"
	"github.com/tomtom215/animerec/internal/recommend"
)

// pathUnknown labels failed requests, whose candidate path is not known.
const pathUnknown = "unknown"

// GetRecommendations handles GET /api/v1/recommendations/{userID}.
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil || userID < 0 {
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidUserID, "Invalid user ID", nil)
		return
	}

	params, apiErr := parseRecommendationsRequest(r, h.defaultLimit)
	if apiErr != nil {
		respondErrorWithDetails(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details, nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	ctx = logging.ContextWithUserID(ctx, userID)

	resp, err := h.engine.Recommend(ctx, recommend.Request{
		UserID:    userID,
		Limit:     params.Limit,
		Weights:   params.Weights(h.engine.Config().Weights),
		RequestID: logging.RequestIDFromContext(r.Context()),
	})
	if err != nil {
		metrics.RecordRecommendationError(pathUnknown)
		status, code, message := classifyEngineError(err)
		respondError(w, r, status, code, message, err)
		return
	}

	metrics.RecordRecommendation(resp.Metadata.Path.String(), resp.Metadata.PoolSize, resp.Metadata.Degraded, time.Since(start))
	logging.CtxDebug(ctx).
		Str("path", resp.Metadata.Path.String()).
		Int("pool_size", resp.Metadata.PoolSize).
		Int("results", resp.NumResults).
		Bool("degraded", resp.Metadata.Degraded).
		Msg("Recommendations served")

	respondSuccess(w, r, resp, time.Since(start))
}

// classifyEngineError maps an engine failure to a fixed status, code and
// message. Deadlines win over the error kind.
func classifyEngineError(err error) (status int, code, message string) {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, ErrCodeTimeout, "Request timed out"
	}
	switch recommend.KindOf(err) {
	case recommend.KindMissingArtifact:
		return http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Model artifacts unavailable"
	case recommend.KindRatingsStoreUnavailable:
		return http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Ratings store unavailable"
	default:
		// Corrupt artifacts and internal failures alike.
		return http.StatusInternalServerError, ErrCodeRecommendation, "Failed to generate recommendations"
	}
}
