// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/animerec/internal/recommend"
)

func TestGetRecommendations(t *testing.T) {
	engine := &fakeEngine{}
	srv := newTestServer(engine, fakeRatings{})

	rec := serve(t, srv, http.MethodGet, "/api/v1/recommendations/42?limit=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}

	env := decode(t, rec)
	if env.Status != "success" || env.Error != nil {
		t.Fatalf("envelope = %+v", env)
	}

	var body struct {
		UserID          int `json:"user_id"`
		NumResults      int `json:"num_results"`
		Recommendations []struct {
			ItemID     int                `json:"item_id"`
			Title      string             `json:"title"`
			FinalScore float64            `json:"final_score"`
			Metrics    map[string]float64 `json:"metrics"`
		} `json:"recommendations"`
	}
	if err := json.Unmarshal(env.Data, &body); err != nil {
		t.Fatal(err)
	}
	if body.UserID != 42 || body.NumResults != 1 || len(body.Recommendations) != 1 {
		t.Fatalf("body = %+v", body)
	}
	got := body.Recommendations[0]
	if got.ItemID != 5 || got.Title != "Cowboy Bebop" || got.Metrics["content"] != 1 || got.Metrics["exposure"] != 0.1 {
		t.Errorf("recommendation = %+v", got)
	}
	if len(got.Metrics) != 4 {
		t.Errorf("metrics keys = %v, want 4", got.Metrics)
	}

	last := engine.lastRequest()
	if last.Limit != 1 || last.Weights != nil || last.RequestID == "" {
		t.Errorf("engine request = %+v", last)
	}
	if last.RequestID != rec.Header().Get("X-Request-ID") {
		t.Errorf("request id %q not propagated (header %q)", last.RequestID, rec.Header().Get("X-Request-ID"))
	}
}

func TestGetRecommendations_DefaultLimit(t *testing.T) {
	engine := &fakeEngine{}
	rec := serve(t, newTestServer(engine, fakeRatings{}), http.MethodGet, "/api/v1/recommendations/0")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := engine.lastRequest().Limit; got != recommend.DefaultLimit {
		t.Errorf("limit = %d, want %d", got, recommend.DefaultLimit)
	}
}

func TestGetRecommendations_WeightOverrides(t *testing.T) {
	engine := &fakeEngine{}
	rec := serve(t, newTestServer(engine, fakeRatings{}), http.MethodGet, "/api/v1/recommendations/1?alpha=0&gamma=0.5")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	w := engine.lastRequest().Weights
	if w == nil {
		t.Fatal("expected weight overrides")
	}
	def := recommend.DefaultWeights()
	if w.Content != 0 || w.Quality != 0.5 || w.Collaborative != def.Collaborative {
		t.Errorf("weights = %+v", *w)
	}
}

func TestGetRecommendations_BadRequests(t *testing.T) {
	tests := []struct {
		name   string
		target string
		code   string
	}{
		{"non numeric user", "/api/v1/recommendations/abc", ErrCodeInvalidUserID},
		{"negative user", "/api/v1/recommendations/-1", ErrCodeInvalidUserID},
		{"limit zero", "/api/v1/recommendations/1?limit=0", ErrCodeValidation},
		{"limit too large", "/api/v1/recommendations/1?limit=51", ErrCodeValidation},
		{"limit not a number", "/api/v1/recommendations/1?limit=ten", ErrCodeValidation},
		{"alpha above one", "/api/v1/recommendations/1?alpha=1.5", ErrCodeValidation},
		{"beta negative", "/api/v1/recommendations/1?beta=-0.1", ErrCodeValidation},
		{"gamma NaN", "/api/v1/recommendations/1?gamma=NaN", ErrCodeValidation},
		{"alpha infinite", "/api/v1/recommendations/1?alpha=Inf", ErrCodeValidation},
		{"beta negative infinite", "/api/v1/recommendations/1?beta=-Inf", ErrCodeValidation},
		{"alpha garbage", "/api/v1/recommendations/1?alpha=high", ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &fakeEngine{}
			rec := serve(t, newTestServer(engine, fakeRatings{}), http.MethodGet, tt.target)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			env := decode(t, rec)
			if env.Status != "error" || env.Error == nil || env.Error.Code != tt.code {
				t.Errorf("envelope = %+v", env)
			}
			if engine.lastRequest().UserID != 0 || engine.lastRequest().Limit != 0 {
				t.Error("engine must not be called for invalid requests")
			}
		})
	}
}

func TestGetRecommendations_EngineErrors(t *testing.T) {
	tests := []struct {
		name   string
		engine *fakeEngine
		status int
		code   string
	}{
		{"failure", &fakeEngine{err: errBoom}, http.StatusInternalServerError, ErrCodeRecommendation},
		{"timeout", &fakeEngine{block: true}, http.StatusGatewayTimeout, ErrCodeTimeout},
		{"corrupt artifact", &fakeEngine{err: recommend.NewError(recommend.KindCorruptArtifact, "score", errBoom)}, http.StatusInternalServerError, ErrCodeRecommendation},
		{"missing artifact", &fakeEngine{err: recommend.NewError(recommend.KindMissingArtifact, "candidates", errBoom)}, http.StatusServiceUnavailable, ErrCodeServiceUnavailable},
		{"ratings store down", &fakeEngine{err: recommend.NewError(recommend.KindRatingsStoreUnavailable, "liked items", errBoom)}, http.StatusServiceUnavailable, ErrCodeServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, newTestServer(tt.engine, fakeRatings{}), http.MethodGet, "/api/v1/recommendations/9")
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			env := decode(t, rec)
			if env.Error == nil || env.Error.Code != tt.code {
				t.Fatalf("envelope = %+v", env)
			}
			if strings.Contains(rec.Body.String(), "user_ratings") || strings.Contains(rec.Body.String(), "deadline") {
				t.Errorf("error text leaked: %s", rec.Body.String())
			}
		})
	}
}
