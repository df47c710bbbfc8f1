// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/animerec/internal/metrics"
)

func TestPrometheusMetrics_RoutePatternLabel(t *testing.T) {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Get("/api/v1/recommendations/{userID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	counter := metrics.APIRequestsTotal.WithLabelValues("GET", "/api/v1/recommendations/{userID}", "418")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"1", "2", "3"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/"+id, nil))
	}

	if delta := testutil.ToFloat64(counter) - before; delta != 3 {
		t.Errorf("api_requests_total delta = %v, want 3 under one route label", delta)
	}
}

func TestPrometheusMetrics_Unmatched(t *testing.T) {
	counter := metrics.APIRequestsTotal.WithLabelValues("GET", unmatchedRoute, "200")
	before := testutil.ToFloat64(counter)

	handler := PrometheusMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/no/router", nil))

	if delta := testutil.ToFloat64(counter) - before; delta != 1 {
		t.Errorf("unmatched delta = %v, want 1", delta)
	}
}

func TestPrometheusMetrics_ActiveRequests(t *testing.T) {
	var during float64
	before := testutil.ToFloat64(metrics.APIActiveRequests)

	handler := PrometheusMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		during = testutil.ToFloat64(metrics.APIActiveRequests)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if during != before+1 {
		t.Errorf("in-flight gauge during request = %v, want %v", during, before+1)
	}
	if after := testutil.ToFloat64(metrics.APIActiveRequests); after != before {
		t.Errorf("in-flight gauge after request = %v, want %v", after, before)
	}
}

func TestStatusRecorder_FirstCodeWins(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := &statusRecorder{ResponseWriter: rec, statusCode: http.StatusOK}
	sr.WriteHeader(http.StatusServiceUnavailable)
	sr.WriteHeader(http.StatusOK)

	if sr.statusCode != http.StatusServiceUnavailable {
		t.Errorf("statusCode = %d, want 503", sr.statusCode)
	}
	if sr.Unwrap() != rec {
		t.Error("Unwrap() should return the wrapped writer")
	}
}
