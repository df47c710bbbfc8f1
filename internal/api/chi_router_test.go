// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRouter_NotFoundAndMethod(t *testing.T) {
	srv := newTestServer(&fakeEngine{}, fakeRatings{})

	tests := []struct {
		name   string
		method string
		target string
		status int
		code   string
	}{
		{"unknown route", http.MethodGet, "/api/v1/nope", http.StatusNotFound, ErrCodeNotFound},
		{"wrong method", http.MethodPost, "/api/v1/recommendations/1", http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, srv, tt.method, tt.target)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if env := decode(t, rec); env.Error == nil || env.Error.Code != tt.code {
				t.Errorf("envelope = %+v", env)
			}
		})
	}
}

func TestRouter_SecurityHeaders(t *testing.T) {
	rec := serve(t, newTestServer(&fakeEngine{}, fakeRatings{}), http.MethodGet, "/api/v1/health/live")

	want := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Cache-Control":          "no-store",
		"Content-Type":           "application/json",
	}
	for k, v := range want {
		if got := rec.Header().Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must only be sent over HTTPS")
	}
}

func TestRouter_Metrics(t *testing.T) {
	srv := newTestServer(&fakeEngine{}, fakeRatings{})
	serve(t, srv, http.MethodGet, "/api/v1/recommendations/3")

	rec := serve(t, srv, http.MethodGet, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "api_requests_total") {
		t.Error("api_requests_total not exported")
	}
}

func TestRouter_Compression(t *testing.T) {
	srv := newTestServer(&fakeEngine{}, fakeRatings{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/3", http.NoBody)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Errorf("Content-Encoding = %q, want gzip", rec.Header().Get("Content-Encoding"))
	}
}

func TestRouter_RateLimit(t *testing.T) {
	mw := NewChiMiddlewareFromSecurity(nil, 2, time.Minute, false)
	srv := NewRouter(newTestHandler(&fakeEngine{}, fakeRatings{}), mw, false).SetupChi()

	for i := 0; i < 2; i++ {
		if rec := serve(t, srv, http.MethodGet, "/api/v1/recommendations/1"); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}
	rec := serve(t, srv, http.MethodGet, "/api/v1/recommendations/1")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if env := decode(t, rec); env.Error == nil || env.Error.Code != ErrCodeRateLimited {
		t.Errorf("envelope = %+v", env)
	}

	// Health probes have their own budget.
	if rec := serve(t, srv, http.MethodGet, "/api/v1/health/live"); rec.Code != http.StatusOK {
		t.Errorf("health status = %d", rec.Code)
	}
}

func TestRouter_RateLimitDisabled(t *testing.T) {
	mw := NewChiMiddlewareFromSecurity(nil, 1, time.Minute, true)
	srv := NewRouter(newTestHandler(&fakeEngine{}, fakeRatings{}), mw, false).SetupChi()

	for i := 0; i < 5; i++ {
		if rec := serve(t, srv, http.MethodGet, "/api/v1/recommendations/1"); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}
}
