// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewChiMiddleware_DefaultConfig(t *testing.T) {
	m := NewChiMiddleware(nil)

	if m.config == nil {
		t.Fatal("config is nil")
	}
	// Secure by default: origins must be configured explicitly.
	if len(m.config.AllowedOrigins) != 0 {
		t.Errorf("AllowedOrigins = %v, want []", m.config.AllowedOrigins)
	}
	if m.config.Requests != 100 || m.config.Window != time.Minute {
		t.Errorf("rate limit = %d/%v, want 100/1m", m.config.Requests, m.config.Window)
	}
}

func TestNewChiMiddlewareFromSecurity(t *testing.T) {
	m := NewChiMiddlewareFromSecurity([]string{"https://a.example", "https://b.example"}, 200, 2*time.Minute, false)

	if len(m.config.AllowedOrigins) != 2 {
		t.Errorf("AllowedOrigins = %v", m.config.AllowedOrigins)
	}
	if m.config.Requests != 200 || m.config.Window != 2*time.Minute {
		t.Errorf("rate limit = %d/%v", m.config.Requests, m.config.Window)
	}
}

func TestCORS(t *testing.T) {
	m := NewChiMiddlewareFromSecurity([]string{"https://example.com"}, 100, time.Minute, false)
	handler := m.CORS()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		origin string
		want   string
	}{
		{"allowed origin", "https://example.com", "https://example.com"},
		{"foreign origin", "https://evil.example", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/api/v1/recommendations/1", http.NoBody)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodGet)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAPISecurityHeaders_HSTS(t *testing.T) {
	handler := APISecurityHeaders()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set("X-Forwarded-Proto", "https")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get("Strict-Transport-Security") == "" {
		t.Error("expected HSTS behind a TLS proxy")
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}

	plain := httptest.NewRecorder()
	handler.ServeHTTP(plain, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	if plain.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must not be sent over plain HTTP")
	}
}
