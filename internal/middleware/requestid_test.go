// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/tomtom215/animerec/internal/logging"
)

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"generates new id", "", false},
		{"preserves upstream id", "upstream-123", true},
		{"replaces oversized id", strings.Repeat("a", maxRequestIDLen+1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured string
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				captured = logging.RequestIDFromContext(r.Context())
				w.WriteHeader(http.StatusNoContent)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			responseID := rec.Header().Get(RequestIDHeader)
			if responseID != captured {
				t.Errorf("context ID %q != response ID %q", captured, responseID)
			}
			if tt.keep {
				if responseID != tt.incoming {
					t.Errorf("response ID = %q, want %q", responseID, tt.incoming)
				}
				return
			}
			if _, err := uuid.Parse(responseID); err != nil {
				t.Errorf("generated ID %q is not a UUID: %v", responseID, err)
			}
		})
	}
}

func TestRequestID_Unique(t *testing.T) {
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		id := rec.Header().Get(RequestIDHeader)
		if seen[id] {
			t.Fatalf("duplicate request ID %q", id)
		}
		seen[id] = true
	}
}
