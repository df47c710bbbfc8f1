// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package middleware

import (
	"net/http"

	"github.com/tomtom215/animerec/internal/logging"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLen bounds IDs accepted from upstream proxies.
const maxRequestIDLen = 128

// RequestID assigns each request an ID, echoes it in the response header
// and stores it in the logging context. An ID supplied by an upstream
// proxy is kept when it is short enough.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLen {
			requestID = logging.GenerateRequestID()
		}

		w.Header().Set(RequestIDHeader, requestID)
		ctx := logging.ContextWithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
