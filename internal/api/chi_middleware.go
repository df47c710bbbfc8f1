// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tomtom215/animerec/internal/metrics"
)

// The API is read-only, so CORS only ever needs to admit GET.
var (
	corsMethods        = []string{http.MethodGet, http.MethodOptions}
	corsRequestHeaders = []string{"Content-Type", "X-Request-ID"}
	corsExposedHeaders = []string{"X-Request-ID"}
)

const (
	corsMaxAge = 24 * time.Hour

	// Monitoring polls the health endpoints far more often than clients
	// call the API.
	healthRequests = 1000
	healthWindow   = time.Minute
)

// ChiMiddlewareConfig configures the CORS and rate limit middleware.
type ChiMiddlewareConfig struct {
	// AllowedOrigins is empty by default; cross-origin callers must be
	// listed explicitly.
	AllowedOrigins []string

	// Requests per client IP per Window on the API routes.
	Requests int
	Window   time.Duration
	Disabled bool

	// KeyFunc overrides the client key; nil keys by IP.
	KeyFunc httprate.KeyFunc
}

// DefaultChiMiddlewareConfig allows 100 requests per minute and no
// cross-origin callers.
func DefaultChiMiddlewareConfig() *ChiMiddlewareConfig {
	return &ChiMiddlewareConfig{
		AllowedOrigins: []string{},
		Requests:       100,
		Window:         time.Minute,
	}
}

// ChiMiddleware builds the Chi middleware the router installs.
type ChiMiddleware struct {
	config *ChiMiddlewareConfig
	cors   func(http.Handler) http.Handler
}

// NewChiMiddleware builds the middleware set. A nil config uses
// DefaultChiMiddlewareConfig.
func NewChiMiddleware(config *ChiMiddlewareConfig) *ChiMiddleware {
	if config == nil {
		config = DefaultChiMiddlewareConfig()
	}
	return &ChiMiddleware{
		config: config,
		cors: cors.Handler(cors.Options{
			AllowedOrigins: config.AllowedOrigins,
			AllowedMethods: corsMethods,
			AllowedHeaders: corsRequestHeaders,
			ExposedHeaders: corsExposedHeaders,
			MaxAge:         int(corsMaxAge.Seconds()),
		}),
	}
}

// NewChiMiddlewareFromSecurity maps the security section of the server
// configuration onto a middleware set.
func NewChiMiddlewareFromSecurity(corsOrigins []string, requests int, window time.Duration, disabled bool) *ChiMiddleware {
	return NewChiMiddleware(&ChiMiddlewareConfig{
		AllowedOrigins: corsOrigins,
		Requests:       requests,
		Window:         window,
		Disabled:       disabled,
	})
}

// CORS returns the go-chi/cors middleware.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimit limits the API routes to the configured rate.
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	return m.limiter(m.config.Requests, m.config.Window)
}

// RateLimitHealth limits the health routes.
func (m *ChiMiddleware) RateLimitHealth() func(http.Handler) http.Handler {
	return m.limiter(healthRequests, healthWindow)
}

func (m *ChiMiddleware) limiter(requests int, window time.Duration) func(http.Handler) http.Handler {
	if m.config.Disabled {
		return func(next http.Handler) http.Handler { return next }
	}
	key := m.config.KeyFunc
	if key == nil {
		key = httprate.KeyByIP
	}
	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(key),
		httprate.WithLimitHandler(rateLimitExceeded),
	)
}

// rateLimitExceeded answers a rejected request with the error envelope.
func rateLimitExceeded(w http.ResponseWriter, r *http.Request) {
	metrics.RecordRateLimitHit(r.URL.Path)
	respondError(w, r, http.StatusTooManyRequests, ErrCodeRateLimited, "Rate limit exceeded", nil)
}

// APISecurityHeaders sets the response hardening headers. HSTS is only
// sent when the request arrived over TLS, directly or via a proxy.
func APISecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}
