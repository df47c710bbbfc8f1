// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/animerec/internal/middleware"
)

// Router wires the handler into a Chi router.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware

	// trustProxyHeaders enables chi's RealIP. Without a trusted proxy in
	// front, X-Forwarded-For is client controlled and would let clients
	// pick their own rate limit bucket.
	trustProxyHeaders bool
}

// NewRouter creates a router.
func NewRouter(handler *Handler, mw *ChiMiddleware, trustProxyHeaders bool) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{
		handler:           handler,
		chiMiddleware:     mw,
		trustProxyHeaders: trustProxyHeaders,
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)
	if router.trustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight
	r.Use(middleware.PrometheusMetrics)
	r.Use(router.handler.monitor.Middleware)
	r.Use(APISecurityHeaders())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed", nil)
	})

	// ========================
	// Health Endpoints
	// ========================
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// ========================
	// API Endpoints
	// ========================
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(middleware.Compression)
		r.Get("/recommendations/{userID}", router.handler.GetRecommendations)
		r.Get("/stats", router.handler.GetStats)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
