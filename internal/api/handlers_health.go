// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/animerec/internal/models"
)

// Readiness status values.
const (
	statusReady    = "ready"
	statusDegraded = "degraded"
)

// HealthLive handles liveness probe requests (Kubernetes-style).
// Returns 200 OK if the process is alive, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, models.Liveness{
		Alive:  true,
		Uptime: time.Since(h.startTime).Seconds(),
	}, 0)
}

// HealthReady handles readiness probe requests (Kubernetes-style).
//
// The bundle is loaded before the server starts, so the service can always
// answer. An unreachable ratings store only degrades the content signal;
// the probe then reports "degraded" with 200. It answers 503 only when no
// ratings store is wired at all.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.ratings == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Service not ready", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.pingTimeout)
	defer cancel()

	pingStart := time.Now()
	pingErr := h.ratings.Ping(ctx)
	latency := time.Since(pingStart)

	status := statusReady
	if pingErr != nil {
		status = statusDegraded
	}

	respondSuccess(w, r, models.Readiness{
		Status: status,
		Ready:  true,
		Bundle: h.bundle,
		Ratings: models.RatingsStoreStatus{
			Driver:    h.driver,
			Connected: pingErr == nil,
			Breaker:   h.ratings.State(),
			LatencyMS: latency.Milliseconds(),
		},
		Uptime: time.Since(h.startTime).Seconds(),
	}, time.Since(start))
}

// GetStats handles GET /api/v1/stats.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	endpoints := h.monitor.Stats()
	latency := make([]models.EndpointLatency, len(endpoints))
	for i, e := range endpoints {
		latency[i] = models.EndpointLatency{
			Route:        e.Route,
			RequestCount: e.RequestCount,
			ErrorCount:   e.ErrorCount,
			AvgMS:        e.AvgDuration,
			P95MS:        e.P95Duration,
			MaxMS:        e.MaxDuration,
		}
	}

	engine := h.engine.Stats()
	respondSuccess(w, r, models.Stats{
		Bundle: h.bundle,
		Engine: models.EngineStats{
			Requests: engine.Requests,
			Degraded: engine.Degraded,
			Errors:   engine.Errors,
		},
		Endpoints: latency,
		Uptime:    time.Since(h.startTime).Seconds(),
	}, 0)
}
