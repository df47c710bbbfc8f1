// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package middleware

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/animerec/internal/logging"
)

// RequestMetrics is one observed request.
type RequestMetrics struct {
	Route      string    `json:"route"`
	Method     string    `json:"method"`
	DurationMS int64     `json:"duration_ms"`
	StatusCode int       `json:"status_code"`
	Timestamp  time.Time `json:"timestamp"`
}

// PerformanceMonitor keeps a sliding window of recent requests and
// reports per-route latency percentiles for the stats endpoint.
type PerformanceMonitor struct {
	mu          sync.RWMutex
	metrics     []RequestMetrics
	maxMetrics  int
	slowRequest time.Duration
}

// EndpointStats contains aggregated statistics for one route.
type EndpointStats struct {
	Route        string  `json:"route"`
	RequestCount int64   `json:"request_count"`
	ErrorCount   int64   `json:"error_count"`
	AvgDuration  float64 `json:"avg_duration_ms"`
	P50Duration  int64   `json:"p50_duration_ms"`
	P95Duration  int64   `json:"p95_duration_ms"`
	P99Duration  int64   `json:"p99_duration_ms"`
	MaxDuration  int64   `json:"max_duration_ms"`
}

// NewPerformanceMonitor creates a monitor holding at most maxMetrics
// requests. Requests slower than slowRequest are logged; zero disables it.
func NewPerformanceMonitor(maxMetrics int, slowRequest time.Duration) *PerformanceMonitor {
	if maxMetrics < 1 {
		maxMetrics = 1
	}
	return &PerformanceMonitor{
		metrics:     make([]RequestMetrics, 0, maxMetrics),
		maxMetrics:  maxMetrics,
		slowRequest: slowRequest,
	}
}

// RecordRequest adds a request to the window, evicting the oldest.
func (pm *PerformanceMonitor) RecordRequest(metric *RequestMetrics) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if len(pm.metrics) == pm.maxMetrics {
		copy(pm.metrics, pm.metrics[1:])
		pm.metrics = pm.metrics[:len(pm.metrics)-1]
	}
	pm.metrics = append(pm.metrics, *metric)
}

// Stats returns per-route statistics over the window, busiest first.
func (pm *PerformanceMonitor) Stats() []EndpointStats {
	pm.mu.RLock()
	byRoute := make(map[string][]RequestMetrics)
	for _, m := range pm.metrics {
		key := m.Method + " " + m.Route
		byRoute[key] = append(byRoute[key], m)
	}
	pm.mu.RUnlock()

	stats := make([]EndpointStats, 0, len(byRoute))
	for route, reqs := range byRoute {
		durations := make([]int64, len(reqs))
		var sum, errs int64
		for i, m := range reqs {
			durations[i] = m.DurationMS
			sum += m.DurationMS
			if m.StatusCode >= http.StatusInternalServerError {
				errs++
			}
		}
		sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

		stats = append(stats, EndpointStats{
			Route:        route,
			RequestCount: int64(len(durations)),
			ErrorCount:   errs,
			AvgDuration:  float64(sum) / float64(len(durations)),
			P50Duration:  percentile(durations, 0.50),
			P95Duration:  percentile(durations, 0.95),
			P99Duration:  percentile(durations, 0.99),
			MaxDuration:  durations[len(durations)-1],
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].RequestCount != stats[j].RequestCount {
			return stats[i].RequestCount > stats[j].RequestCount
		}
		return stats[i].Route < stats[j].Route
	})
	return stats
}

// Recent returns up to n of the most recent requests, oldest first.
func (pm *PerformanceMonitor) Recent(n int) []RequestMetrics {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	if n > len(pm.metrics) {
		n = len(pm.metrics)
	}
	if n <= 0 {
		return nil
	}
	recent := make([]RequestMetrics, n)
	copy(recent, pm.metrics[len(pm.metrics)-n:])
	return recent
}

// Middleware records every request passing through it.
func (pm *PerformanceMonitor) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		elapsed := time.Since(start)
		route := routePattern(r)
		pm.RecordRequest(&RequestMetrics{
			Route:      route,
			Method:     r.Method,
			DurationMS: elapsed.Milliseconds(),
			StatusCode: wrapper.statusCode,
			Timestamp:  start,
		})

		if pm.slowRequest > 0 && elapsed > pm.slowRequest {
			logging.CtxWarn(r.Context()).
				Str("method", r.Method).
				Str("route", route).
				Dur("duration", elapsed).
				Msg("Slow request detected")
		}
	})
}

// percentile calculates the percentile value from a sorted slice
func percentile(sorted []int64, p float64) int64 {
	if len(sorted) == 0 {
		return 0
	}
	index := int(float64(len(sorted)-1) * p)
	return sorted[index]
}
