// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

/*
Package middleware provides chi-compatible HTTP middleware for the API.

Key Components:

  - RequestID: X-Request-ID propagation into the logging context
  - PrometheusMetrics: request count, latency and in-flight gauge, labelled
    by chi route pattern
  - Compression: gzip for clients that accept it
  - PerformanceMonitor: sliding window of recent requests with per-route
    percentiles, served by the stats endpoint

Every middleware has the func(http.Handler) http.Handler shape:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(perf.Middleware)
	r.Use(middleware.Compression)

Route patterns are read after the handler runs, so the middleware must
be mounted on the chi router itself, not wrapped around it.
*/
package middleware
