// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package metrics

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - API endpoint latency and throughput
// - Recommendation pipeline (path, degraded mode, pool size)
// - Ratings store queries and its circuit breaker
// - Model bundle loading and training runs

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Recommendation Metrics
	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "Time to produce one recommendation list",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"path"}, // "model", "cold_start"
	)

	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_total",
			Help: "Total number of recommendation requests by outcome",
		},
		[]string{"path", "outcome"}, // outcome: "ok", "degraded", "error"
	)

	RecommendationPoolSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_candidate_pool_size",
			Help:    "Number of candidates scored per request",
			Buckets: []float64{0, 5, 10, 20, 30, 40, 50, 100},
		},
	)

	// Ratings Store Metrics
	RatingsQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ratings_query_duration_seconds",
			Help:    "Duration of ratings store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"driver", "operation"},
	)

	RatingsQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratings_query_errors_total",
			Help: "Total number of ratings store query errors",
		},
		[]string{"driver", "operation", "error_type"}, // error_type: "timeout", "canceled", "other"
	)

	RatingsStoreUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ratings_store_up",
			Help: "Whether the last ratings store probe succeeded (1) or failed (0)",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Model Bundle Metrics
	BundleInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "model_bundle_info",
			Help: "Loaded model bundle (value is always 1)",
		},
		[]string{"name", "version"},
	)

	BundleItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_bundle_items",
			Help: "Number of catalog items in the loaded bundle",
		},
	)

	BundleUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_bundle_users",
			Help: "Number of users with collaborative factors in the loaded bundle",
		},
	)

	BundleTrainedAt = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_bundle_trained_timestamp_seconds",
			Help: "Unix time the loaded bundle was trained",
		},
	)

	// Training Metrics
	TrainingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "training_stage_duration_seconds",
			Help:    "Duration of offline training stages",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900},
		},
		[]string{"stage"}, // "load", "als", "tfidf", "save"
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit records a request rejected by the rate limiter.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordRecommendation records one served recommendation list.
func RecordRecommendation(path string, poolSize int, degraded bool, duration time.Duration) {
	outcome := "ok"
	if degraded {
		outcome = "degraded"
	}
	RecommendationsTotal.WithLabelValues(path, outcome).Inc()
	RecommendationDuration.WithLabelValues(path).Observe(duration.Seconds())
	RecommendationPoolSize.Observe(float64(poolSize))
}

// RecordRecommendationError records a failed recommendation request.
func RecordRecommendationError(path string) {
	RecommendationsTotal.WithLabelValues(path, "error").Inc()
}

// RecordRatingsQuery records a ratings store query metric
func RecordRatingsQuery(driver, operation string, duration time.Duration, err error) {
	RatingsQueryDuration.WithLabelValues(driver, operation).Observe(duration.Seconds())
	if err != nil {
		RatingsQueryErrors.WithLabelValues(driver, operation, classifyError(err)).Inc()
	}
}

// SetRatingsStoreUp records the outcome of the latest ratings store probe.
func SetRatingsStoreUp(up bool) {
	if up {
		RatingsStoreUp.Set(1)
		return
	}
	RatingsStoreUp.Set(0)
}

// classifyError keeps error label cardinality bounded.
func classifyError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "other"
	}
}

// RecordBundleLoaded publishes the identity and size of the serving bundle.
func RecordBundleLoaded(name string, version, items, users int, trainedAt time.Time) {
	BundleInfo.Reset()
	BundleInfo.WithLabelValues(name, strconv.Itoa(version)).Set(1)
	BundleItems.Set(float64(items))
	BundleUsers.Set(float64(users))
	if !trainedAt.IsZero() {
		BundleTrainedAt.Set(float64(trainedAt.Unix()))
	}
}

// RecordTrainingStage records the duration of one training stage.
func RecordTrainingStage(stage string, duration time.Duration) {
	TrainingDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// SetAppInfo publishes build information.
func SetAppInfo(version, goVersion string) {
	AppInfo.WithLabelValues(version, goVersion).Set(1)
}

// TrackUptime updates AppUptime every interval until ctx is done.
func TrackUptime(ctx context.Context, start time.Time, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		AppUptime.Set(time.Since(start).Seconds())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
