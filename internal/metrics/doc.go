// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

/*
Package metrics provides Prometheus metrics for the recommendation service.

Collectors are registered with the default registry through promauto and
exposed at /metrics by the API router.

# Available Metrics

API Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
  - api_active_requests: In-flight requests (gauge)
  - api_rate_limit_hits_total: Rate limit rejections (counter)

Recommendation Metrics:
  - recommendations_total: Requests by path and outcome (counter)
    Labels: path (model, cold_start), outcome (ok, degraded, error)
  - recommendation_duration_seconds: Engine latency (histogram)
  - recommendation_candidate_pool_size: Candidates scored per request (histogram)

Ratings Store Metrics:
  - ratings_query_duration_seconds: Query latency (histogram)
    Labels: driver, operation
  - ratings_query_errors_total: Query errors (counter)
    Labels: driver, operation, error_type (timeout, canceled, other)
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open (gauge)
  - circuit_breaker_requests_total: Labels name, result (success, failure, rejected)
  - circuit_breaker_consecutive_failures (gauge)
  - circuit_breaker_state_transitions_total: Labels name, from_state, to_state

Model Metrics:
  - model_bundle_info: Labels name, version (gauge, always 1)
  - model_bundle_items, model_bundle_users (gauge)
  - model_bundle_trained_timestamp_seconds (gauge)
  - training_stage_duration_seconds: Labels stage (histogram)

System Metrics:
  - app_info: Labels version, go_version
  - app_uptime_seconds

# Usage

	start := time.Now()
	resp, err := engine.Recommend(ctx, req)
	if err != nil {
	    metrics.RecordRecommendationError("model")
	    return
	}
	metrics.RecordRecommendation(resp.Metadata.Path.String(), resp.Metadata.PoolSize, resp.Metadata.Degraded, time.Since(start))
*/
package metrics
