// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

/*
Package api serves recommendations over HTTP using the Chi router.

# Endpoints

	GET /api/v1/recommendations/{userID}  ranked recommendations
	GET /api/v1/stats                     engine counters and route latency
	GET /api/v1/health/live               liveness probe
	GET /api/v1/health/ready              readiness probe
	GET /metrics                          Prometheus exposition

# Recommendations

Query parameters:

  - limit: number of results, 1 to 50 (default 10)
  - alpha, beta, gamma: optional fusion weight overrides in [0, 1]; an
    omitted weight keeps its configured value

Unknown users are served from the cold-start path; the response shape is
the same. When the ratings store is unavailable the content signal falls
back to zeros and the request still succeeds.

# Error Codes

  - INVALID_USER_ID (400): the path user ID is not a non-negative integer
  - VALIDATION_ERROR (400): a query parameter is malformed or out of range
  - TIMEOUT (504): the request exceeded RECOMMEND_TIMEOUT
  - RECOMMENDATION_ERROR (500): the engine failed
  - RATE_LIMIT_EXCEEDED (429): too many requests from one client
  - SERVICE_UNAVAILABLE (503): readiness check failed

Messages are constant strings. Causes are logged with the request ID and
never echoed to clients.

# Middleware

Applied to every route in order: request ID with logging context, real
IP (only when trusted proxies are configured), panic recovery, CORS,
Prometheus metrics, the performance monitor and security headers. API
routes add IP-based rate limiting and gzip compression; health routes use
a more permissive limit.
*/
package api
