// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package models

import (
	"time"
)

// Response status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// APIResponse is the envelope for every JSON endpoint.
//
// Fields:
//   - Status: "success" or "error"
//   - Data: payload, null on error
//   - Metadata: timing information
//   - Error: populated only when Status is "error"
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response timing.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
}

// APIError is a structured error.
//
// Codes used by the service:
//   - INVALID_USER_ID: path user ID is not a non-negative integer
//   - VALIDATION_ERROR: a query parameter is out of range
//   - TIMEOUT: the request exceeded its deadline
//   - RECOMMENDATION_ERROR: the engine failed
//   - SERVICE_UNAVAILABLE: readiness check failed
//   - NOT_FOUND, METHOD_NOT_ALLOWED, RATE_LIMIT_EXCEEDED
//
// Message is always a constant string; causes are logged, not returned.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
