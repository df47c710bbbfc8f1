// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package models

import "time"

// Liveness is the payload of the liveness probe.
type Liveness struct {
	Alive  bool    `json:"alive"`
	Uptime float64 `json:"uptime_seconds"`
}

// BundleInfo describes the loaded model bundle.
type BundleInfo struct {
	Name      string    `json:"name"`
	Version   int       `json:"version"`
	TrainedAt time.Time `json:"trained_at"`
	Items     int       `json:"items"`
	Users     int       `json:"users"`
	Features  int       `json:"features"`
	Checksum  string    `json:"checksum"`
}

// RatingsStoreStatus reports ratings store reachability.
type RatingsStoreStatus struct {
	Driver    string `json:"driver"`
	Connected bool   `json:"connected"`

	// Breaker is the circuit breaker state: closed, half-open or open.
	Breaker string `json:"breaker"`

	LatencyMS int64 `json:"latency_ms"`
}

// Readiness is the payload of the readiness probe.
//
// Status is "ready" when the ratings store answers and "degraded" when it
// does not. A degraded service still serves recommendations with a zero
// content signal, so the probe answers 503 only when Ready is false.
type Readiness struct {
	Status  string             `json:"status"`
	Ready   bool               `json:"ready"`
	Bundle  BundleInfo         `json:"bundle"`
	Ratings RatingsStoreStatus `json:"ratings_store"`
	Uptime  float64            `json:"uptime_seconds"`
}

// EngineStats mirrors the engine counters.
type EngineStats struct {
	Requests int64 `json:"requests"`
	Degraded int64 `json:"degraded"`
	Errors   int64 `json:"errors"`
}

// EndpointLatency is per-route latency over the recent request window.
type EndpointLatency struct {
	Route        string  `json:"route"`
	RequestCount int64   `json:"request_count"`
	ErrorCount   int64   `json:"error_count"`
	AvgMS        float64 `json:"avg_ms"`
	P95MS        int64   `json:"p95_ms"`
	MaxMS        int64   `json:"max_ms"`
}

// Stats is the payload of the stats endpoint.
type Stats struct {
	Bundle    BundleInfo        `json:"bundle"`
	Engine    EngineStats       `json:"engine"`
	Endpoints []EndpointLatency `json:"endpoints"`
	Uptime    float64           `json:"uptime_seconds"`
}
