// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package api

import (
	"context"
	"time"

	"github.com/tomtom215/animerec/internal/middleware"
	"github.com/tomtom215/animerec/internal/models"
	"github.com/tomtom215/animerec/internal/recommend"
)

// Recommender is the engine surface the handlers use.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
	Stats() recommend.Stats
	Config() *recommend.Config
}

// RatingsHealth reports ratings store reachability.
type RatingsHealth interface {
	Ping(ctx context.Context) error

	// State is the circuit breaker state name.
	State() string
}

// Options are the handler dependencies.
type Options struct {
	Engine  Recommender
	Ratings RatingsHealth

	// Driver names the ratings store driver for the readiness payload.
	Driver string

	Bundle models.BundleInfo

	// RequestTimeout bounds a recommendation call. Zero uses the engine's
	// configured timeout.
	RequestTimeout time.Duration

	// PingTimeout bounds the readiness ping. Zero means 2s.
	PingTimeout time.Duration

	// Monitor backs the stats endpoint. Nil creates a private one.
	Monitor *middleware.PerformanceMonitor

	// StartTime is the process start for uptime reporting.
	StartTime time.Time
}

// Handler serves every endpoint.
type Handler struct {
	engine       Recommender
	ratings      RatingsHealth
	driver       string
	bundle       models.BundleInfo
	timeout      time.Duration
	pingTimeout  time.Duration
	defaultLimit int
	monitor      *middleware.PerformanceMonitor
	startTime    time.Time
}

// NewHandler creates a handler.
//
//nolint:gocritic // hugeParam: options copied once at startup
func NewHandler(opts Options) *Handler {
	cfg := opts.Engine.Config()

	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = cfg.Limits.RequestTimeout
	}
	pingTimeout := opts.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 2 * time.Second
	}
	monitor := opts.Monitor
	if monitor == nil {
		monitor = middleware.NewPerformanceMonitor(1000, time.Second)
	}
	start := opts.StartTime
	if start.IsZero() {
		start = time.Now()
	}

	return &Handler{
		engine:       opts.Engine,
		ratings:      opts.Ratings,
		driver:       opts.Driver,
		bundle:       opts.Bundle,
		timeout:      timeout,
		pingTimeout:  pingTimeout,
		defaultLimit: cfg.Limits.DefaultLimit,
		monitor:      monitor,
		startTime:    start,
	}
}

// Monitor returns the performance monitor recording requests.
func (h *Handler) Monitor() *middleware.PerformanceMonitor {
	return h.monitor
}
