// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package services

import (
	"context"
	"time"

	"github.com/tomtom215/animerec/internal/metrics"
)

// UptimeService keeps the uptime gauge current.
type UptimeService struct {
	start    time.Time
	interval time.Duration
}

// NewUptimeService creates the service. A non-positive interval means 15s.
func NewUptimeService(start time.Time, interval time.Duration) *UptimeService {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &UptimeService{start: start, interval: interval}
}

// Serve implements suture.Service.
func (s *UptimeService) Serve(ctx context.Context) error {
	metrics.TrackUptime(ctx, s.start, s.interval)
	return ctx.Err()
}

func (s *UptimeService) String() string {
	return "uptime"
}
