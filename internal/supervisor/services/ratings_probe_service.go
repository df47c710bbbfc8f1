// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package services

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/animerec/internal/metrics"
)

// DefaultProbeInterval is used when the configured interval is not positive.
const DefaultProbeInterval = 30 * time.Second

// RatingsPinger is the part of the ratings store the probe needs.
type RatingsPinger interface {
	Ping(ctx context.Context) error
	State() string
}

// RatingsProbeService pings the ratings store on an interval. Pings go
// through the circuit breaker, so an open breaker is observed here even
// when no requests arrive, and a half-open breaker gets its trial call.
type RatingsProbeService struct {
	store    RatingsPinger
	interval time.Duration
	timeout  time.Duration
	logger   zerolog.Logger
	name     string

	healthy atomic.Bool
	probes  atomic.Int64
}

// NewRatingsProbeService creates the probe. Each ping is bounded by half
// the interval.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRatingsProbeService(store RatingsPinger, interval time.Duration, logger zerolog.Logger) *RatingsProbeService {
	if interval <= 0 {
		interval = DefaultProbeInterval
	}
	s := &RatingsProbeService{
		store:    store,
		interval: interval,
		timeout:  interval / 2,
		logger:   logger.With().Str("service", "ratings-probe").Logger(),
		name:     "ratings-probe",
	}
	s.healthy.Store(true)
	return s
}

// Serve implements suture.Service.
func (s *RatingsProbeService) Serve(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.interval).Msg("Ratings probe starting")

	s.probe(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Ratings probe shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.probe(ctx)
		}
	}
}

func (s *RatingsProbeService) probe(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	err := s.store.Ping(pingCtx)
	s.probes.Add(1)

	if ctx.Err() != nil {
		return
	}

	ok := err == nil
	metrics.SetRatingsStoreUp(ok)
	was := s.healthy.Swap(ok)
	switch {
	case was && !ok:
		s.logger.Warn().Err(err).Str("breaker", s.store.State()).Msg("Ratings store unreachable, content scores will degrade")
	case !was && ok:
		s.logger.Info().Str("breaker", s.store.State()).Dur("latency", time.Since(start)).Msg("Ratings store recovered")
	case !ok:
		s.logger.Debug().Err(err).Str("breaker", s.store.State()).Msg("Ratings store still unreachable")
	}
}

// Healthy reports the result of the most recent probe. It is true before
// the first probe completes.
func (s *RatingsProbeService) Healthy() bool {
	return s.healthy.Load()
}

// Probes returns how many pings have been issued.
func (s *RatingsProbeService) Probes() int64 {
	return s.probes.Load()
}

// String implements fmt.Stringer for suture's logs.
func (s *RatingsProbeService) String() string {
	return s.name
}
