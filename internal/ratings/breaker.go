// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package ratings

import (
	"context"
	"errors"
	"fmt"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/animerec/internal/config"
	"github.com/tomtom215/animerec/internal/logging"
	"github.com/tomtom215/animerec/internal/metrics"
	"github.com/tomtom215/animerec/internal/recommend"
)

// BreakerStore wraps a Store with a circuit breaker.
//
// The breaker uses real time for its interval and timeout. Tests drive it
// with a fake Store rather than mocking the clock.
type BreakerStore struct {
	inner Store
	cb    *gobreaker.CircuitBreaker[interface{}]
	name  string
}

// NewBreakerStore wraps inner. The breaker opens once at least
// cfg.MinRequests calls were seen in the current interval and the failure
// ratio reaches cfg.FailureRatio.
func NewBreakerStore(inner Store, name string, cfg config.BreakerConfig) *BreakerStore {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0) // 0 = closed
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= cfg.FailureRatio

			if shouldTrip {
				logging.Warn().
					Str("breaker", name).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}

			return shouldTrip
		},

		// A caller that gave up is not a store failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()

			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &BreakerStore{
		inner: inner,
		cb:    cb,
		name:  name,
	}
}

// Name returns the breaker name used in metrics.
func (b *BreakerStore) Name() string {
	return b.name
}

// State returns the breaker state: closed, half-open or open.
func (b *BreakerStore) State() string {
	return stateToString(b.cb.State())
}

// execute runs fn under the breaker. Rejections and failures are wrapped in
// recommend.ErrRatingsStoreUnavailable.
func (b *BreakerStore) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(fn)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			logging.Debug().Err(err).Str("breaker", b.name).Msg("[CIRCUIT BREAKER] Request rejected")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()

			counts := b.cb.Counts()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(float64(counts.ConsecutiveFailures))
		}
		return nil, fmt.Errorf("%w: %s: %w", recommend.ErrRatingsStoreUnavailable, b.name, err)
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(0)

	return result, nil
}

// castResult safely type-casts the circuit breaker result.
func castResult[T any](result interface{}, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// LikedItems implements recommend.LikedItemsSource with breaker protection.
func (b *BreakerStore) LikedItems(ctx context.Context, userID int, threshold float64) ([]int, error) {
	return castResult[[]int](b.execute(func() (interface{}, error) {
		return b.inner.LikedItems(ctx, userID, threshold)
	}))
}

// AllRatings reads the full table with breaker protection.
func (b *BreakerStore) AllRatings(ctx context.Context) ([]recommend.Rating, error) {
	return castResult[[]recommend.Rating](b.execute(func() (interface{}, error) {
		return b.inner.AllRatings(ctx)
	}))
}

// Ping goes through the breaker so probes also drive half-open recovery.
func (b *BreakerStore) Ping(ctx context.Context) error {
	_, err := b.execute(func() (interface{}, error) {
		return nil, b.inner.Ping(ctx)
	})
	return err
}

// Close closes the wrapped store.
func (b *BreakerStore) Close() error {
	return b.inner.Close()
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
