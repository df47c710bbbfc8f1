// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package ratings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/animerec/internal/config"
	"github.com/tomtom215/animerec/internal/logging"
	"github.com/tomtom215/animerec/internal/recommend"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverDuckDB   = "duckdb"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Query operation labels used in metrics.
const (
	opLikedItems = "liked_items"
	opAllRatings = "all_ratings"
	opPing       = "ping"
)

// ErrUnsupportedDriver is returned by Open for an unknown driver name.
var ErrUnsupportedDriver = errors.New("unsupported ratings driver")

// Store is a read-only view of the user_ratings table.
type Store interface {
	recommend.LikedItemsSource

	// AllRatings returns every rating ordered by user then item.
	AllRatings(ctx context.Context) ([]recommend.Rating, error)

	Ping(ctx context.Context) error
	Close() error
}

// Open connects the configured driver and wraps it in a circuit breaker.
// A failed initial ping is logged but not returned: the server starts in
// degraded mode and the probe service keeps checking.
func Open(ctx context.Context, cfg config.RatingsConfig) (*BreakerStore, error) {
	var (
		inner Store
		err   error
	)
	switch cfg.Driver {
	case DriverPostgres:
		inner, err = NewPostgresStore(ctx, cfg)
	case DriverDuckDB, DriverMySQL, DriverSQLite:
		inner, err = NewSQLStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	store := NewBreakerStore(inner, "ratings-"+cfg.Driver, cfg.Breaker)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.QueryTimeout)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		logging.Warn().
			Err(err).
			Str("driver", cfg.Driver).
			Str("dsn", logging.RedactDSN(cfg.DSN)).
			Msg("Ratings store not reachable at startup, content signal will be degraded")
	} else {
		logging.Info().
			Str("driver", cfg.Driver).
			Str("dsn", logging.RedactDSN(cfg.DSN)).
			Msg("Ratings store connected")
	}
	return store, nil
}

// withTimeout bounds a single query. A zero timeout leaves ctx unchanged.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
