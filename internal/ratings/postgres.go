// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package ratings

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tomtom215/animerec/internal/config"
	"github.com/tomtom215/animerec/internal/metrics"
	"github.com/tomtom215/animerec/internal/recommend"
)

const (
	pgLikedItemsQuery = `SELECT anime_id::bigint FROM user_ratings WHERE user_id = $1 AND rating >= $2`
	pgAllRatingsQuery = `SELECT user_id::bigint, anime_id::bigint, rating::float8 FROM user_ratings ORDER BY user_id, anime_id`
)

// PostgresStore reads ratings through a pgx connection pool.
type PostgresStore struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewPostgresStore builds the pool. Connections are opened lazily, so an
// unreachable server does not fail construction.
func NewPostgresStore(ctx context.Context, cfg config.RatingsConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres DSN: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns) //nolint:gosec // bounded by config validation
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	return &PostgresStore{pool: pool, timeout: cfg.QueryTimeout}, nil
}

// LikedItems returns the items userID rated at or above threshold.
func (s *PostgresStore) LikedItems(ctx context.Context, userID int, threshold float64) (ids []int, err error) {
	start := time.Now()
	defer func() { metrics.RecordRatingsQuery(DriverPostgres, opLikedItems, time.Since(start), err) }()

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, pgLikedItemsQuery, userID, threshold)
	if err != nil {
		return nil, fmt.Errorf("liked items query: %w", err)
	}
	ids, err = pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, fmt.Errorf("liked items scan: %w", err)
	}
	return ids, nil
}

// AllRatings returns the full ratings table.
func (s *PostgresStore) AllRatings(ctx context.Context) (out []recommend.Rating, err error) {
	start := time.Now()
	defer func() { metrics.RecordRatingsQuery(DriverPostgres, opAllRatings, time.Since(start), err) }()

	rows, err := s.pool.Query(ctx, pgAllRatingsQuery)
	if err != nil {
		return nil, fmt.Errorf("all ratings query: %w", err)
	}
	out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (recommend.Rating, error) {
		var r recommend.Rating
		err := row.Scan(&r.UserID, &r.ItemID, &r.Value)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("all ratings scan: %w", err)
	}
	return out, nil
}

// Ping checks that a connection can be acquired and used.
func (s *PostgresStore) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { metrics.RecordRatingsQuery(DriverPostgres, opPing, time.Since(start), err) }()

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Close releases all pooled connections.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
