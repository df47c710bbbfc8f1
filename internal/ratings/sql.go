// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package ratings

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // registers "duckdb"
	_ "github.com/go-sql-driver/mysql" // registers "mysql"
	_ "modernc.org/sqlite"             // registers "sqlite"

	"github.com/tomtom215/animerec/internal/config"
	"github.com/tomtom215/animerec/internal/metrics"
	"github.com/tomtom215/animerec/internal/recommend"
)

// DuckDB, MySQL and SQLite all accept ? placeholders.
const (
	sqlLikedItemsQuery = `SELECT anime_id FROM user_ratings WHERE user_id = ? AND rating >= ?`
	sqlAllRatingsQuery = `SELECT user_id, anime_id, rating FROM user_ratings ORDER BY user_id, anime_id`
)

// SQLStore reads ratings through database/sql for the embedded and MySQL
// drivers.
type SQLStore struct {
	db      *sql.DB
	driver  string
	timeout time.Duration
}

// NewSQLStore opens cfg.DSN with the driver named by cfg.Driver.
func NewSQLStore(ctx context.Context, cfg config.RatingsConfig) (*SQLStore, error) {
	switch cfg.Driver {
	case DriverDuckDB, DriverMySQL, DriverSQLite:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s ratings store: %w", cfg.Driver, err)
	}
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
		db.SetMaxIdleConns(cfg.MaxConns)
	}
	db.SetConnMaxLifetime(30 * time.Minute)

	return &SQLStore{db: db, driver: cfg.Driver, timeout: cfg.QueryTimeout}, nil
}

// Driver returns the database/sql driver name.
func (s *SQLStore) Driver() string {
	return s.driver
}

// LikedItems returns the items userID rated at or above threshold.
func (s *SQLStore) LikedItems(ctx context.Context, userID int, threshold float64) (ids []int, err error) {
	start := time.Now()
	defer func() { metrics.RecordRatingsQuery(s.driver, opLikedItems, time.Since(start), err) }()

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, sqlLikedItemsQuery, userID, threshold)
	if err != nil {
		return nil, fmt.Errorf("liked items query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("liked items scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("liked items rows: %w", err)
	}
	return ids, nil
}

// AllRatings returns the full ratings table.
func (s *SQLStore) AllRatings(ctx context.Context) (out []recommend.Rating, err error) {
	start := time.Now()
	defer func() { metrics.RecordRatingsQuery(s.driver, opAllRatings, time.Since(start), err) }()

	rows, err := s.db.QueryContext(ctx, sqlAllRatingsQuery)
	if err != nil {
		return nil, fmt.Errorf("all ratings query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r recommend.Rating
		if err := rows.Scan(&r.UserID, &r.ItemID, &r.Value); err != nil {
			return nil, fmt.Errorf("all ratings scan: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("all ratings rows: %w", err)
	}
	return out, nil
}

// Ping verifies the database is reachable.
func (s *SQLStore) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { metrics.RecordRatingsQuery(s.driver, opPing, time.Since(start), err) }()

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	return s.db.PingContext(ctx)
}

// Close closes the underlying database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
