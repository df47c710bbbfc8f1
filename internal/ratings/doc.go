// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

// Package ratings reads user ratings from the ratings database.
//
// The serving path only needs one query, the set of items a user rated at or
// above the liked threshold. The trainer and the evaluation harness also read
// the full ratings table. Four drivers are supported:
//
//   - postgres: jackc/pgx/v5 connection pool (production default)
//   - duckdb: embedded DuckDB file, shares the catalog tooling
//   - mysql: go-sql-driver/mysql
//   - sqlite: modernc.org/sqlite, pure Go, used for local development
//
// All drivers expect the same table:
//
//	CREATE TABLE user_ratings (
//	    user_id  INTEGER NOT NULL,
//	    anime_id INTEGER NOT NULL,
//	    rating   REAL    NOT NULL
//	);
//
// # Resilience
//
// Open wraps the driver store in a BreakerStore. Every query runs under the
// configured per-query timeout and through a sony/gobreaker circuit breaker.
// When the breaker is open, calls fail fast with an error matching
// recommend.ErrRatingsStoreUnavailable so the content signal degrades to
// zeros instead of stalling the request.
package ratings
