// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

// Package testinfra provides container helpers for integration tests.
//
// Everything here is behind the integration build tag:
//
//	go test -tags integration ./...
//
// # Postgres
//
// NewPostgresContainer starts a disposable Postgres with the user_ratings
// table and optional seed rows:
//
//	func TestRatings(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    pg, err := testinfra.NewPostgresContainer(ctx, testinfra.WithRatings(seed))
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    testinfra.CleanupContainer(t, pg)
//
//	    store, err := ratings.NewPostgresStore(ctx, config.RatingsConfig{DSN: pg.DSN})
//	    // ...
//	}
package testinfra
