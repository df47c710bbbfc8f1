// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

//go:build integration

package ratings

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/tomtom215/animerec/internal/config"
	"github.com/tomtom215/animerec/internal/recommend"
	"github.com/tomtom215/animerec/internal/testinfra"
)

func TestPostgresStore_Integration(t *testing.T) {
	testinfra.SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg, err := testinfra.NewPostgresContainer(ctx, testinfra.WithRatings(seedRatings))
	if err != nil {
		t.Fatalf("NewPostgresContainer() error = %v", err)
	}
	testinfra.CleanupContainer(t, pg)

	cfg := config.RatingsConfig{
		Driver:       DriverPostgres,
		DSN:          pg.DSN,
		MaxConns:     4,
		QueryTimeout: 5 * time.Second,
		Breaker:      testBreakerConfig(),
	}
	store, err := Open(ctx, cfg)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	if err := store.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	liked, err := store.LikedItems(ctx, 1, 7)
	if err != nil {
		t.Fatalf("LikedItems() error = %v", err)
	}
	slices.Sort(liked)
	if !slices.Equal(liked, []int{10, 20}) {
		t.Errorf("LikedItems() = %v, want [10 20]", liked)
	}

	all, err := store.AllRatings(ctx)
	if err != nil {
		t.Fatalf("AllRatings() error = %v", err)
	}
	if !slices.Equal(all, seedRatings) {
		t.Errorf("AllRatings() = %+v, want %+v", all, seedRatings)
	}

	t.Run("stopped server degrades", func(t *testing.T) {
		if err := pg.Stop(ctx, nil); err != nil {
			t.Fatalf("Stop() error = %v", err)
		}
		_, err := store.LikedItems(ctx, 1, 7)
		if !errors.Is(err, recommend.ErrRatingsStoreUnavailable) {
			t.Errorf("LikedItems() error = %v, want ErrRatingsStoreUnavailable", err)
		}
	})
}
