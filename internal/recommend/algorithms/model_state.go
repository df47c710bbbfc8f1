// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package algorithms

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/animerec/internal/recommend"
)

// modelState records whether a model has been fitted. Embedded by the
// trainable models.
//
// fitMu serializes fitting only. Scoring reads fitted parameters without
// locking, so a model must not be scored while it is being fitted;
// bundle-loaded models are never refitted.
type modelState struct {
	name     string
	fitMu    sync.Mutex
	version  atomic.Int32
	fittedAt atomic.Int64 // unix nanos, 0 until fitted
}

// Name returns the model identifier.
func (s *modelState) Name() string {
	return s.name
}

// IsTrained reports whether the model has been fitted or loaded.
func (s *modelState) IsTrained() bool {
	return s.version.Load() > 0
}

// Version returns how many times the model has been fitted.
func (s *modelState) Version() int {
	return int(s.version.Load())
}

// LastTrainedAt returns when the model was last fitted.
func (s *modelState) LastTrainedAt() time.Time {
	ns := s.fittedAt.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

func (s *modelState) lockFit()   { s.fitMu.Lock() }
func (s *modelState) unlockFit() { s.fitMu.Unlock() }

// markTrained must be called with the fit lock held.
func (s *modelState) markTrained() {
	s.fittedAt.Store(time.Now().UnixNano())
	s.version.Add(1)
}

// markLoaded records parameters restored from a bundle as version 1. A
// zero trainedAt leaves LastTrainedAt zero.
func (s *modelState) markLoaded(trainedAt time.Time) {
	var ns int64
	if !trainedAt.IsZero() {
		ns = trainedAt.UnixNano()
	}
	s.fittedAt.Store(ns)
	s.version.Store(1)
}

func canceled(ctx context.Context) bool {
	return ctx.Err() != nil
}

// dot is the inner product of two dense vectors; mismatched lengths give 0.
func dot(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var sum float64
	for i, v := range a {
		sum += v * b[i]
	}
	return sum
}

type scoredRow struct {
	row   int
	score float64
}

// topRows keeps the n best rows. Input must be in ascending row order so
// equal scores keep the lower row first.
func topRows(rows []scoredRow, n int) []scoredRow {
	slices.SortStableFunc(rows, func(a, b scoredRow) int {
		return cmp.Compare(b.score, a.score)
	})
	return rows[:min(n, len(rows))]
}

var (
	_ recommend.Scorer             = (*CollaborativeScorer)(nil)
	_ recommend.Scorer             = (*ContentScorer)(nil)
	_ recommend.CandidateGenerator = (*CandidateGenerator)(nil)
)
