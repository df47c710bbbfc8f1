// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package recommend

// Quality is the rank-derived signal: 0 for absent or non-positive ranks,
// otherwise 1/(rank+1). Smaller ranks score higher.
func Quality(rank int) float64 {
	if rank <= 0 {
		return 0
	}
	return 1.0 / float64(rank+1)
}

// Exposure is the popularity-derived adjustment: 0 for absent or
// non-positive popularity, otherwise 1/(popularity+1).
func Exposure(popularity int) float64 {
	if popularity <= 0 {
		return 0
	}
	return 1.0 / float64(popularity+1)
}

// Signals are the per-candidate inputs to fusion.
type Signals struct {
	Content       float64
	Collaborative float64
	Quality       float64
	Exposure      float64
}

// Hybrid returns α·content + β·collaborative + γ·quality. The weights are
// used as given; their sum is not enforced.
//
//nolint:gocritic // hugeParam: small value types passed by value
func Hybrid(s Signals, w Weights) float64 {
	return w.Content*s.Content + w.Collaborative*s.Collaborative + w.Quality*s.Quality
}

// Fuse returns the hybrid score and the final score hybrid·(1+exposure).
// The exposure term is multiplicative and raises the score of items with
// a small positive popularity value.
//
//nolint:gocritic // hugeParam: small value types passed by value
func Fuse(s Signals, w Weights) (hybrid, final float64) {
	hybrid = Hybrid(s, w)
	return hybrid, hybrid * (1 + s.Exposure)
}
