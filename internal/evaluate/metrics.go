// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package evaluate

import (
	"github.com/tomtom215/animerec/internal/recommend"
)

// MissingRank is the rank assumed for recommended items absent from the
// catalog.
const MissingRank = 99999

// PrecisionAtK returns the fraction of the first k recommendations that
// are relevant. Duplicates count once. The denominator is always k.
func PrecisionAtK(recs []int, relevant map[int]struct{}, k int) float64 {
	if k <= 0 {
		return 0
	}
	if len(recs) > k {
		recs = recs[:k]
	}
	hits := make(map[int]struct{}, len(recs))
	for _, id := range recs {
		if _, ok := relevant[id]; ok {
			hits[id] = struct{}{}
		}
	}
	return float64(len(hits)) / float64(k)
}

// Coverage returns the number of distinct recommended items divided by
// the catalog size.
func Coverage(all map[int][]int, catalogSize int) float64 {
	if catalogSize <= 0 {
		return 0
	}
	unique := make(map[int]struct{})
	for _, recs := range all {
		for _, id := range recs {
			unique[id] = struct{}{}
		}
	}
	return float64(len(unique)) / float64(catalogSize)
}

// AvgRankScore returns the mean quality score of recs. Items the catalog
// does not know are scored as MissingRank.
func AvgRankScore(recs []int, catalog recommend.ItemLookup) float64 {
	if len(recs) == 0 {
		return 0
	}
	var sum float64
	for _, id := range recs {
		rank := MissingRank
		if item, ok := catalog.Get(id); ok {
			rank = item.Rank
		}
		sum += recommend.Quality(rank)
	}
	return sum / float64(len(recs))
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
