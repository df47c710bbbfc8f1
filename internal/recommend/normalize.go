// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package recommend

// neutralScore is assigned to every entry when a signal carries no
// discriminating information.
const neutralScore = 0.5

// Normalize min-max rescales scores into [0, 1] and returns a new map.
//
// An empty input yields an empty map. When all values are equal every
// output is 0.5. Otherwise the minimum maps to exactly 0 and the maximum
// to exactly 1. The input is not modified.
func Normalize(scores map[int]float64) map[int]float64 {
	out := make(map[int]float64, len(scores))
	if len(scores) == 0 {
		return out
	}

	first := true
	var minScore, maxScore float64
	for _, s := range scores {
		if first {
			minScore, maxScore = s, s
			first = false
			continue
		}
		if s < minScore {
			minScore = s
		}
		if s > maxScore {
			maxScore = s
		}
	}

	scoreRange := maxScore - minScore
	if scoreRange == 0 {
		for id := range scores {
			out[id] = neutralScore
		}
		return out
	}

	for id, s := range scores {
		switch s {
		case minScore:
			out[id] = 0
		case maxScore:
			out[id] = 1
		default:
			out[id] = (s - minScore) / scoreRange
		}
	}
	return out
}
