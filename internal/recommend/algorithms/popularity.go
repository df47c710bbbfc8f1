// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package algorithms

import (
	"sort"

	"github.com/tomtom215/animerec/internal/recommend"
)

// Popularity ranks the catalog by its popularity field for cold-start users.
//
// Items are ordered ascending by popularity value, so popularity 1 comes
// first. Items with no popularity value sort after every ranked item.
// Equal values keep catalog order.
type Popularity struct {
	sortedIDs []int
}

// NewPopularity ranks items once. The slice is not retained.
//
//nolint:gocritic // rangeValCopy: Item is small
func NewPopularity(items []recommend.Item) *Popularity {
	type ranked struct {
		id         int
		popularity int
	}

	seen := make(map[int]struct{}, len(items))
	list := make([]ranked, 0, len(items))
	for _, item := range items {
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}
		list = append(list, ranked{id: item.ID, popularity: item.Popularity})
	}

	sort.SliceStable(list, func(i, j int) bool {
		pi, pj := list[i].popularity, list[j].popularity
		switch {
		case pi <= 0:
			return false
		case pj <= 0:
			return true
		default:
			return pi < pj
		}
	})

	p := &Popularity{sortedIDs: make([]int, len(list))}
	for i, r := range list {
		p.sortedIDs[i] = r.id
	}
	return p
}

// Len returns the number of ranked items.
func (p *Popularity) Len() int {
	return len(p.sortedIDs)
}

// GetTopK returns the first K item IDs.
func (p *Popularity) GetTopK(k int) []int {
	if k <= 0 || len(p.sortedIDs) == 0 {
		return []int{}
	}

	if k > len(p.sortedIDs) {
		k = len(p.sortedIDs)
	}

	result := make([]int, k)
	copy(result, p.sortedIDs[:k])
	return result
}
