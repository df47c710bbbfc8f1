// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package storage

import (
	"context"
	"fmt"

	"github.com/tomtom215/animerec/internal/recommend"
	"github.com/tomtom215/animerec/internal/recommend/algorithms"
)

// DefaultBundleName is the artifact name used by the trainer and server.
const DefaultBundleName = "bundle"

// Bundle is everything the serving path needs, persisted as one file so
// the collaborative and content artifacts can never drift apart.
type Bundle struct {
	ALS        algorithms.ALSState
	Vectorizer algorithms.VectorizerState
	Catalog    []recommend.Item
}

// SaveBundle writes b as the next version of name.
//
//nolint:gocritic // meta passed by value is acceptable for this write operation
func (s *Store) SaveBundle(ctx context.Context, name string, b *Bundle, meta Metadata) (Metadata, error) {
	if b == nil {
		return Metadata{}, fmt.Errorf("save %s: nil bundle", name)
	}
	if meta.ItemCount == 0 {
		meta.ItemCount = len(b.Catalog)
	}
	if meta.UserCount == 0 {
		meta.UserCount = len(b.ALS.UserIDs)
	}
	if meta.TrainedAt.IsZero() {
		meta.TrainedAt = b.ALS.TrainedAt
	}
	return s.Save(ctx, name, 0, b, meta)
}

// LoadBundle reads a bundle version; 0 means latest.
func (s *Store) LoadBundle(ctx context.Context, name string, version int) (*Bundle, *Metadata, error) {
	var b Bundle
	meta, err := s.Load(ctx, name, version, &b)
	if err != nil {
		return nil, nil, err
	}
	return &b, meta, nil
}
