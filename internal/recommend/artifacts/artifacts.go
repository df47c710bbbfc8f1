// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

// Package artifacts restores the serving artifacts from a persisted bundle
// and wires them into engine dependencies.
//
// Every failure here is startup-fatal and reported as
// recommend.ErrMissingArtifact: a missing file, a checksum mismatch, an
// undecodable payload, or indices that disagree with each other.
package artifacts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/animerec/internal/catalog"
	"github.com/tomtom215/animerec/internal/logging"
	"github.com/tomtom215/animerec/internal/metrics"
	"github.com/tomtom215/animerec/internal/recommend"
	"github.com/tomtom215/animerec/internal/recommend/algorithms"
	"github.com/tomtom215/animerec/internal/recommend/storage"
)

// Artifacts are the immutable, shared serving artifacts.
type Artifacts struct {
	ALS      *algorithms.ALS
	Content  *algorithms.ContentModel
	Catalog  *catalog.Catalog
	Metadata storage.Metadata
}

// Load reads bundle name at version (0 = latest) and restores it.
func Load(ctx context.Context, store *storage.Store, name string, version int) (*Artifacts, error) {
	start := time.Now()

	bundle, meta, err := store.LoadBundle(ctx, name, version)
	if err != nil {
		return nil, recommend.NewError(recommend.KindMissingArtifact, "load bundle", err)
	}

	a, err := FromBundle(bundle, *meta)
	if err != nil {
		return nil, err
	}

	metrics.RecordBundleLoaded(meta.Name, meta.Version, a.Catalog.Len(), a.ALS.NumUsers(), meta.TrainedAt)
	logging.Info().
		Str("bundle", meta.Name).
		Int("version", meta.Version).
		Int("items", a.Catalog.Len()).
		Int("users", a.ALS.NumUsers()).
		Int("features", a.Content.NumFeatures()).
		Time("trained_at", meta.TrainedAt).
		Dur("duration", time.Since(start)).
		Msg("Model bundle loaded")

	return a, nil
}

// FromBundle restores artifacts from an in-memory bundle and builds the
// TF-IDF matrix once.
//
//nolint:gocritic // hugeParam: meta copied once at load
func FromBundle(b *storage.Bundle, meta storage.Metadata) (*Artifacts, error) {
	if b == nil {
		return nil, missing(errors.New("bundle is nil"))
	}
	if len(b.Catalog) == 0 {
		return nil, missing(catalog.ErrEmptyCatalog)
	}

	als, err := algorithms.NewALSFromState(b.ALS)
	if err != nil {
		return nil, missing(err)
	}
	vectorizer, err := algorithms.NewVectorizerFromState(b.Vectorizer)
	if err != nil {
		return nil, missing(fmt.Errorf("restore vectorizer: %w", err))
	}

	cat := catalog.New(b.Catalog)
	for _, id := range als.ItemIDs() {
		if _, ok := cat.Get(id); !ok {
			return nil, missing(fmt.Errorf("collaborative item %d not in catalog", id))
		}
	}

	content := algorithms.NewContentModel(vectorizer, cat.Items())
	content.Build()

	return &Artifacts{
		ALS:      als,
		Content:  content,
		Catalog:  cat,
		Metadata: meta,
	}, nil
}

// Dependencies wires the artifacts into engine collaborators. ratings
// backs the content scorer's liked-items lookup.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (a *Artifacts) Dependencies(ratings recommend.LikedItemsSource, likedThreshold float64, logger zerolog.Logger) (recommend.Dependencies, error) {
	if ratings == nil {
		return recommend.Dependencies{}, missing(errors.New("ratings source is nil"))
	}

	candidates, err := algorithms.NewCandidateGenerator(a.ALS, a.Catalog.Popularity())
	if err != nil {
		return recommend.Dependencies{}, err
	}

	return recommend.Dependencies{
		Candidates:    candidates,
		Collaborative: algorithms.NewCollaborativeScorer(a.ALS),
		Content:       algorithms.NewContentScorer(a.Content, ratings, likedThreshold, logger),
		Catalog:       a.Catalog,
	}, nil
}

// NewEngine is a convenience that builds dependencies and the engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (a *Artifacts) NewEngine(cfg *recommend.Config, ratings recommend.LikedItemsSource, logger zerolog.Logger) (*recommend.Engine, error) {
	if cfg == nil {
		cfg = recommend.DefaultConfig()
	}
	deps, err := a.Dependencies(ratings, cfg.Content.LikedThreshold, logger)
	if err != nil {
		return nil, err
	}
	return recommend.NewEngine(cfg, deps, logger)
}

func missing(err error) error {
	return recommend.NewError(recommend.KindMissingArtifact, "restore bundle", err)
}
