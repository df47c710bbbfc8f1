// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package training

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/animerec/internal/catalog"
	"github.com/tomtom215/animerec/internal/config"
	"github.com/tomtom215/animerec/internal/metrics"
	"github.com/tomtom215/animerec/internal/recommend"
	"github.com/tomtom215/animerec/internal/recommend/algorithms"
	"github.com/tomtom215/animerec/internal/recommend/storage"
)

// Stage names recorded in metrics.
const (
	StageRatings = "ratings"
	StageALS     = "als"
	StageTFIDF   = "tfidf"
	StageSave    = "save"
	StagePrune   = "prune"
)

// ErrNoRatings is returned when no rating references a catalog item.
var ErrNoRatings = errors.New("no usable ratings")

// RatingsSource reads the full ratings table.
type RatingsSource interface {
	AllRatings(ctx context.Context) ([]recommend.Rating, error)
}

// Options configure a training run.
type Options struct {
	ALS        algorithms.ALSConfig
	Vectorizer algorithms.VectorizerConfig

	// BundleName is the artifact name written to the store.
	BundleName string

	// Keep is the number of bundle versions retained after saving.
	// Zero disables pruning.
	Keep int
}

// OptionsFromConfig maps the training and bundle sections.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	stopWords, err := algorithms.StopWords(cfg.Training.StopWords)
	if err != nil {
		return Options{}, err
	}

	workers := cfg.Training.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return Options{
		ALS: algorithms.ALSConfigFrom(cfg.EngineConfig().ALS, workers),
		Vectorizer: algorithms.VectorizerConfig{
			StopWords:   stopWords,
			MinDF:       cfg.Training.MinDF,
			MaxFeatures: cfg.Training.MaxFeatures,
		},
		BundleName: cfg.Bundle.Name,
		Keep:       cfg.Bundle.Keep,
	}, nil
}

// Result summarizes a completed run.
type Result struct {
	Metadata storage.Metadata

	// Ratings is the number of ratings used for ALS.
	Ratings int

	// Ignored counts ratings whose item is not in the catalog.
	Ignored int

	// Pruned is the number of old bundle versions removed.
	Pruned int
}

// Trainer fits and persists model bundles.
type Trainer struct {
	opts   Options
	store  *storage.Store
	logger zerolog.Logger
}

// New creates a trainer writing to store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(opts Options, store *storage.Store, logger zerolog.Logger) *Trainer {
	if opts.BundleName == "" {
		opts.BundleName = storage.DefaultBundleName
	}
	return &Trainer{
		opts:   opts,
		store:  store,
		logger: logger.With().Str("component", "trainer").Logger(),
	}
}

// Run executes one full training run.
func (t *Trainer) Run(ctx context.Context, cat *catalog.Catalog, source RatingsSource) (*Result, error) {
	start := time.Now()

	var ratings []recommend.Rating
	err := t.stage(StageRatings, func() error {
		var err error
		ratings, err = source.AllRatings(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("read ratings: %w", err)
	}

	bundle, kept, ignored, err := t.Build(ctx, cat, ratings)
	if err != nil {
		return nil, err
	}

	meta := storage.Metadata{
		RatingCount:        kept,
		TrainingDurationMS: time.Since(start).Milliseconds(),
	}
	err = t.stage(StageSave, func() error {
		var err error
		meta, err = t.store.SaveBundle(ctx, t.opts.BundleName, bundle, meta)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("save bundle: %w", err)
	}

	result := &Result{Metadata: meta, Ratings: kept, Ignored: ignored}
	if t.opts.Keep > 0 {
		err = t.stage(StagePrune, func() error {
			var err error
			result.Pruned, err = t.store.Prune(ctx, t.opts.BundleName, t.opts.Keep)
			return err
		})
		if err != nil {
			// The new bundle is already saved.
			t.logger.Warn().Err(err).Msg("failed to prune old bundle versions")
		}
	}

	t.logger.Info().
		Str("bundle", meta.Name).
		Int("version", meta.Version).
		Int("ratings", kept).
		Int("ignored", ignored).
		Int("items", meta.ItemCount).
		Int("users", meta.UserCount).
		Int("pruned", result.Pruned).
		Dur("duration", time.Since(start)).
		Msg("Training run complete")

	return result, nil
}

// Build fits both models in memory without persisting them. It returns the
// bundle plus the number of ratings used and ignored.
func (t *Trainer) Build(ctx context.Context, cat *catalog.Catalog, ratings []recommend.Rating) (*storage.Bundle, int, int, error) {
	if cat == nil || cat.Len() == 0 {
		return nil, 0, 0, catalog.ErrEmptyCatalog
	}

	kept, ignored := FilterRatings(ratings, cat)
	if len(kept) == 0 {
		return nil, 0, ignored, ErrNoRatings
	}
	if ignored > 0 {
		t.logger.Warn().Int("ignored", ignored).Msg("ratings reference items missing from the catalog")
	}

	als := algorithms.NewALS(t.opts.ALS)
	if err := t.stage(StageALS, func() error { return als.Train(ctx, kept) }); err != nil {
		return nil, 0, 0, fmt.Errorf("train als: %w", err)
	}

	items := cat.Items()
	synopses := make([]string, len(items))
	for i := range items {
		synopses[i] = items[i].Synopsis
	}
	vectorizer := algorithms.NewVectorizer(t.opts.Vectorizer)
	if err := t.stage(StageTFIDF, func() error { return vectorizer.Fit(ctx, synopses) }); err != nil {
		return nil, 0, 0, fmt.Errorf("fit tfidf: %w", err)
	}

	return &storage.Bundle{
		ALS:        als.State(),
		Vectorizer: vectorizer.State(),
		Catalog:    items,
	}, len(kept), ignored, nil
}

func (t *Trainer) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	metrics.RecordTrainingStage(name, elapsed)

	event := t.logger.Debug()
	if err != nil {
		event = t.logger.Error().Err(err)
	}
	event.Str("stage", name).Dur("duration", elapsed).Msg("Training stage finished")
	return err
}

// FilterRatings drops ratings for items not in the catalog.
func FilterRatings(ratings []recommend.Rating, cat *catalog.Catalog) (kept []recommend.Rating, ignored int) {
	kept = make([]recommend.Rating, 0, len(ratings))
	for _, r := range ratings {
		if _, ok := cat.Get(r.ItemID); !ok {
			ignored++
			continue
		}
		kept = append(kept, r)
	}
	return kept, ignored
}
