// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

// Package main compares the CF-only, content-only and hybrid models
// offline.
//
// It loads the same bundle the server serves, samples users who rated at
// least one item at or above EVAL_RELEVANCE_THRESHOLD, and prints
// Precision@K, catalog coverage and the average rank score of each model
// as a Markdown table. Relevant items are not held out, so precision is
// optimistic and only meaningful as a comparison between models.
//
// # Configuration
//
//   - BUNDLE_DIR, BUNDLE_NAME, BUNDLE_VERSION: bundle to evaluate
//   - RATINGS_DRIVER, RATINGS_DSN: ratings store
//   - EVAL_USERS, EVAL_K, EVAL_RELEVANCE_THRESHOLD, EVAL_SEED
//   - EVAL_QPS: liked-items lookups per second (0 = unlimited)
//   - EVAL_OUTPUT: optional JSON report path
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/animerec/internal/config"
	"github.com/tomtom215/animerec/internal/evaluate"
	"github.com/tomtom215/animerec/internal/logging"
	"github.com/tomtom215/animerec/internal/ratings"
	"github.com/tomtom215/animerec/internal/recommend/algorithms"
	"github.com/tomtom215/animerec/internal/recommend/artifacts"
	"github.com/tomtom215/animerec/internal/recommend/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Caller:  cfg.Logging.Caller,
		Service: "animerec-evaluate",
		Output:  os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logging.Error().Err(err).Msg("Evaluation failed")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	bundles, err := storage.NewStore(cfg.Bundle.Dir)
	if err != nil {
		return err
	}
	a, err := artifacts.Load(ctx, bundles, cfg.Bundle.Name, cfg.Bundle.Version)
	if err != nil {
		return err
	}

	store, err := ratings.Open(ctx, cfg.Ratings)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing ratings store")
		}
	}()

	all, err := store.AllRatings(ctx)
	if err != nil {
		return err
	}

	logger := logging.WithComponent("evaluate")
	throttled := evaluate.NewThrottledSource(store, cfg.Evaluate.QPS)

	engine, err := a.NewEngine(cfg.EngineConfig(), throttled, logger)
	if err != nil {
		return err
	}
	scorer := algorithms.NewContentScorer(a.Content, throttled, cfg.Recommend.LikedThreshold, logger)

	harness := evaluate.NewHarness(evaluate.ConfigFrom(cfg.Evaluate), a.Catalog, a.Catalog.Len(), logger)
	report, err := harness.Run(ctx, all,
		evaluate.NewCFOnly(a.ALS),
		evaluate.NewContentOnly(scorer, a.Content, a.Catalog),
		evaluate.NewHybrid(engine),
	)
	if err != nil {
		return err
	}

	if err := report.WriteTable(os.Stdout); err != nil {
		return err
	}
	if cfg.Evaluate.OutputPath != "" {
		if err := report.WriteJSON(cfg.Evaluate.OutputPath); err != nil {
			return err
		}
		logging.Info().Str("path", cfg.Evaluate.OutputPath).Msg("Report written")
	}
	return nil
}
