// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package main

import (
	"context"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/tomtom215/animerec/internal/api"
	"github.com/tomtom215/animerec/internal/config"
	"github.com/tomtom215/animerec/internal/logging"
	"github.com/tomtom215/animerec/internal/metrics"
	"github.com/tomtom215/animerec/internal/models"
	"github.com/tomtom215/animerec/internal/ratings"
	"github.com/tomtom215/animerec/internal/recommend/artifacts"
	"github.com/tomtom215/animerec/internal/recommend/storage"
	"github.com/tomtom215/animerec/internal/supervisor"
	"github.com/tomtom215/animerec/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	startTime := time.Now()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Caller:  cfg.Logging.Caller,
		Service: "animerec",
	})
	metrics.SetAppInfo(version, runtime.Version())

	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("addr", cfg.Server.Addr()).
		Str("ratings_driver", cfg.Ratings.Driver).
		Str("bundle_dir", cfg.Bundle.Dir).
		Msg("Starting Animerec with supervisor tree")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	bundles, err := storage.NewStore(cfg.Bundle.Dir)
	if err != nil {
		logging.Fatal().Err(err).Str("dir", cfg.Bundle.Dir).Msg("Failed to open bundle directory")
	}
	art, err := artifacts.Load(ctx, bundles, cfg.Bundle.Name, cfg.Bundle.Version)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load model bundle")
	}

	store, err := ratings.Open(ctx, cfg.Ratings)
	if err != nil {
		logging.Fatal().Err(err).Str("driver", cfg.Ratings.Driver).Msg("Failed to open ratings store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing ratings store")
		}
	}()

	engine, err := art.NewEngine(cfg.EngineConfig(), store, logging.WithComponent("engine"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build recommendation engine")
	}

	handler := api.NewHandler(api.Options{
		Engine:  engine,
		Ratings: store,
		Driver:  cfg.Ratings.Driver,
		Bundle: models.BundleInfo{
			Name:      art.Metadata.Name,
			Version:   art.Metadata.Version,
			TrainedAt: art.Metadata.TrainedAt,
			Items:     art.Catalog.Len(),
			Users:     art.ALS.NumUsers(),
			Features:  art.Content.NumFeatures(),
			Checksum:  art.Metadata.Checksum,
		},
		RequestTimeout: cfg.Recommend.RequestTimeout,
		StartTime:      startTime,
	})

	chiMiddleware := api.NewChiMiddlewareFromSecurity(
		cfg.Security.CORSOrigins,
		cfg.Security.RateLimitReqs,
		cfg.Security.RateLimitWindow,
		cfg.Security.RateLimitDisabled,
	)
	router := api.NewRouter(handler, chiMiddleware, len(cfg.Security.TrustedProxies) > 0)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddDataService(services.NewRatingsProbeService(store, cfg.Ratings.ProbeInterval, logging.WithComponent("supervisor")))
	tree.AddDataService(services.NewUptimeService(startTime, 15*time.Second))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logging.WithComponent("supervisor")))

	logging.Info().Msg("Starting supervisor tree")
	if err := tree.Run(ctx); err != nil {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Dur("uptime", time.Since(startTime)).Msg("Animerec stopped gracefully")
}
