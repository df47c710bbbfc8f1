// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

/*
Package main is the entry point for the Animerec recommendation server.

The server loads a trained model bundle (ALS factors, TF-IDF vocabulary and
the anime catalog), connects to the ratings store, and serves hybrid
recommendations over HTTP. A missing or corrupt bundle is fatal at
startup; an unreachable ratings store is not, and recommendations degrade
to collaborative and quality signals until it recovers.

# Application Architecture

	RootSupervisor ("animerec")
	├── DataSupervisor ("data-layer")
	│   ├── RatingsProbeService
	│   └── UptimeService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Startup order:

 1. Configuration: Koanf v2 with defaults, optional config.yaml, .env and environment
 2. Logging: zerolog, JSON in production
 3. Bundle: latest (or BUNDLE_VERSION) from BUNDLE_DIR, checksums verified
 4. Ratings store: postgres, mysql, sqlite or duckdb behind a circuit breaker
 5. Engine and HTTP router
 6. Supervisor tree

# Endpoints

  - GET /api/v1/recommendations/{userID}?limit=&alpha=&beta=&gamma=
  - GET /api/v1/health/live, GET /api/v1/health/ready
  - GET /api/v1/stats
  - GET /metrics

# Signal Handling

SIGINT and SIGTERM cancel the tree. The HTTP server drains in-flight
requests within SERVER_SHUTDOWN_TIMEOUT before the ratings store is closed.

# Example Usage

	export BUNDLE_DIR=/data/models
	export RATINGS_DRIVER=postgres
	export RATINGS_DSN=postgres://anime:secret@db:5432/animedb
	./animerec
*/
package main
