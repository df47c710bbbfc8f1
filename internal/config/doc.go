// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

/*
Package config provides configuration management for the recommendation
server, trainer and evaluation tools.

Configuration is layered with Koanf v2:

 1. .env file (optional, DOTENV_PATH or ./.env)
 2. Built-in defaults
 3. YAML config file (CONFIG_PATH, ./config.yaml, /etc/animerec/config.yaml)
 4. Environment variables

Only environment variables listed in the mapping table are read, so a
stray variable never changes behavior.

# Sections

  - Server: HTTP_PORT, HTTP_HOST, HTTP_TIMEOUT, ENVIRONMENT
  - Logging: LOG_LEVEL, LOG_FORMAT, LOG_CALLER
  - Security: RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, CORS_ORIGINS
  - Recommend: RECOMMEND_ALPHA, RECOMMEND_BETA, RECOMMEND_GAMMA, RECOMMEND_POOL_SIZE
  - Bundle: BUNDLE_DIR, BUNDLE_NAME, BUNDLE_VERSION, BUNDLE_KEEP
  - Ratings: RATINGS_DRIVER, RATINGS_DSN (or DATABASE_URL), RATINGS_BREAKER_*
  - Catalog: CATALOG_PATH
  - Training: ALS_*, TFIDF_*
  - Evaluate: EVAL_*

# Usage

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    log.Fatal(err)
	}
	engineCfg := cfg.EngineConfig()

Validation runs struct tag rules through the validation package, then
cross-field checks. The first failure is returned with the offending
environment variable named in the message.
*/
package config
