// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/animerec/internal/recommend"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. .env file (optional, local development only)
//  2. Defaults: built-in values for every setting
//  3. Config File: optional YAML file
//  4. Environment Variables: override any mapped setting
//
// The server, trainer and evaluate binaries share this struct; each reads
// the sections it needs.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Security  SecurityConfig  `koanf:"security"`
	Recommend RecommendConfig `koanf:"recommend"`
	Bundle    BundleConfig    `koanf:"bundle"`
	Ratings   RatingsConfig   `koanf:"ratings"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Training  TrainingConfig  `koanf:"training"`
	Evaluate  EvaluateConfig  `koanf:"evaluate"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	Environment     string        `koanf:"environment" validate:"oneof=development staging production"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	TrustedProxies    []string      `koanf:"trusted_proxies"`
}

// RecommendConfig holds serving-time engine settings.
//
// Environment Variables:
//   - RECOMMEND_ALPHA, RECOMMEND_BETA, RECOMMEND_GAMMA: fusion weights
//   - RECOMMEND_POOL_SIZE: candidates per request (default: 50)
//   - RECOMMEND_LIKED_THRESHOLD: minimum rating counted as liked (default: 7.0)
//   - RECOMMEND_DEFAULT_LIMIT, RECOMMEND_MAX_LIMIT: result limits (default: 10, 50)
//   - RECOMMEND_TIMEOUT: per-request timeout (default: 5s)
type RecommendConfig struct {
	Alpha          float64       `koanf:"alpha" validate:"gte=0,lte=1"`
	Beta           float64       `koanf:"beta" validate:"gte=0,lte=1"`
	Gamma          float64       `koanf:"gamma" validate:"gte=0,lte=1"`
	PoolSize       int           `koanf:"pool_size" validate:"min=1,max=1000"`
	LikedThreshold float64       `koanf:"liked_threshold" validate:"gte=0,lte=10"`
	DefaultLimit   int           `koanf:"default_limit" validate:"min=1"`
	MaxLimit       int           `koanf:"max_limit" validate:"min=1"`
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"gt=0"`
}

// BundleConfig locates the persisted model bundle.
type BundleConfig struct {
	Dir  string `koanf:"dir" validate:"required"`
	Name string `koanf:"name" validate:"required"`

	// Version pins a bundle version; 0 loads the latest.
	Version int `koanf:"version" validate:"min=0"`

	// Keep is how many versions the trainer retains.
	Keep int `koanf:"keep" validate:"min=1"`
}

// RatingsConfig selects and tunes the ratings store.
//
// Environment Variables:
//   - RATINGS_DRIVER: postgres, duckdb, mysql or sqlite (default: postgres)
//   - RATINGS_DSN: driver-specific connection string
//   - RATINGS_MAX_CONNS: connection pool bound (default: 10)
//   - RATINGS_QUERY_TIMEOUT: per-query timeout (default: 2s)
type RatingsConfig struct {
	Driver        string        `koanf:"driver" validate:"oneof=postgres duckdb mysql sqlite"`
	DSN           string        `koanf:"dsn"`
	MaxConns      int           `koanf:"max_conns" validate:"min=1"`
	QueryTimeout  time.Duration `koanf:"query_timeout" validate:"gt=0"`
	ProbeInterval time.Duration `koanf:"probe_interval" validate:"gt=0"`
	Breaker       BreakerConfig `koanf:"breaker"`
}

// BreakerConfig tunes the ratings store circuit breaker.
type BreakerConfig struct {
	// MaxRequests allowed through while half-open.
	MaxRequests uint32 `koanf:"max_requests" validate:"min=1"`

	// Interval resets the closed-state counts.
	Interval time.Duration `koanf:"interval"`

	// Timeout is how long the breaker stays open.
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// MinRequests before the failure ratio is considered.
	MinRequests uint32 `koanf:"min_requests" validate:"min=1"`

	FailureRatio float64 `koanf:"failure_ratio" validate:"gt=0,lte=1"`
}

// CatalogConfig locates the processed catalog CSV used by the trainer.
type CatalogConfig struct {
	Path string `koanf:"path"`
}

// TrainingConfig holds offline ALS and TF-IDF parameters.
type TrainingConfig struct {
	Factors        int     `koanf:"factors" validate:"min=1"`
	Iterations     int     `koanf:"iterations" validate:"min=1"`
	Regularization float64 `koanf:"regularization" validate:"gte=0"`
	Alpha          float64 `koanf:"alpha" validate:"gte=0"`

	// Workers is the solver parallelism; 0 uses runtime.NumCPU().
	Workers int `koanf:"workers" validate:"min=0"`

	StopWords   string `koanf:"stop_words" validate:"omitempty,oneof=english"`
	MinDF       int    `koanf:"min_df" validate:"min=1"`
	MaxFeatures int    `koanf:"max_features" validate:"min=0"`
}

// EvaluateConfig holds offline evaluation settings.
type EvaluateConfig struct {
	Users              int     `koanf:"users" validate:"min=1"`
	K                  int     `koanf:"k" validate:"min=1"`
	RelevanceThreshold float64 `koanf:"relevance_threshold" validate:"gte=0,lte=10"`

	// QPS throttles ratings store calls; 0 disables throttling.
	QPS float64 `koanf:"qps" validate:"gte=0"`

	Seed       int64  `koanf:"seed"`
	OutputPath string `koanf:"output_path"`
}

// EngineConfig converts the recommend and training sections into the
// engine's configuration.
func (c *Config) EngineConfig() *recommend.Config {
	return &recommend.Config{
		Weights: recommend.Weights{
			Content:       c.Recommend.Alpha,
			Collaborative: c.Recommend.Beta,
			Quality:       c.Recommend.Gamma,
		},
		ALS: recommend.ALSConfig{
			Factors:        c.Training.Factors,
			Regularization: c.Training.Regularization,
			Alpha:          c.Training.Alpha,
			Iterations:     c.Training.Iterations,
		},
		Content: recommend.ContentConfig{
			LikedThreshold: c.Recommend.LikedThreshold,
			StopWords:      c.Training.StopWords,
			MinDF:          c.Training.MinDF,
			MaxFeatures:    c.Training.MaxFeatures,
		},
		Limits: recommend.LimitsConfig{
			PoolSize:       c.Recommend.PoolSize,
			DefaultLimit:   c.Recommend.DefaultLimit,
			MaxLimit:       c.Recommend.MaxLimit,
			RequestTimeout: c.Recommend.RequestTimeout,
		},
	}
}

// Load reads configuration from defaults, an optional config file and the
// environment. See LoadWithKoanf for the layering.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
