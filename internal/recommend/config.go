// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package recommend

import (
	"encoding/json"
	"fmt"
	"time"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Weights are the default fusion weights. Requests may override them.
	Weights Weights `json:"weights"`

	// ALS contains training parameters for the collaborative model.
	ALS ALSConfig `json:"als"`

	// Content contains parameters for the content model and scorer.
	Content ContentConfig `json:"content"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`
}

// Weights are the fusion coefficients. They are applied as given and are
// not normalized, so callers wanting comparable scores across requests
// should keep them summing to 1.
type Weights struct {
	// Content (alpha) weights the normalized centroid similarity.
	Content float64 `json:"alpha"`

	// Collaborative (beta) weights the normalized latent-factor score.
	Collaborative float64 `json:"beta"`

	// Quality (gamma) weights the rank-derived quality signal.
	Quality float64 `json:"gamma"`
}

// DefaultWeights returns α=0.6, β=0.25, γ=0.15.
func DefaultWeights() Weights {
	return Weights{
		Content:       0.6,
		Collaborative: 0.25,
		Quality:       0.15,
	}
}

// ALSConfig contains parameters for offline ALS training.
type ALSConfig struct {
	// Factors is the latent dimension.
	// Default: 64.
	Factors int `json:"factors"`

	// Regularization is the L2 penalty.
	// Default: 0.01.
	Regularization float64 `json:"regularization"`

	// Alpha scales rating confidence: c = 1 + alpha * rating / 10.
	// Default: 40.
	Alpha float64 `json:"alpha"`

	// Iterations is the number of alternating sweeps.
	// Default: 15.
	Iterations int `json:"iterations"`
}

// ContentConfig contains parameters for the TF-IDF content model.
type ContentConfig struct {
	// LikedThreshold is the minimum rating for an item to count toward
	// the user profile centroid.
	// Default: 7.0.
	LikedThreshold float64 `json:"liked_threshold"`

	// StopWords selects the stop word list ("english" or "" for none).
	// Default: "english".
	StopWords string `json:"stop_words"`

	// MinDF drops terms that appear in fewer documents.
	// Default: 1.
	MinDF int `json:"min_df"`

	// MaxFeatures caps the vocabulary to the most frequent terms.
	// Zero means unlimited. Default: 0.
	MaxFeatures int `json:"max_features"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// PoolSize is the number of candidates generated per request.
	// Default: 50.
	PoolSize int `json:"pool_size"`

	// DefaultLimit is used when a request does not set a limit.
	// Default: 10.
	DefaultLimit int `json:"default_limit"`

	// MaxLimit caps the requested limit.
	// Default: 50.
	MaxLimit int `json:"max_limit"`

	// RequestTimeout bounds a single recommendation call.
	// Default: 5s.
	RequestTimeout time.Duration `json:"request_timeout"`
}

// Defaults used by DefaultConfig and by the serving layer.
const (
	DefaultPoolSize       = 50
	DefaultLimit          = 10
	MaxLimit              = 50
	DefaultLikedThreshold = 7.0
)

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		Weights: DefaultWeights(),
		ALS: ALSConfig{
			Factors:        64,
			Regularization: 0.01,
			Alpha:          40.0,
			Iterations:     15,
		},
		Content: ContentConfig{
			LikedThreshold: DefaultLikedThreshold,
			StopWords:      "english",
			MinDF:          1,
		},
		Limits: LimitsConfig{
			PoolSize:       DefaultPoolSize,
			DefaultLimit:   DefaultLimit,
			MaxLimit:       MaxLimit,
			RequestTimeout: 5 * time.Second,
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}

	if c.ALS.Factors < 1 {
		return fmt.Errorf("als.factors must be positive, got %d", c.ALS.Factors)
	}
	if c.ALS.Regularization < 0 {
		return fmt.Errorf("als.regularization must be non-negative, got %f", c.ALS.Regularization)
	}
	if c.ALS.Alpha < 0 {
		return fmt.Errorf("als.alpha must be non-negative, got %f", c.ALS.Alpha)
	}
	if c.ALS.Iterations < 1 {
		return fmt.Errorf("als.iterations must be positive, got %d", c.ALS.Iterations)
	}

	if c.Content.StopWords != "" && c.Content.StopWords != "english" {
		return fmt.Errorf("content.stop_words must be \"english\" or empty, got %q", c.Content.StopWords)
	}
	if c.Content.MinDF < 1 {
		return fmt.Errorf("content.min_df must be positive, got %d", c.Content.MinDF)
	}
	if c.Content.MaxFeatures < 0 {
		return fmt.Errorf("content.max_features must be non-negative, got %d", c.Content.MaxFeatures)
	}

	if c.Limits.PoolSize < 1 {
		return fmt.Errorf("limits.pool_size must be positive, got %d", c.Limits.PoolSize)
	}
	if c.Limits.DefaultLimit < 1 {
		return fmt.Errorf("limits.default_limit must be positive, got %d", c.Limits.DefaultLimit)
	}
	if c.Limits.MaxLimit < c.Limits.DefaultLimit {
		return fmt.Errorf("limits.max_limit must be >= limits.default_limit, got %d < %d", c.Limits.MaxLimit, c.Limits.DefaultLimit)
	}
	if c.Limits.RequestTimeout <= 0 {
		return fmt.Errorf("limits.request_timeout must be positive, got %v", c.Limits.RequestTimeout)
	}

	return nil
}

// Validate checks that each weight is non-negative.
func (w Weights) Validate() error {
	if w.Content < 0 {
		return fmt.Errorf("weights.alpha must be non-negative, got %f", w.Content)
	}
	if w.Collaborative < 0 {
		return fmt.Errorf("weights.beta must be non-negative, got %f", w.Collaborative)
	}
	if w.Quality < 0 {
		return fmt.Errorf("weights.gamma must be non-negative, got %f", w.Quality)
	}
	return nil
}

// Sum returns α+β+γ.
func (w Weights) Sum() float64 {
	return w.Content + w.Collaborative + w.Quality
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// All nested structs contain only value types.
	clone := *c
	return &clone
}

// MarshalJSON renders the request timeout as a duration string.
func (c *Config) MarshalJSON() ([]byte, error) {
	type Alias Config
	type limits struct {
		PoolSize       int    `json:"pool_size"`
		DefaultLimit   int    `json:"default_limit"`
		MaxLimit       int    `json:"max_limit"`
		RequestTimeout string `json:"request_timeout"`
	}
	return json.Marshal(&struct {
		*Alias
		Limits limits `json:"limits"`
	}{
		Alias: (*Alias)(c),
		Limits: limits{
			PoolSize:       c.Limits.PoolSize,
			DefaultLimit:   c.Limits.DefaultLimit,
			MaxLimit:       c.Limits.MaxLimit,
			RequestTimeout: c.Limits.RequestTimeout.String(),
		},
	})
}
