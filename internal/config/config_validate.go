// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/animerec/internal/validation"
)

// Validate checks struct tag constraints first, then the cross-field
// rules tags cannot express. It returns the first failure.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return errors.New(verr.Error())
	}

	validators := []func() error{
		c.validateLogging,
		c.validateSecurity,
		c.validateRecommend,
		c.validateRatings,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 || c.Security.RateLimitReqs > 100000 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between 1 and 100000")
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	if c.IsProduction() {
		for _, origin := range c.Security.CORSOrigins {
			if origin == "*" {
				return fmt.Errorf("CORS_ORIGINS must not contain * in production")
			}
		}
	}
	return nil
}

func (c *Config) validateRecommend() error {
	if c.Recommend.MaxLimit < c.Recommend.DefaultLimit {
		return fmt.Errorf("RECOMMEND_MAX_LIMIT (%d) must be >= RECOMMEND_DEFAULT_LIMIT (%d)",
			c.Recommend.MaxLimit, c.Recommend.DefaultLimit)
	}
	if c.Recommend.Alpha+c.Recommend.Beta+c.Recommend.Gamma == 0 {
		return fmt.Errorf("RECOMMEND_ALPHA, RECOMMEND_BETA and RECOMMEND_GAMMA must not all be zero")
	}
	return c.EngineConfig().Validate()
}

func (c *Config) validateRatings() error {
	if strings.TrimSpace(c.Ratings.DSN) == "" {
		return fmt.Errorf("RATINGS_DSN is required for driver %s", c.Ratings.Driver)
	}
	return nil
}
