// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Note: This package has no dependencies on other internal packages.
// Scorers, the candidate generator and the catalog are injected through
// the interfaces in types.go.

// Dependencies are the read-only collaborators an Engine is built from.
type Dependencies struct {
	Candidates    CandidateGenerator
	Collaborative Scorer
	Content       Scorer
	Catalog       ItemLookup
}

// Engine fuses the collaborative and content signals into one ranked list.
// It holds no mutable state on the scoring path and is safe for
// concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger

	candidates    CandidateGenerator
	collaborative Scorer
	content       Scorer
	catalog       ItemLookup

	requestCount  atomic.Int64
	degradedCount atomic.Int64
	errorCount    atomic.Int64
}

// Stats is a snapshot of engine counters.
type Stats struct {
	Requests int64 `json:"requests"`
	Degraded int64 `json:"degraded"`
	Errors   int64 `json:"errors"`
}

// NewEngine creates a recommendation engine. Every dependency is required;
// a missing one is reported as ErrMissingArtifact.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, deps Dependencies, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	switch {
	case deps.Candidates == nil:
		return nil, NewError(KindMissingArtifact, "new engine", errors.New("candidate generator is nil"))
	case deps.Collaborative == nil:
		return nil, NewError(KindMissingArtifact, "new engine", errors.New("collaborative scorer is nil"))
	case deps.Content == nil:
		return nil, NewError(KindMissingArtifact, "new engine", errors.New("content scorer is nil"))
	case deps.Catalog == nil:
		return nil, NewError(KindMissingArtifact, "new engine", errors.New("catalog is nil"))
	}

	e := &Engine{
		config:        cfg,
		logger:        logger.With().Str("component", "recommend").Logger(),
		candidates:    deps.Candidates,
		collaborative: deps.Collaborative,
		content:       deps.Content,
		catalog:       deps.Catalog,
	}
	e.logger.Info().
		Float64("alpha", cfg.Weights.Content).
		Float64("beta", cfg.Weights.Collaborative).
		Float64("gamma", cfg.Weights.Quality).
		Float64("weight_sum", cfg.Weights.Sum()).
		Int("pool_size", cfg.Limits.PoolSize).
		Msg("Recommendation engine ready")
	return e, nil
}

// Config returns the engine configuration. Callers must not modify it.
func (e *Engine) Config() *Config {
	return e.config
}

// Stats returns a snapshot of the engine counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Requests: e.requestCount.Load(),
		Degraded: e.degradedCount.Load(),
		Errors:   e.errorCount.Load(),
	}
}

// Recommend generates ranked recommendations for a user.
//
// Candidates are scored by both signals in parallel, each signal is
// min-max normalized over the pool, fused, stably sorted by final score
// and truncated to the request limit. An unavailable ratings store
// degrades the content signal to zeros instead of failing the request.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	e.requestCount.Add(1)

	req = e.prepareRequest(req)
	weights := e.config.Weights
	if req.Weights != nil {
		weights = *req.Weights
	}
	logger := e.createRequestLogger(req)
	logger.Debug().Msg("processing recommendation request")

	set, err := e.candidates.Generate(ctx, req.UserID, e.config.Limits.PoolSize)
	if err != nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("generate candidates: %w", err)
	}
	pool := dedupe(set.Items)

	if len(pool) == 0 {
		logger.Debug().Str("path", set.Path.String()).Msg("no candidates available")
		return e.buildResponse(req, nil, set.Path, 0, false, start), nil
	}

	collab, content, degraded, err := e.scoreSignals(ctx, req, pool, logger)
	if err != nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("score candidates: %w", err)
	}
	if degraded {
		e.degradedCount.Add(1)
	}

	ranked := e.fuse(pool, collab, content, weights)
	sortByFinalScore(ranked)
	if len(ranked) > req.Limit {
		ranked = ranked[:req.Limit]
	}

	resp := e.buildResponse(req, ranked, set.Path, len(pool), degraded, start)

	logger.Debug().
		Str("path", set.Path.String()).
		Int("candidates", len(pool)).
		Int("returned", len(ranked)).
		Bool("degraded", degraded).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")

	return resp, nil
}

// prepareRequest applies defaults and generates a request ID if needed.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(req Request) Request {
	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}

	if req.Limit <= 0 {
		req.Limit = e.config.Limits.DefaultLimit
	}
	if req.Limit > e.config.Limits.MaxLimit {
		req.Limit = e.config.Limits.MaxLimit
	}

	return req
}

// createRequestLogger creates a logger with request context.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) createRequestLogger(req Request) zerolog.Logger {
	return e.logger.With().
		Str("request_id", req.RequestID).
		Int("user_id", req.UserID).
		Int("limit", req.Limit).
		Logger()
}

// scoreSignals runs both scorers concurrently. A content error wrapping
// ErrRatingsStoreUnavailable is downgraded to an all-zero content signal.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) scoreSignals(ctx context.Context, req Request, pool []int, logger zerolog.Logger) (collab, content map[int]float64, degraded bool, err error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		scores, scoreErr := e.collaborative.Score(gctx, req.UserID, pool)
		if scoreErr != nil {
			return fmt.Errorf("%s: %w", e.collaborative.Name(), scoreErr)
		}
		collab = scores
		return nil
	})

	g.Go(func() error {
		scores, scoreErr := e.content.Score(gctx, req.UserID, pool)
		if scoreErr != nil {
			if !errors.Is(scoreErr, ErrRatingsStoreUnavailable) {
				return fmt.Errorf("%s: %w", e.content.Name(), scoreErr)
			}
			logger.Warn().Err(scoreErr).Msg("ratings store unavailable, content signal degraded")
			degraded = true
			scores = ZeroScores(pool)
		}
		content = scores
		return nil
	})

	if waitErr := g.Wait(); waitErr != nil {
		return nil, nil, false, waitErr
	}
	return collab, content, degraded, nil
}

// fuse builds one scored candidate per pool entry in pool order.
//
//nolint:gocritic // hugeParam: weights is a small value type
func (e *Engine) fuse(pool []int, collab, content map[int]float64, weights Weights) []ScoredCandidate {
	collabNorm := Normalize(collab)
	contentNorm := Normalize(content)

	ranked := make([]ScoredCandidate, 0, len(pool))
	for _, id := range pool {
		item, _ := e.catalog.Get(id)

		signals := Signals{
			Content:       contentNorm[id],
			Collaborative: collabNorm[id],
			Quality:       Quality(item.Rank),
			Exposure:      Exposure(item.Popularity),
		}
		hybrid, final := Fuse(signals, weights)

		ranked = append(ranked, ScoredCandidate{
			ItemID:     id,
			Title:      item.Title,
			FinalScore: final,
			Metrics: Metrics{
				Content:       signals.Content,
				Collaborative: signals.Collaborative,
				Quality:       signals.Quality,
				Exposure:      signals.Exposure,
			},
			RawContent:       content[id],
			RawCollaborative: collab[id],
			Hybrid:           hybrid,
		})
	}
	return ranked
}

// buildResponse constructs the final response.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) buildResponse(req Request, ranked []ScoredCandidate, path CandidatePath, poolSize int, degraded bool, start time.Time) *Response {
	if ranked == nil {
		ranked = []ScoredCandidate{}
	}
	return &Response{
		UserID:          req.UserID,
		NumResults:      len(ranked),
		Recommendations: ranked,
		Metadata: ResponseMetadata{
			RequestID: req.RequestID,
			Path:      path,
			PoolSize:  poolSize,
			Degraded:  degraded,
			LatencyMS: time.Since(start).Milliseconds(),
			Timestamp: time.Now(),
		},
	}
}

// sortByFinalScore sorts descending by final score. Ties keep pool order.
func sortByFinalScore(ranked []ScoredCandidate) {
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FinalScore > ranked[j].FinalScore
	})
}

// dedupe drops repeated IDs, keeping first occurrences in order.
func dedupe(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
