// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package evaluate

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/animerec/internal/config"
	"github.com/tomtom215/animerec/internal/recommend"
)

// Config controls sampling and metrics.
type Config struct {
	// Users is the maximum number of sampled users.
	Users int

	// K is the cutoff for precision and the list length requested.
	K int

	// RelevanceThreshold is the minimum rating counted as relevant.
	RelevanceThreshold float64

	// Seed makes the user sample reproducible.
	Seed int64
}

// DefaultConfig returns the standard evaluation settings.
func DefaultConfig() Config {
	return Config{Users: 100, K: 10, RelevanceThreshold: 8.0, Seed: 42}
}

// ConfigFrom maps the evaluate configuration section.
func ConfigFrom(cfg config.EvaluateConfig) Config {
	return Config{
		Users:              cfg.Users,
		K:                  cfg.K,
		RelevanceThreshold: cfg.RelevanceThreshold,
		Seed:               cfg.Seed,
	}
}

// ModelResult holds the metrics of one model.
type ModelResult struct {
	Model        string  `json:"model"`
	PrecisionAtK float64 `json:"precision_at_k"`
	Coverage     float64 `json:"coverage"`
	AvgRankScore float64 `json:"avg_rank_score"`

	// Evaluated is the number of users with a non-empty list.
	Evaluated int `json:"evaluated_users"`

	// Failed counts users whose call returned an error.
	Failed int `json:"failed_users"`
}

// Report is the outcome of a run.
type Report struct {
	GeneratedAt        time.Time     `json:"generated_at"`
	K                  int           `json:"k"`
	SampledUsers       int           `json:"sampled_users"`
	UsersWithRelevant  int           `json:"users_with_relevant"`
	RelevanceThreshold float64       `json:"relevance_threshold"`
	CatalogSize        int           `json:"catalog_size"`
	Results            []ModelResult `json:"results"`
}

// Harness runs every model over the same user sample.
type Harness struct {
	cfg     Config
	catalog recommend.ItemLookup
	size    int
	logger  zerolog.Logger
}

// NewHarness creates a harness. catalogSize is the denominator for
// coverage.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHarness(cfg Config, catalog recommend.ItemLookup, catalogSize int, logger zerolog.Logger) *Harness {
	def := DefaultConfig()
	if cfg.Users <= 0 {
		cfg.Users = def.Users
	}
	if cfg.K <= 0 {
		cfg.K = def.K
	}
	return &Harness{
		cfg:     cfg,
		catalog: catalog,
		size:    catalogSize,
		logger:  logger.With().Str("component", "evaluate").Logger(),
	}
}

// RelevantItems groups the items each user rated at or above threshold.
func RelevantItems(ratings []recommend.Rating, threshold float64) map[int]map[int]struct{} {
	out := make(map[int]map[int]struct{})
	for _, r := range ratings {
		if r.Value < threshold {
			continue
		}
		set, ok := out[r.UserID]
		if !ok {
			set = make(map[int]struct{})
			out[r.UserID] = set
		}
		set[r.ItemID] = struct{}{}
	}
	return out
}

// UserIDs returns every user that rated anything, ascending.
func UserIDs(ratings []recommend.Rating) []int {
	users := make([]int, 0, len(ratings))
	for _, r := range ratings {
		users = append(users, r.UserID)
	}
	slices.Sort(users)
	return slices.Compact(users)
}

// SampleUsers picks up to n of users, reproducibly for a seed. users is
// not modified; the result is sorted ascending.
func SampleUsers(users []int, n int, seed int64) []int {
	pool := slices.Clone(users)
	slices.Sort(pool)

	rng := rand.New(rand.NewPCG(uint64(seed), 0)) //nolint:gosec // G404: sampling, not security
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	if len(pool) > n {
		pool = pool[:n]
	}
	slices.Sort(pool)
	return pool
}

// Run evaluates models in order over ratings. Users are sampled from
// everyone who rated something; sampled users without a relevant item
// are skipped, so each model is scored on at most UsersWithRelevant users.
func (h *Harness) Run(ctx context.Context, ratings []recommend.Rating, models ...Recommender) (*Report, error) {
	relevant := RelevantItems(ratings, h.cfg.RelevanceThreshold)
	users := SampleUsers(UserIDs(ratings), h.cfg.Users, h.cfg.Seed)

	withRelevant := 0
	for _, u := range users {
		if len(relevant[u]) > 0 {
			withRelevant++
		}
	}
	if withRelevant == 0 {
		return nil, fmt.Errorf("no sampled users with ratings >= %.1f", h.cfg.RelevanceThreshold)
	}

	h.logger.Info().
		Int("users", len(users)).
		Int("with_relevant", withRelevant).
		Int("k", h.cfg.K).
		Int("models", len(models)).
		Msg("Starting evaluation")

	report := &Report{
		GeneratedAt:        time.Now().UTC(),
		K:                  h.cfg.K,
		SampledUsers:       len(users),
		UsersWithRelevant:  withRelevant,
		RelevanceThreshold: h.cfg.RelevanceThreshold,
		CatalogSize:        h.size,
		Results:            make([]ModelResult, 0, len(models)),
	}

	for _, model := range models {
		result, err := h.evaluateModel(ctx, model, users, relevant)
		if err != nil {
			return nil, err
		}
		report.Results = append(report.Results, result)
	}
	return report, nil
}

func (h *Harness) evaluateModel(ctx context.Context, model Recommender, users []int, relevant map[int]map[int]struct{}) (ModelResult, error) {
	start := time.Now()
	all := make(map[int][]int, len(users))
	precision := make([]float64, 0, len(users))
	rankScores := make([]float64, 0, len(users))
	failed := 0

	for _, userID := range users {
		if err := ctx.Err(); err != nil {
			return ModelResult{}, err
		}
		if len(relevant[userID]) == 0 {
			continue
		}

		recs, err := model.Recommend(ctx, userID, h.cfg.K)
		if err != nil {
			failed++
			h.logger.Warn().Err(err).Str("model", model.Name()).Int("user_id", userID).Msg("Recommendation failed")
			continue
		}
		if len(recs) == 0 {
			continue
		}

		all[userID] = recs
		precision = append(precision, PrecisionAtK(recs, relevant[userID], h.cfg.K))
		rankScores = append(rankScores, AvgRankScore(recs, h.catalog))
	}

	result := ModelResult{
		Model:        model.Name(),
		PrecisionAtK: mean(precision),
		Coverage:     Coverage(all, h.size),
		AvgRankScore: mean(rankScores),
		Evaluated:    len(all),
		Failed:       failed,
	}
	h.logger.Info().
		Str("model", result.Model).
		Float64("precision_at_k", result.PrecisionAtK).
		Float64("coverage", result.Coverage).
		Float64("avg_rank_score", result.AvgRankScore).
		Int("evaluated", result.Evaluated).
		Dur("duration", time.Since(start)).
		Msg("Model evaluated")
	return result, nil
}

// ThrottledSource rate limits liked-items lookups.
type ThrottledSource struct {
	source  recommend.LikedItemsSource
	limiter *rate.Limiter
}

// NewThrottledSource allows qps lookups per second with a burst of one.
// A non-positive qps disables throttling.
func NewThrottledSource(source recommend.LikedItemsSource, qps float64) *ThrottledSource {
	limit := rate.Inf
	if qps > 0 {
		limit = rate.Limit(qps)
	}
	return &ThrottledSource{source: source, limiter: rate.NewLimiter(limit, 1)}
}

// LikedItems waits for a token, then queries the wrapped source.
func (s *ThrottledSource) LikedItems(ctx context.Context, userID int, threshold float64) ([]int, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.source.LikedItems(ctx, userID, threshold)
}
