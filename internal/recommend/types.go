// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package recommend

import (
	"context"
	"time"
)

// Item is a catalog record. Items are immutable once loaded and owned by
// the catalog snapshot the engine is constructed with.
type Item struct {
	// ID is the stable anime identifier.
	ID int `json:"id"`

	// Title is the display title.
	Title string `json:"title"`

	// Synopsis is the free-text description fed to the content model.
	Synopsis string `json:"synopsis,omitempty"`

	// Rank is the catalog score rank (1 = best). Zero means absent.
	Rank int `json:"rank,omitempty"`

	// Popularity is the catalog popularity rank (1 = most members).
	// Zero means absent.
	Popularity int `json:"popularity,omitempty"`
}

// Rating is an explicit user rating on the 1-10 scale.
type Rating struct {
	UserID int     `json:"user_id"`
	ItemID int     `json:"anime_id"`
	Value  float64 `json:"rating"`
}

// CandidatePath identifies how a candidate pool was produced.
type CandidatePath int

const (
	// PathModel means the pool came from the collaborative model.
	PathModel CandidatePath = iota
	// PathColdStart means the user was unknown and the pool came from
	// the popularity fallback.
	PathColdStart
)

// String returns the metrics label for the path.
func (p CandidatePath) String() string {
	switch p {
	case PathModel:
		return "model"
	case PathColdStart:
		return "cold_start"
	default:
		return "unknown"
	}
}

// CandidateSet is the bounded, deduplicated pool of item IDs considered
// for a single request, in generation order.
type CandidateSet struct {
	Items []int
	Path  CandidatePath
}

// Metrics is the per-signal breakdown returned for every recommendation.
type Metrics struct {
	Content       float64 `json:"content"`
	Collaborative float64 `json:"collaborative"`
	Quality       float64 `json:"quality"`
	Exposure      float64 `json:"exposure"`
}

// ScoredCandidate is a transient, per-request scored item. It is never
// persisted.
type ScoredCandidate struct {
	// ItemID is the anime identifier.
	ItemID int `json:"item_id"`

	// Title is copied from the catalog for display.
	Title string `json:"title"`

	// FinalScore is the fused score after the exposure adjustment.
	// Only meaningful in relative order.
	FinalScore float64 `json:"final_score"`

	// Metrics holds normalized content and collaborative scores plus the
	// quality and exposure signals.
	Metrics Metrics `json:"metrics"`

	// RawContent is the un-normalized centroid similarity.
	RawContent float64 `json:"-"`

	// RawCollaborative is the un-normalized latent-factor dot product.
	RawCollaborative float64 `json:"-"`

	// Hybrid is the weighted sum before the exposure adjustment.
	Hybrid float64 `json:"-"`
}

// Request parameters for a recommendation call.
type Request struct {
	// UserID is the user to recommend for. Unknown users take the
	// cold-start path.
	UserID int `json:"user_id"`

	// Limit is the maximum number of results. Zero or negative uses the
	// configured default; values above the configured maximum are capped.
	Limit int `json:"limit,omitempty"`

	// Weights overrides the configured fusion weights when non-nil.
	Weights *Weights `json:"weights,omitempty"`

	// RequestID for tracing. Generated by the API layer.
	RequestID string `json:"request_id,omitempty"`
}

// Response contains ranked recommendations and request metadata.
type Response struct {
	// UserID echoes the requested user.
	UserID int `json:"user_id"`

	// NumResults is len(Recommendations).
	NumResults int `json:"num_results"`

	// Recommendations sorted by non-increasing FinalScore.
	Recommendations []ScoredCandidate `json:"recommendations"`

	// Metadata describes how the response was produced.
	Metadata ResponseMetadata `json:"-"`
}

// ResponseMetadata carries diagnostics that are logged and exported as
// metrics but not part of the public payload.
type ResponseMetadata struct {
	RequestID string
	Path      CandidatePath
	PoolSize  int

	// Degraded is set when the content signal fell back to zeros because
	// the ratings store was unavailable.
	Degraded bool

	LatencyMS int64
	Timestamp time.Time
}

// CandidateGenerator produces the candidate pool for a user.
type CandidateGenerator interface {
	// Generate returns at most count deduplicated item IDs.
	Generate(ctx context.Context, userID, count int) (CandidateSet, error)
}

// Scorer scores a fixed candidate pool for one signal.
type Scorer interface {
	// Name identifies the signal in logs.
	Name() string

	// Score returns exactly one entry per candidate. Candidates the signal
	// knows nothing about score 0.
	Score(ctx context.Context, userID int, candidates []int) (map[int]float64, error)
}

// ItemLookup resolves catalog metadata for scored candidates.
type ItemLookup interface {
	Get(id int) (Item, bool)
}

// LikedItemsSource returns the items a user rated at or above threshold.
type LikedItemsSource interface {
	LikedItems(ctx context.Context, userID int, threshold float64) ([]int, error)
}

// ZeroScores returns a score of 0 for every candidate.
func ZeroScores(candidates []int) map[int]float64 {
	scores := make(map[int]float64, len(candidates))
	for _, id := range candidates {
		scores[id] = 0
	}
	return scores
}
