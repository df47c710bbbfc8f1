// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

// Package recommend implements the hybrid anime recommendation engine.
//
// # Architecture
//
// The engine fuses two independently trained signals into one ranked list:
//
//   - Collaborative: dot product of ALS user and item latent factors
//   - Content: cosine similarity between a candidate's TF-IDF vector and
//     the centroid of the vectors of items the user liked
//
// A request flows through:
//
//	user id -> CandidateGenerator -> pool
//	        -> {collaborative, content} scorers (parallel)
//	        -> Normalize (per signal, min-max over the pool)
//	        -> Fuse (weights, quality, exposure)
//	        -> stable sort descending -> truncate to limit
//
// # Fusion
//
//	hybrid = α·content + β·collaborative + γ·quality
//	final  = hybrid · (1 + exposure)
//
// where quality = 1/(rank+1) and exposure = 1/(popularity+1), both 0 when
// the catalog field is absent. Default weights are α=0.6, β=0.25, γ=0.15.
//
// # Cold Start
//
// Users unknown to the collaborative model receive a popularity-ordered
// candidate pool and a zero collaborative signal. Users with no liked items
// receive a zero content signal. Normalizing an all-zero signal yields 0.5
// everywhere, so an absent signal never reorders candidates.
//
// # Degradation
//
// If the ratings store cannot be reached the content signal degrades to
// zeros and the response is flagged as degraded. Other scorer failures
// fail the request.
//
// # Usage
//
//	engine, err := recommend.NewEngine(cfg, recommend.Dependencies{
//	    Candidates:    algorithms.NewCandidateGenerator(als, catalog),
//	    Collaborative: algorithms.NewCollaborativeScorer(als),
//	    Content:       algorithms.NewContentScorer(model, store, threshold, logger),
//	    Catalog:       catalog,
//	}, logger)
//
//	resp, err := engine.Recommend(ctx, recommend.Request{UserID: 42, Limit: 10})
//
// # Thread Safety
//
// Artifacts are immutable after load and the engine keeps no per-request
// shared state, so Recommend may be called concurrently without locks.
package recommend
