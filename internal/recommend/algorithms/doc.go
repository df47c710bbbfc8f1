// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

// Package algorithms implements the models and signal scorers behind the
// hybrid engine.
//
// # Models
//
//   - ALS: implicit Alternating Least Squares over explicit ratings
//     (confidence 1 + alpha*rating/10), with the per-user interaction rows
//     kept so recommendations skip items already rated
//   - Vectorizer: TF-IDF over synopses with smoothed idf and L2
//     normalization; text is NFKC normalized, case folded and accent
//     stripped before tokenizing
//   - ContentModel: the per-item TF-IDF matrix, built once per process
//   - Popularity: ascending popularity ranking for cold start
//
// # Serving Components
//
// These implement the interfaces in package recommend:
//
//   - CandidateGenerator: ALS top-N, popularity fallback for unknown users
//   - CollaborativeScorer: latent-factor dot product
//   - ContentScorer: cosine similarity to the centroid of liked items
//
// # Persistence
//
// ALS and Vectorizer export State values that package storage persists
// as part of a bundle. NewALSFromState and NewVectorizerFromState restore
// them and reject inconsistent indices.
//
// # Thread Safety
//
// Training takes an exclusive lock. Restored models are read-only and may
// be scored concurrently without locking.
package algorithms
