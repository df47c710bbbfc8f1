// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

// Package evaluate compares the collaborative, content and hybrid
// recommenders offline.
//
// For a seeded sample of users with at least one relevant item (rating at
// or above the relevance threshold, 8.0 by default) every model produces a
// top-k list (k = 10 by default). Three metrics are reported per model:
//
//   - Precision@k: hits in the top k divided by k, averaged over users
//   - Coverage: distinct recommended items divided by catalog size
//   - Avg Rank Score: mean quality 1/(rank+1) of recommended items, with
//     items missing from the catalog treated as rank 99999
//
// Users for whom a model returns nothing are skipped for that model. Calls
// that reach the ratings store are throttled with a token bucket so an
// evaluation run can target a production replica safely.
//
// Relevant items are not held out from training, so scores are optimistic.
package evaluate
