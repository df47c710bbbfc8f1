// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

// Package training builds the model bundle offline.
//
// A run has five stages, each timed in the training_stage_duration_seconds
// histogram:
//
//  1. ratings: read every rating from the ratings store
//  2. als: fit implicit ALS on ratings whose item is in the catalog
//  3. tfidf: fit the vectorizer on catalog synopses
//  4. save: persist {ALS state, vectorizer state, catalog} as the next
//     bundle version
//  5. prune: delete all but the newest Keep versions
//
// The server never trains; it loads the newest bundle at startup.
package training
