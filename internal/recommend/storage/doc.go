// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

// Package storage persists trained recommendation artifacts.
//
// # Storage Format
//
// Each artifact version is one file:
//
//	filename: {name}_v{version}.gob.gz
//
//	structure:
//	  - Metadata (name, version, timestamps, counts, checksum)
//	  - CompressedData (gzip-compressed gob payload)
//
// The checksum is the SHA-256 of the uncompressed payload and is verified
// on every load. Files are written under a temporary name and renamed, so
// a reader never observes a partial file.
//
// # Bundles
//
// The serving path loads a single Bundle holding the ALS state, the TF-IDF
// vectorizer state and the catalog snapshot:
//
//	store, err := storage.NewStore("/data/models")
//	meta, err := store.SaveBundle(ctx, storage.DefaultBundleName, bundle, storage.Metadata{})
//	bundle, meta, err := store.LoadBundle(ctx, storage.DefaultBundleName, 0) // 0 = latest
//
// Prune keeps the newest N versions of a name.
//
// # Thread Safety
//
// A Store is safe for concurrent use. Writes take an exclusive lock.
package storage
