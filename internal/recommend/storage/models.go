// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

const fileExt = ".gob.gz"

// ErrNotFound is returned when no stored version matches a name.
var ErrNotFound = errors.New("artifact not found")

// ErrChecksumMismatch is returned when decompressed data does not match the
// checksum recorded at save time.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// Metadata describes one stored artifact version.
type Metadata struct {
	// Name is the artifact name (e.g. "bundle").
	Name string `json:"name"`

	// Version is monotonically increasing per name.
	Version int `json:"version"`

	TrainedAt time.Time `json:"trained_at"`
	SavedAt   time.Time `json:"saved_at"`

	RatingCount int `json:"rating_count"`
	ItemCount   int `json:"item_count"`
	UserCount   int `json:"user_count"`

	// Checksum is the hex SHA-256 of the uncompressed gob payload.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed payload size.
	SizeBytes int64 `json:"size_bytes"`

	TrainingDurationMS int64 `json:"training_duration_ms"`
}

// Store persists gob encoded, gzip compressed artifacts in a directory as
// {name}_v{version}.gob.gz files.
type Store struct {
	baseDir string
	mu      sync.RWMutex

	// latest version per name
	versions map[string]int
}

// NewStore opens a store rooted at baseDir, creating the directory if
// needed and indexing any existing files.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for model storage
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	s := &Store{
		baseDir:  baseDir,
		versions: make(map[string]int),
	}
	if err := s.scan(); err != nil {
		return nil, fmt.Errorf("scan existing artifacts: %w", err)
	}
	return s, nil
}

// Dir returns the store's directory.
func (s *Store) Dir() string {
	return s.baseDir
}

func (s *Store) scan() error {
	found, err := s.listVersions()
	if err != nil {
		return err
	}
	for name, versions := range found {
		s.versions[name] = versions[0]
	}
	return nil
}

// listVersions maps each name to its versions, newest first.
func (s *Store) listVersions() (map[string][]int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}

	found := make(map[string][]int)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, version, ok := parseFilename(entry.Name())
		if !ok {
			continue
		}
		found[name] = append(found[name], version)
	}
	for _, versions := range found {
		sort.Sort(sort.Reverse(sort.IntSlice(versions)))
	}
	return found, nil
}

// parseFilename splits "bundle_v3.gob.gz" into ("bundle", 3).
func parseFilename(filename string) (name string, version int, ok bool) {
	base, hasExt := strings.CutSuffix(filename, fileExt)
	if !hasExt {
		return "", 0, false
	}
	idx := strings.LastIndex(base, "_v")
	if idx <= 0 {
		return "", 0, false
	}
	version, err := strconv.Atoi(base[idx+2:])
	if err != nil || version <= 0 {
		return "", 0, false
	}
	return base[:idx], version, true
}

// storedFile is the on-disk layout.
type storedFile struct {
	Metadata       Metadata
	CompressedData []byte
}

// Save encodes data and writes it as the given version. A version of 0
// means one past the latest stored version. The file is written to a
// temporary name and renamed into place.
//
//nolint:gocritic // meta passed by value is acceptable for this write operation
func (s *Store) Save(ctx context.Context, name string, version int, data any, meta Metadata) (Metadata, error) {
	if err := ctx.Err(); err != nil {
		return Metadata{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if version == 0 {
		version = s.versions[name] + 1
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(data); err != nil {
		return Metadata{}, fmt.Errorf("encode artifact: %w", err)
	}
	raw := buf.Bytes()
	sum := sha256.Sum256(raw)

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw); err != nil {
		return Metadata{}, fmt.Errorf("compress artifact: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return Metadata{}, fmt.Errorf("finalize compression: %w", err)
	}

	meta.Name = name
	meta.Version = version
	meta.Checksum = hex.EncodeToString(sum[:])
	meta.SizeBytes = int64(compressed.Len())
	meta.SavedAt = time.Now().UTC()

	path := s.path(name, version)
	tmp := path + ".tmp"
	f, err := os.Create(tmp) //nolint:gosec // path is built from the store directory and a trusted name
	if err != nil {
		return Metadata{}, fmt.Errorf("create artifact file: %w", err)
	}
	encErr := gob.NewEncoder(f).Encode(storedFile{Metadata: meta, CompressedData: compressed.Bytes()})
	closeErr := f.Close()
	if encErr != nil || closeErr != nil {
		_ = os.Remove(tmp) //nolint:errcheck // best-effort cleanup
		return Metadata{}, fmt.Errorf("write artifact file: %w", errors.Join(encErr, closeErr))
	}
	if err := os.Rename(tmp, path); err != nil {
		return Metadata{}, fmt.Errorf("publish artifact file: %w", err)
	}

	if version > s.versions[name] {
		s.versions[name] = version
	}
	return meta, nil
}

// Load decodes a stored version into target. A version of 0 loads the
// latest. Missing files return ErrNotFound; checksum failures return
// ErrChecksumMismatch.
func (s *Store) Load(ctx context.Context, name string, version int, target any) (*Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if version == 0 {
		latest, ok := s.versions[name]
		if !ok {
			return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		version = latest
	}

	f, err := os.Open(s.path(name, version)) //nolint:gosec // path is built from the store directory and a trusted name
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s v%d: %w", name, version, ErrNotFound)
		}
		return nil, fmt.Errorf("open artifact file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return nil, fmt.Errorf("read artifact file: %w", err)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, fmt.Errorf("decompress artifact: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("read decompressed data: %w", err)
	}

	sum := sha256.Sum256(raw)
	if got := hex.EncodeToString(sum[:]); got != sf.Metadata.Checksum {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrChecksumMismatch, sf.Metadata.Checksum, got)
	}

	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(target); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	return &sf.Metadata, nil
}

// LatestVersion returns the newest stored version of name.
func (s *Store) LatestVersion(name string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	version, ok := s.versions[name]
	return version, ok
}

// List returns the metadata of every stored version, sorted by name and
// then newest first. Unreadable files are skipped.
func (s *Store) List(ctx context.Context) ([]Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found, err := s.listVersions()
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	names := make([]string, 0, len(found))
	for name := range found {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []Metadata
	for _, name := range names {
		for _, version := range found[name] {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			meta, err := s.readMetadata(name, version)
			if err != nil {
				continue
			}
			out = append(out, meta)
		}
	}
	return out, nil
}

func (s *Store) readMetadata(name string, version int) (Metadata, error) {
	f, err := os.Open(s.path(name, version)) //nolint:gosec // path is built from the store directory and a trusted name
	if err != nil {
		return Metadata{}, err
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // read-only

	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return Metadata{}, err
	}
	return sf.Metadata, nil
}

// Delete removes one stored version.
func (s *Store) Delete(ctx context.Context, name string, version int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(name, version)); err != nil {
		return fmt.Errorf("delete artifact: %w", err)
	}
	return s.refreshLatest(name)
}

// Prune keeps the newest keep versions of name and removes the rest. It
// returns how many files were removed.
func (s *Store) Prune(ctx context.Context, name string, keep int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keep < 1 {
		keep = 1
	}

	found, err := s.listVersions()
	if err != nil {
		return 0, fmt.Errorf("read directory: %w", err)
	}

	removed := 0
	versions := found[name]
	for i := keep; i < len(versions); i++ {
		if err := os.Remove(s.path(name, versions[i])); err != nil {
			return removed, fmt.Errorf("prune %s v%d: %w", name, versions[i], err)
		}
		removed++
	}
	return removed, s.refreshLatest(name)
}

func (s *Store) refreshLatest(name string) error {
	found, err := s.listVersions()
	if err != nil {
		return fmt.Errorf("read directory: %w", err)
	}
	if versions := found[name]; len(versions) > 0 {
		s.versions[name] = versions[0]
	} else {
		delete(s.versions, name)
	}
	return nil
}

func (s *Store) path(name string, version int) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s_v%d%s", name, version, fileExt))
}
