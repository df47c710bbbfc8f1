// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

// Package catalog loads and holds the anime catalog snapshot.
//
// The processed catalog is a CSV with at least the columns anime_id,
// title, synopsis, rank and popularity; other columns are ignored. It is
// read through DuckDB's read_csv_auto so type sniffing, quoting and
// multi-line synopses are handled by the database engine. Empty rank or
// popularity cells become 0, which the rest of the service treats as
// absent.
//
// A Catalog is immutable after construction and safe for concurrent use.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/animerec/internal/logging"
	"github.com/tomtom215/animerec/internal/recommend"
	"github.com/tomtom215/animerec/internal/recommend/algorithms"
)

// ErrEmptyCatalog is returned when a source yields no items.
var ErrEmptyCatalog = errors.New("catalog is empty")

// Catalog is an immutable, deduplicated item snapshot.
type Catalog struct {
	items      []recommend.Item
	index      map[int]int
	popularity *algorithms.Popularity
}

// New builds a catalog from items. Duplicate IDs keep the first
// occurrence.
//
//nolint:gocritic // rangeValCopy: Item is small
func New(items []recommend.Item) *Catalog {
	c := &Catalog{
		items: make([]recommend.Item, 0, len(items)),
		index: make(map[int]int, len(items)),
	}
	for _, item := range items {
		if _, dup := c.index[item.ID]; dup {
			continue
		}
		c.index[item.ID] = len(c.items)
		c.items = append(c.items, item)
	}
	c.popularity = algorithms.NewPopularity(c.items)
	return c
}

// Get returns the item with the given ID.
func (c *Catalog) Get(id int) (recommend.Item, bool) {
	i, ok := c.index[id]
	if !ok {
		return recommend.Item{}, false
	}
	return c.items[i], true
}

// Items returns a copy of all items in catalog order.
func (c *Catalog) Items() []recommend.Item {
	out := make([]recommend.Item, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of items.
func (c *Catalog) Len() int {
	return len(c.items)
}

// Popularity returns the cold start ranking over the catalog.
func (c *Catalog) Popularity() *algorithms.Popularity {
	return c.popularity
}

// MostPopular returns up to n item IDs in ascending popularity order.
func (c *Catalog) MostPopular(n int) []int {
	return c.popularity.GetTopK(n)
}

// LoadCSV reads the processed catalog CSV at path.
func LoadCSV(ctx context.Context, path string) (*Catalog, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("catalog file: %w", err)
	}

	db, err := sql.Open("duckdb", ":memory:?autoinstall_known_extensions=false&autoload_known_extensions=false")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logging.Warn().Err(cerr).Msg("Failed to close catalog reader")
		}
	}()

	items, err := readItems(ctx, db, path)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyCatalog)
	}

	c := New(items)
	if dups := len(items) - c.Len(); dups > 0 {
		logging.Warn().Int("duplicates", dups).Str("path", path).Msg("Dropped duplicate catalog ids")
	}
	logging.Info().Int("items", c.Len()).Str("path", path).Msg("Catalog loaded")
	return c, nil
}

// catalogQuery selects the columns the service needs. The path is a
// string literal because table functions do not take bind parameters.
const catalogQuery = `
SELECT
	CAST(anime_id AS BIGINT),
	COALESCE(CAST(title AS VARCHAR), ''),
	COALESCE(CAST(synopsis AS VARCHAR), ''),
	TRY_CAST("rank" AS BIGINT),
	TRY_CAST(popularity AS BIGINT)
FROM read_csv_auto(%s, header = true)
WHERE anime_id IS NOT NULL`

func readItems(ctx context.Context, db *sql.DB, path string) ([]recommend.Item, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(catalogQuery, quoteLiteral(path)))
	if err != nil {
		return nil, fmt.Errorf("query catalog csv: %w", err)
	}
	defer func() { _ = rows.Close() }() //nolint:errcheck // rows.Err checked below

	var items []recommend.Item
	for rows.Next() {
		var (
			id               int64
			title, synopsis  string
			rank, popularity sql.NullInt64
		)
		if err := rows.Scan(&id, &title, &synopsis, &rank, &popularity); err != nil {
			return nil, fmt.Errorf("scan catalog row: %w", err)
		}
		items = append(items, recommend.Item{
			ID:         int(id),
			Title:      title,
			Synopsis:   synopsis,
			Rank:       int(rank.Int64),
			Popularity: int(popularity.Int64),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog rows: %w", err)
	}
	return items, nil
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
