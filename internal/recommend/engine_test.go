// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
)

// mockGenerator implements CandidateGenerator for testing.
type mockGenerator struct {
	known     map[int][]int
	coldStart []int
	err       error
	gotCount  atomic.Int64
}

func (m *mockGenerator) Generate(ctx context.Context, userID, count int) (CandidateSet, error) {
	m.gotCount.Store(int64(count))
	if m.err != nil {
		return CandidateSet{}, m.err
	}
	if items, ok := m.known[userID]; ok {
		return CandidateSet{Items: truncate(items, count), Path: PathModel}, nil
	}
	return CandidateSet{Items: truncate(m.coldStart, count), Path: PathColdStart}, nil
}

func truncate(ids []int, n int) []int {
	if len(ids) > n {
		return ids[:n]
	}
	return ids
}

// mockScorer implements Scorer for testing.
type mockScorer struct {
	name   string
	scores map[int]map[int]float64
	err    error
	mu     sync.Mutex
	calls  int
}

func (m *mockScorer) Name() string { return m.name }

func (m *mockScorer) Score(ctx context.Context, userID int, candidates []int) (map[int]float64, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.err != nil {
		return ZeroScores(candidates), m.err
	}
	out := ZeroScores(candidates)
	for _, id := range candidates {
		if s, ok := m.scores[userID][id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

// mockCatalog implements ItemLookup for testing.
type mockCatalog map[int]Item

func (m mockCatalog) Get(id int) (Item, bool) {
	item, ok := m[id]
	return item, ok
}

func newCatalog(n int) mockCatalog {
	c := make(mockCatalog, n)
	for i := 1; i <= n; i++ {
		c[i] = Item{ID: i, Title: fmt.Sprintf("Anime %d", i)}
	}
	return c
}

func newTestEngine(t *testing.T, deps Dependencies) *Engine {
	t.Helper()
	engine, err := NewEngine(DefaultConfig(), deps, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return engine
}

func TestNewEngine(t *testing.T) {
	full := Dependencies{
		Candidates:    &mockGenerator{},
		Collaborative: &mockScorer{name: "collaborative"},
		Content:       &mockScorer{name: "content"},
		Catalog:       newCatalog(1),
	}

	t.Run("nil config uses defaults", func(t *testing.T) {
		engine, err := NewEngine(nil, full, zerolog.Nop())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if engine.Config().Limits.PoolSize != DefaultPoolSize {
			t.Errorf("PoolSize = %d", engine.Config().Limits.PoolSize)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Limits.PoolSize = 0
		if _, err := NewEngine(cfg, full, zerolog.Nop()); err == nil {
			t.Error("expected error for invalid config")
		}
	})

	missing := []struct {
		name   string
		modify func(*Dependencies)
	}{
		{"candidates", func(d *Dependencies) { d.Candidates = nil }},
		{"collaborative", func(d *Dependencies) { d.Collaborative = nil }},
		{"content", func(d *Dependencies) { d.Content = nil }},
		{"catalog", func(d *Dependencies) { d.Catalog = nil }},
	}
	for _, tt := range missing {
		t.Run("missing "+tt.name, func(t *testing.T) {
			deps := full
			tt.modify(&deps)
			_, err := NewEngine(nil, deps, zerolog.Nop())
			if !errors.Is(err, ErrMissingArtifact) {
				t.Errorf("err = %v, want ErrMissingArtifact", err)
			}
		})
	}
}

func TestEngine_Recommend_LimitAndOrder(t *testing.T) {
	pool := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	collab := map[int]float64{}
	content := map[int]float64{}
	for i, id := range pool {
		collab[id] = float64(i)
		content[id] = float64(len(pool) - i)
	}

	engine := newTestEngine(t, Dependencies{
		Candidates:    &mockGenerator{known: map[int][]int{42: pool}},
		Collaborative: &mockScorer{name: "collaborative", scores: map[int]map[int]float64{42: collab}},
		Content:       &mockScorer{name: "content", scores: map[int]map[int]float64{42: content}},
		Catalog:       newCatalog(10),
	})

	resp, err := engine.Recommend(context.Background(), Request{UserID: 42, Limit: 5})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	if len(resp.Recommendations) > 5 {
		t.Fatalf("got %d results, want at most 5", len(resp.Recommendations))
	}
	if resp.NumResults != len(resp.Recommendations) {
		t.Errorf("NumResults = %d, len = %d", resp.NumResults, len(resp.Recommendations))
	}
	for i := 1; i < len(resp.Recommendations); i++ {
		if resp.Recommendations[i].FinalScore > resp.Recommendations[i-1].FinalScore {
			t.Errorf("results not sorted at %d: %v > %v", i, resp.Recommendations[i].FinalScore, resp.Recommendations[i-1].FinalScore)
		}
	}
	// Content weight dominates, so the highest raw content score wins.
	if resp.Recommendations[0].ItemID != 1 {
		t.Errorf("top item = %d, want 1", resp.Recommendations[0].ItemID)
	}
	if resp.Metadata.Path != PathModel {
		t.Errorf("Path = %v, want model", resp.Metadata.Path)
	}
	if resp.Metadata.PoolSize != 10 {
		t.Errorf("PoolSize = %d, want 10", resp.Metadata.PoolSize)
	}
	if resp.Metadata.RequestID == "" {
		t.Error("RequestID not generated")
	}
}

func TestEngine_Recommend_Limits(t *testing.T) {
	pool := make([]int, 60)
	for i := range pool {
		pool[i] = i + 1
	}

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"zero uses default", 0, DefaultLimit},
		{"negative uses default", -4, DefaultLimit},
		{"explicit", 3, 3},
		{"capped at max", 500, MaxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &mockGenerator{coldStart: pool}
			engine := newTestEngine(t, Dependencies{
				Candidates:    gen,
				Collaborative: &mockScorer{name: "collaborative"},
				Content:       &mockScorer{name: "content"},
				Catalog:       newCatalog(60),
			})

			resp, err := engine.Recommend(context.Background(), Request{UserID: 1, Limit: tt.limit})
			if err != nil {
				t.Fatalf("Recommend: %v", err)
			}
			if len(resp.Recommendations) != tt.want {
				t.Errorf("got %d results, want %d", len(resp.Recommendations), tt.want)
			}
			if gen.gotCount.Load() != DefaultPoolSize {
				t.Errorf("pool size requested = %d, want %d", gen.gotCount.Load(), DefaultPoolSize)
			}
		})
	}
}

func TestEngine_Recommend_ColdStartKeepsPopularityOrder(t *testing.T) {
	catalog := mockCatalog{
		10: {ID: 10, Title: "A", Popularity: 1},
		20: {ID: 20, Title: "B", Popularity: 2},
		30: {ID: 30, Title: "C", Popularity: 3},
	}
	engine := newTestEngine(t, Dependencies{
		Candidates:    &mockGenerator{coldStart: []int{10, 20, 30}},
		Collaborative: &mockScorer{name: "collaborative"},
		Content:       &mockScorer{name: "content"},
		Catalog:       catalog,
	})

	resp, err := engine.Recommend(context.Background(), Request{UserID: 999})
	if err != nil {
		t.Fatalf("unknown user must not fail: %v", err)
	}
	if len(resp.Recommendations) == 0 {
		t.Fatal("cold start returned no recommendations")
	}
	if resp.Metadata.Path != PathColdStart {
		t.Errorf("Path = %v, want cold_start", resp.Metadata.Path)
	}

	want := []int{10, 20, 30}
	for i, rec := range resp.Recommendations {
		if rec.ItemID != want[i] {
			t.Errorf("rank %d = item %d, want %d", i, rec.ItemID, want[i])
		}
		if rec.Metrics.Content != 0.5 || rec.Metrics.Collaborative != 0.5 {
			t.Errorf("item %d metrics = %+v, want neutral 0.5 signals", rec.ItemID, rec.Metrics)
		}
		if rec.Title == "" {
			t.Errorf("item %d missing title", rec.ItemID)
		}
	}
}

func TestEngine_Recommend_StableTies(t *testing.T) {
	engine := newTestEngine(t, Dependencies{
		Candidates:    &mockGenerator{coldStart: []int{5, 3, 9, 1}},
		Collaborative: &mockScorer{name: "collaborative"},
		Content:       &mockScorer{name: "content"},
		Catalog:       newCatalog(10),
	})

	resp, err := engine.Recommend(context.Background(), Request{UserID: 1})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	want := []int{5, 3, 9, 1}
	for i, rec := range resp.Recommendations {
		if rec.ItemID != want[i] {
			t.Errorf("rank %d = item %d, want %d", i, rec.ItemID, want[i])
		}
	}
}

func TestEngine_Recommend_DeduplicatesPool(t *testing.T) {
	engine := newTestEngine(t, Dependencies{
		Candidates:    &mockGenerator{coldStart: []int{1, 2, 1, 3, 2}},
		Collaborative: &mockScorer{name: "collaborative"},
		Content:       &mockScorer{name: "content"},
		Catalog:       newCatalog(3),
	})

	resp, err := engine.Recommend(context.Background(), Request{UserID: 1})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if resp.Metadata.PoolSize != 3 || len(resp.Recommendations) != 3 {
		t.Errorf("pool = %d, results = %d, want 3/3", resp.Metadata.PoolSize, len(resp.Recommendations))
	}
}

func TestEngine_Recommend_DegradedContent(t *testing.T) {
	storeErr := NewError(KindRatingsStoreUnavailable, "liked items", errors.New("connection refused"))
	engine := newTestEngine(t, Dependencies{
		Candidates: &mockGenerator{known: map[int][]int{7: {1, 2, 3}}},
		Collaborative: &mockScorer{name: "collaborative", scores: map[int]map[int]float64{
			7: {1: 0.1, 2: 0.9, 3: 0.5},
		}},
		Content: &mockScorer{name: "content", err: storeErr},
		Catalog: newCatalog(3),
	})

	resp, err := engine.Recommend(context.Background(), Request{UserID: 7})
	if err != nil {
		t.Fatalf("degraded content must not fail the request: %v", err)
	}
	if !resp.Metadata.Degraded {
		t.Error("Degraded flag not set")
	}
	if resp.Recommendations[0].ItemID != 2 {
		t.Errorf("top item = %d, want 2 (collaborative only)", resp.Recommendations[0].ItemID)
	}
	for _, rec := range resp.Recommendations {
		if rec.Metrics.Content != 0.5 {
			t.Errorf("item %d content = %v, want 0.5", rec.ItemID, rec.Metrics.Content)
		}
	}
	if engine.Stats().Degraded != 1 {
		t.Errorf("Stats().Degraded = %d, want 1", engine.Stats().Degraded)
	}
}

func TestEngine_Recommend_Failures(t *testing.T) {
	t.Run("generator error", func(t *testing.T) {
		engine := newTestEngine(t, Dependencies{
			Candidates:    &mockGenerator{err: NewError(KindCorruptArtifact, "generate", errors.New("row out of range"))},
			Collaborative: &mockScorer{name: "collaborative"},
			Content:       &mockScorer{name: "content"},
			Catalog:       newCatalog(1),
		})
		_, err := engine.Recommend(context.Background(), Request{UserID: 1})
		if !errors.Is(err, ErrCorruptArtifact) {
			t.Errorf("err = %v, want ErrCorruptArtifact", err)
		}
		if engine.Stats().Errors != 1 {
			t.Errorf("Stats().Errors = %d", engine.Stats().Errors)
		}
	})

	t.Run("content error other than store", func(t *testing.T) {
		engine := newTestEngine(t, Dependencies{
			Candidates:    &mockGenerator{coldStart: []int{1}},
			Collaborative: &mockScorer{name: "collaborative"},
			Content:       &mockScorer{name: "content", err: errors.New("boom")},
			Catalog:       newCatalog(1),
		})
		if _, err := engine.Recommend(context.Background(), Request{UserID: 1}); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("collaborative error", func(t *testing.T) {
		engine := newTestEngine(t, Dependencies{
			Candidates:    &mockGenerator{coldStart: []int{1}},
			Collaborative: &mockScorer{name: "collaborative", err: errors.New("boom")},
			Content:       &mockScorer{name: "content"},
			Catalog:       newCatalog(1),
		})
		if _, err := engine.Recommend(context.Background(), Request{UserID: 1}); err == nil {
			t.Error("expected error")
		}
	})
}

func TestEngine_Recommend_EmptyPool(t *testing.T) {
	content := &mockScorer{name: "content"}
	engine := newTestEngine(t, Dependencies{
		Candidates:    &mockGenerator{},
		Collaborative: &mockScorer{name: "collaborative"},
		Content:       content,
		Catalog:       newCatalog(0),
	})

	resp, err := engine.Recommend(context.Background(), Request{UserID: 1})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if resp.NumResults != 0 || resp.Recommendations == nil {
		t.Errorf("want empty non-nil list, got %v", resp.Recommendations)
	}
	if content.calls != 0 {
		t.Error("scorers should not run on an empty pool")
	}
}

func TestEngine_Recommend_WeightOverride(t *testing.T) {
	deps := Dependencies{
		Candidates: &mockGenerator{known: map[int][]int{1: {1, 2}}},
		Collaborative: &mockScorer{name: "collaborative", scores: map[int]map[int]float64{
			1: {1: 1.0, 2: 0.0},
		}},
		Content: &mockScorer{name: "content", scores: map[int]map[int]float64{
			1: {1: 0.0, 2: 1.0},
		}},
		Catalog: newCatalog(2),
	}
	engine := newTestEngine(t, deps)

	resp, err := engine.Recommend(context.Background(), Request{UserID: 1})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if resp.Recommendations[0].ItemID != 2 {
		t.Errorf("default weights: top = %d, want 2", resp.Recommendations[0].ItemID)
	}

	resp, err = engine.Recommend(context.Background(), Request{
		UserID:  1,
		Weights: &Weights{Content: 0, Collaborative: 1, Quality: 0},
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if resp.Recommendations[0].ItemID != 1 {
		t.Errorf("collaborative-only weights: top = %d, want 1", resp.Recommendations[0].ItemID)
	}
	if resp.Recommendations[0].RawCollaborative != 1.0 || resp.Recommendations[0].Hybrid != 1.0 {
		t.Errorf("raw breakdown = %+v", resp.Recommendations[0])
	}
}

func TestEngine_Recommend_QualityAndExposure(t *testing.T) {
	catalog := mockCatalog{
		1: {ID: 1, Title: "Ranked", Rank: 1, Popularity: 1},
		2: {ID: 2, Title: "Unranked"},
	}
	engine := newTestEngine(t, Dependencies{
		Candidates:    &mockGenerator{coldStart: []int{2, 1}},
		Collaborative: &mockScorer{name: "collaborative"},
		Content:       &mockScorer{name: "content"},
		Catalog:       catalog,
	})

	resp, err := engine.Recommend(context.Background(), Request{UserID: 3})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	top := resp.Recommendations[0]
	if top.ItemID != 1 {
		t.Fatalf("top = %d, want 1", top.ItemID)
	}
	if top.Metrics.Quality != 0.5 || top.Metrics.Exposure != 0.5 {
		t.Errorf("metrics = %+v", top.Metrics)
	}
	if resp.Recommendations[1].Metrics.Quality != 0 || resp.Recommendations[1].Metrics.Exposure != 0 {
		t.Errorf("absent rank/popularity should give zero signals: %+v", resp.Recommendations[1].Metrics)
	}
}

func TestEngine_Recommend_Concurrent(t *testing.T) {
	engine := newTestEngine(t, Dependencies{
		Candidates:    &mockGenerator{coldStart: []int{1, 2, 3}},
		Collaborative: &mockScorer{name: "collaborative"},
		Content:       &mockScorer{name: "content"},
		Catalog:       newCatalog(3),
	})

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(user int) {
			defer wg.Done()
			if _, err := engine.Recommend(context.Background(), Request{UserID: user}); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Recommend: %v", err)
	}
	if engine.Stats().Requests != 20 {
		t.Errorf("Requests = %d, want 20", engine.Stats().Requests)
	}
}
