// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package evaluate

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/animerec/internal/catalog"
	"github.com/tomtom215/animerec/internal/recommend"
	"github.com/tomtom215/animerec/internal/recommend/algorithms"
)

type fixedModel struct {
	name string
	recs map[int][]int
	err  error
}

func (m fixedModel) Name() string { return m.name }

func (m fixedModel) Recommend(_ context.Context, userID, _ int) ([]int, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.recs[userID], nil
}

type likedMap map[int][]int

func (l likedMap) LikedItems(_ context.Context, userID int, _ float64) ([]int, error) {
	return l[userID], nil
}

func TestRelevantItems(t *testing.T) {
	got := RelevantItems([]recommend.Rating{
		{UserID: 1, ItemID: 10, Value: 8},
		{UserID: 1, ItemID: 11, Value: 7.9},
		{UserID: 2, ItemID: 12, Value: 3},
	}, 8.0)
	if len(got) != 1 || len(got[1]) != 1 {
		t.Fatalf("RelevantItems() = %v", got)
	}
	if _, ok := got[1][10]; !ok {
		t.Error("rating equal to threshold must be relevant")
	}
}

func TestUserIDs(t *testing.T) {
	got := UserIDs([]recommend.Rating{
		{UserID: 3, ItemID: 1}, {UserID: 1, ItemID: 2}, {UserID: 3, ItemID: 4}, {UserID: 2, ItemID: 1},
	})
	if !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("UserIDs() = %v, want [1 2 3]", got)
	}
}

func TestSampleUsers(t *testing.T) {
	users := make([]int, 0, 50)
	for u := 50; u >= 1; u-- {
		users = append(users, u)
	}
	before := slices.Clone(users)

	a := SampleUsers(users, 10, 7)
	b := SampleUsers(users, 10, 7)
	if len(a) != 10 || !slices.Equal(a, b) {
		t.Errorf("same seed gave %v and %v", a, b)
	}
	if !slices.IsSorted(a) {
		t.Errorf("sample not sorted: %v", a)
	}
	if all := SampleUsers(users, 100, 7); len(all) != 50 {
		t.Errorf("len = %d, want 50", len(all))
	}
	if !slices.Equal(users, before) {
		t.Error("SampleUsers modified its input")
	}
}

func TestHarness_Run(t *testing.T) {
	cat := catalog.New([]recommend.Item{
		{ID: 10, Rank: 1}, {ID: 20, Rank: 3}, {ID: 30}, {ID: 40},
	})
	ratings := []recommend.Rating{
		{UserID: 1, ItemID: 10, Value: 9},
		{UserID: 2, ItemID: 20, Value: 8},
		{UserID: 3, ItemID: 30, Value: 2},
	}
	h := NewHarness(Config{Users: 10, K: 2, RelevanceThreshold: 8, Seed: 1}, cat, cat.Len(), zerolog.Nop())

	perfect := fixedModel{name: "perfect", recs: map[int][]int{1: {10}, 2: {20}}}
	partial := fixedModel{name: "partial", recs: map[int][]int{1: {40, 10}}}
	broken := fixedModel{name: "broken", err: errors.New("boom")}

	report, err := h.Run(context.Background(), ratings, perfect, partial, broken)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	// User 3 is sampled but has nothing relevant, so no model is asked.
	if report.SampledUsers != 3 || report.UsersWithRelevant != 2 || report.K != 2 || len(report.Results) != 3 {
		t.Fatalf("report = %+v", report)
	}

	p := report.Results[0]
	if !approx(p.PrecisionAtK, 0.5) || !approx(p.Coverage, 0.5) || p.Evaluated != 2 {
		t.Errorf("perfect = %+v", p)
	}
	if !approx(p.AvgRankScore, (0.5+0.25)/2) {
		t.Errorf("perfect avg rank = %v", p.AvgRankScore)
	}

	q := report.Results[1]
	if q.Evaluated != 1 || !approx(q.PrecisionAtK, 0.5) {
		t.Errorf("partial = %+v", q)
	}

	b := report.Results[2]
	if b.Failed != 2 || b.Evaluated != 0 || b.PrecisionAtK != 0 {
		t.Errorf("broken = %+v", b)
	}

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		if err := report.WriteTable(&buf); err != nil {
			t.Fatal(err)
		}
		out := buf.String()
		if !strings.Contains(out, "Sampled 3 users, 2 with a rating >= 8.0") {
			t.Errorf("table header = %q", out)
		}
		if !strings.Contains(out, "Precision@2") || !strings.Contains(out, "| perfect | 0.5000 | 0.5000 |") {
			t.Errorf("table = %q", out)
		}
	})

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.json")
		if err := report.WriteJSON(path); err != nil {
			t.Fatal(err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		var decoded Report
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(decoded.Results) != 3 || decoded.Results[0].Model != "perfect" {
			t.Errorf("decoded = %+v", decoded)
		}
	})
}

func TestHarness_NoRelevantUsers(t *testing.T) {
	h := NewHarness(DefaultConfig(), catalog.New(nil), 0, zerolog.Nop())
	if _, err := h.Run(context.Background(), []recommend.Rating{{UserID: 1, ItemID: 1, Value: 1}}); err == nil {
		t.Error("expected error without relevant users")
	}
}

func TestModels(t *testing.T) {
	ctx := context.Background()
	items := []recommend.Item{
		{ID: 1, Synopsis: "giant robots fight kaiju", Popularity: 5},
		{ID: 2, Synopsis: "giant robots pilots war", Popularity: 1},
		{ID: 3, Synopsis: "cooking school rivals", Popularity: 3},
	}
	cat := catalog.New(items)

	vec := algorithms.NewVectorizer(algorithms.VectorizerConfig{})
	if err := vec.Fit(ctx, []string{items[0].Synopsis, items[1].Synopsis, items[2].Synopsis}); err != nil {
		t.Fatal(err)
	}
	model := algorithms.NewContentModel(vec, items)

	als := algorithms.NewALS(algorithms.ALSConfig{NumFactors: 2, NumIterations: 2, NumWorkers: 1})
	if err := als.Train(ctx, []recommend.Rating{
		{UserID: 1, ItemID: 1, Value: 9},
		{UserID: 2, ItemID: 2, Value: 9},
		{UserID: 2, ItemID: 3, Value: 9},
	}); err != nil {
		t.Fatal(err)
	}

	t.Run("cf only", func(t *testing.T) {
		cf := NewCFOnly(als)
		recs, err := cf.Recommend(ctx, 1, 5)
		if err != nil || slices.Contains(recs, 1) || len(recs) != 2 {
			t.Errorf("Recommend(known) = %v, %v", recs, err)
		}
		recs, err = cf.Recommend(ctx, 99, 5)
		if err != nil || len(recs) != 0 {
			t.Errorf("Recommend(unknown) = %v, %v", recs, err)
		}
	})

	t.Run("content only", func(t *testing.T) {
		source := NewThrottledSource(likedMap{1: {1}}, 0)
		scorer := algorithms.NewContentScorer(model, source, 7, zerolog.Nop())
		co := NewContentOnly(scorer, model, cat)

		recs, err := co.Recommend(ctx, 1, 5)
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(recs, []int{2, 3}) {
			t.Errorf("Recommend(liked robots) = %v, want [2 3]", recs)
		}

		recs, err = co.Recommend(ctx, 99, 2)
		if err != nil || !slices.Equal(recs, []int{2, 3}) {
			t.Errorf("Recommend(cold start) = %v, %v, want most popular [2 3]", recs, err)
		}
	})
}

func TestThrottledSource(t *testing.T) {
	source := NewThrottledSource(likedMap{1: {5}}, 1)
	ctx := context.Background()

	if got, err := source.LikedItems(ctx, 1, 7); err != nil || !slices.Equal(got, []int{5}) {
		t.Fatalf("LikedItems() = %v, %v", got, err)
	}

	// The bucket is empty now, so a short deadline cannot be met.
	short, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	if _, err := source.LikedItems(short, 1, 7); err == nil {
		t.Error("expected throttled call to fail under a short deadline")
	}
}
