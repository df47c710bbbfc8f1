// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/animerec/internal/models"
	"github.com/tomtom215/animerec/internal/recommend"
)

// fakeEngine records the last request and returns a fixed response.
type fakeEngine struct {
	mu    sync.Mutex
	last  recommend.Request
	err   error
	block bool
	cfg   *recommend.Config
}

func (f *fakeEngine) Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error) {
	f.mu.Lock()
	f.last = req
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return nil, recommend.NewError(recommend.KindInternal, "score", ctx.Err())
	}
	if f.err != nil {
		return nil, f.err
	}

	recs := []recommend.ScoredCandidate{
		{ItemID: 5, Title: "Cowboy Bebop", FinalScore: 0.9, Metrics: recommend.Metrics{Content: 1, Collaborative: 0.5, Quality: 0.2, Exposure: 0.1}},
		{ItemID: 7, Title: "Trigun", FinalScore: 0.4},
	}
	if req.Limit < len(recs) {
		recs = recs[:req.Limit]
	}
	return &recommend.Response{
		UserID:          req.UserID,
		NumResults:      len(recs),
		Recommendations: recs,
		Metadata:        recommend.ResponseMetadata{RequestID: req.RequestID, Path: recommend.PathModel, PoolSize: 50},
	}, nil
}

func (f *fakeEngine) Stats() recommend.Stats {
	return recommend.Stats{Requests: 3, Degraded: 1}
}

func (f *fakeEngine) Config() *recommend.Config {
	if f.cfg != nil {
		return f.cfg
	}
	return recommend.DefaultConfig()
}

func (f *fakeEngine) lastRequest() recommend.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

type fakeRatings struct {
	err error
}

func (f fakeRatings) Ping(context.Context) error { return f.err }

func (f fakeRatings) State() string {
	if f.err != nil {
		return "open"
	}
	return "closed"
}

func newTestHandler(engine *fakeEngine, ratings RatingsHealth) *Handler {
	return NewHandler(Options{
		Engine:         engine,
		Ratings:        ratings,
		Driver:         "postgres",
		Bundle:         models.BundleInfo{Name: "bundle", Version: 2, Items: 100},
		RequestTimeout: 50 * time.Millisecond,
	})
}

func newTestServer(engine *fakeEngine, ratings RatingsHealth) http.Handler {
	mw := NewChiMiddlewareFromSecurity([]string{"https://example.com"}, 1000, time.Minute, false)
	return NewRouter(newTestHandler(engine, ratings), mw, false).SetupChi()
}

func serve(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, http.NoBody)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return env
}

var errBoom = errors.New("pq: relation user_ratings does not exist")
