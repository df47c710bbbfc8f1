// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

// mockService runs until canceled, optionally failing its first runs.
type mockService struct {
	name       string
	maxFails   int32
	startCount atomic.Int32
	failCount  atomic.Int32
}

func newMockService(name string, failures int) *mockService {
	return &mockService{name: name, maxFails: int32(failures)}
}

func (m *mockService) Serve(ctx context.Context) error {
	m.startCount.Add(1)
	if m.failCount.Add(1) <= m.maxFails {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockService) String() string {
	return m.name
}

func (m *mockService) starts() int32 {
	return m.startCount.Load()
}
