// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

//go:build integration

package testinfra

import (
	"context"
	"os"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
)

// SkipEnvVar disables container tests even when Docker is reachable.
const SkipEnvVar = "ANIMEREC_SKIP_CONTAINERS"

var (
	dockerOnce      sync.Once
	dockerAvailable bool
)

// SkipIfNoDocker skips the test when containers cannot be started.
func SkipIfNoDocker(t *testing.T) {
	t.Helper()

	if os.Getenv(SkipEnvVar) != "" {
		t.Skipf("Skipping container test: %s is set", SkipEnvVar)
	}
	if !IsDockerAvailable() {
		t.Skip("Skipping container test: Docker not available")
	}
}

// IsDockerAvailable runs `docker info` once per test binary.
func IsDockerAvailable() bool {
	dockerOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		dockerAvailable = exec.CommandContext(ctx, "docker", "info").Run() == nil
	})
	return dockerAvailable
}

// CleanupContainer terminates the container when the test finishes. It
// uses its own deadline because the test context may already be done.
func CleanupContainer(t *testing.T, container testcontainers.Container) {
	t.Helper()

	if container == nil {
		return
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})
}
