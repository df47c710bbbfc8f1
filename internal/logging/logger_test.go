// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// captureGlobal installs a logger built from cfg that writes to a buffer.
// The previous global logger is restored when the test ends.
//
//nolint:gocritic // hugeParam: test helper
func captureGlobal(t *testing.T, cfg Config) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	cfg.Output = &buf
	t.Cleanup(Replace(New(cfg)))
	return &buf
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Level != "info" || cfg.Format != "json" {
		t.Errorf("DefaultConfig() = %+v", cfg)
	}
	if cfg.Caller || !cfg.Timestamp {
		t.Errorf("Caller = %v, Timestamp = %v", cfg.Caller, cfg.Timestamp)
	}
}

func TestNew_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(Config{Level: "debug", Timestamp: true, Service: "animerec-test", Output: &buf})
	logger.Info().Int("user_id", 42).Msg("Recommendations served")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	want := map[string]any{
		"message": "Recommendations served",
		"level":   "info",
		"service": "animerec-test",
		"user_id": float64(42),
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("%s = %v, want %v", k, entry[k], v)
		}
	}
	if _, ok := entry["time"]; !ok {
		t.Error("missing time field")
	}
}

func TestNew_Console(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(Config{Format: "console", Output: &buf})
	logger.Warn().Msg("degraded mode")

	out := strings.TrimSpace(buf.String())
	if !strings.Contains(out, "degraded mode") {
		t.Errorf("message missing: %s", out)
	}
	if strings.HasPrefix(out, "{") {
		t.Errorf("console output should not be JSON: %s", out)
	}
}

func TestGlobal_LevelFiltering(t *testing.T) {
	buf := captureGlobal(t, Config{Level: "warn"})

	Debug().Msg("hidden debug")
	Info().Msg("hidden info")
	Warn().Msg("visible warn")
	Error().Msg("visible error")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("lower levels leaked: %s", out)
	}
	if !strings.Contains(out, "visible warn") || !strings.Contains(out, "visible error") {
		t.Errorf("expected warn and error: %s", out)
	}
}

func TestReplace_Restores(t *testing.T) {
	var first, second bytes.Buffer
	restoreOuter := Replace(New(Config{Output: &first}))
	defer restoreOuter()

	restore := Replace(New(Config{Output: &second}))
	Info().Msg("to second")
	restore()
	Info().Msg("to first")

	if !strings.Contains(second.String(), "to second") || strings.Contains(second.String(), "to first") {
		t.Errorf("second = %s", second.String())
	}
	if !strings.Contains(first.String(), "to first") {
		t.Errorf("first = %s", first.String())
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"disabled", zerolog.Disabled},
		{" DEBUG ", zerolog.DebugLevel},
		{"verbose", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestWithComponent(t *testing.T) {
	buf := captureGlobal(t, Config{Level: "info"})

	logger := WithComponent("trainer")
	logger.Info().Msg("fitting")

	if !strings.Contains(buf.String(), `"component":"trainer"`) {
		t.Errorf("missing component field: %s", buf.String())
	}
}
