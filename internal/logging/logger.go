// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package logging

import (
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logging configuration.
type Config struct {
	// Level is one of trace, debug, info, warn, error, fatal, disabled.
	// Default: info
	Level string

	// Format is json or console.
	// Default: json
	Format string

	// Caller adds file:line to every entry.
	Caller bool

	// Timestamp adds the "time" field.
	// Default: true
	Timestamp bool

	// Service is attached to every entry as the "service" field when set.
	// The server, trainer and evaluate binaries each set their own name.
	Service string

	// Output defaults to os.Stderr.
	Output io.Writer
}

// DefaultConfig returns JSON at info level with timestamps on stderr.
func DefaultConfig() Config {
	return Config{
		Level:     "info",
		Format:    "json",
		Timestamp: true,
		Output:    os.Stderr,
	}
}

var levels = map[string]zerolog.Level{
	"trace":    zerolog.TraceLevel,
	"debug":    zerolog.DebugLevel,
	"info":     zerolog.InfoLevel,
	"warn":     zerolog.WarnLevel,
	"warning":  zerolog.WarnLevel,
	"error":    zerolog.ErrorLevel,
	"fatal":    zerolog.FatalLevel,
	"disabled": zerolog.Disabled,
}

// parseLevel falls back to info for unknown names.
func parseLevel(level string) zerolog.Level {
	if l, ok := levels[strings.ToLower(strings.TrimSpace(level))]; ok {
		return l
	}
	return zerolog.InfoLevel
}

// current is swapped atomically so Init may run while other goroutines log.
var current atomic.Pointer[zerolog.Logger]

//nolint:gochecknoinits // logging must work before Init is called
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.TimestampFieldName = "time"
	zerolog.MessageFieldName = "message"

	cfg := DefaultConfig()
	// Tests that exercise failure paths produce a lot of noise.
	if os.Getenv("ANIMEREC_QUIET_LOGS") == "1" {
		cfg.Level = "fatal"
	}
	Init(cfg)
}

// New builds a logger from cfg without touching the global one.
//
//nolint:gocritic // hugeParam: config is copied once per logger
func New(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	ctx := zerolog.New(out).Level(parseLevel(cfg.Level)).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	if cfg.Service != "" {
		ctx = ctx.Str("service", cfg.Service)
	}
	return ctx.Logger()
}

// Init replaces the global logger. It may be called more than once.
//
//nolint:gocritic // hugeParam: config is copied once at startup
func Init(cfg Config) {
	l := New(cfg)
	current.Store(&l)
}

// Replace installs l as the global logger and returns a function that
// restores the previous one.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func Replace(l zerolog.Logger) (restore func()) {
	prev := current.Swap(&l)
	return func() { current.Store(prev) }
}

// Logger returns a copy of the global logger.
func Logger() zerolog.Logger {
	return *current.Load()
}

// Debug starts a debug entry on the global logger.
func Debug() *zerolog.Event {
	return current.Load().Debug()
}

// Info starts an info entry on the global logger.
//
//	logging.Info().Str("addr", addr).Msg("Server starting")
func Info() *zerolog.Event {
	return current.Load().Info()
}

// Warn starts a warn entry on the global logger.
func Warn() *zerolog.Event {
	return current.Load().Warn()
}

// Error starts an error entry on the global logger.
func Error() *zerolog.Event {
	return current.Load().Error()
}

// Fatal starts a fatal entry; os.Exit(1) follows Msg.
//
//	logging.Fatal().Err(err).Msg("Failed to load model bundle")
func Fatal() *zerolog.Event {
	return current.Load().Fatal()
}

// WithComponent returns a child of the global logger tagged with component.
//
//	engineLog := logging.WithComponent("engine")
func WithComponent(component string) zerolog.Logger {
	return current.Load().With().Str("component", component).Logger()
}
