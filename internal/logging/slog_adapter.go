// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package logging

import (
	"context"
	"log/slog"

	"github.com/rs/zerolog"
)

// SlogHandler is an slog.Handler writing through zerolog, so suture's
// events (via sutureslog) land in the same stream as everything else.
// Attributes added with WithAttrs are baked into the zerolog context once.
type SlogHandler struct {
	logger zerolog.Logger
	prefix string
}

// NewSlogHandler wraps logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSlogHandler(logger zerolog.Logger) *SlogHandler {
	return &SlogHandler{logger: logger}
}

// Enabled implements slog.Handler.
func (h *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	lvl := zerologLevel(level)
	return lvl >= h.logger.GetLevel() && lvl >= zerolog.GlobalLevel()
}

// Handle implements slog.Handler.
//
//nolint:gocritic // slog.Record is passed by value per slog.Handler interface
func (h *SlogHandler) Handle(_ context.Context, record slog.Record) error {
	fields := make(map[string]any, record.NumAttrs())
	record.Attrs(func(a slog.Attr) bool {
		flatten(fields, h.prefix, a)
		return true
	})

	event := h.logger.WithLevel(zerologLevel(record.Level))
	if len(fields) > 0 {
		event = event.Fields(fields)
	}
	event.Msg(record.Message)
	return nil
}

// WithAttrs implements slog.Handler.
func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	fields := make(map[string]any, len(attrs))
	for _, a := range attrs {
		flatten(fields, h.prefix, a)
	}
	return &SlogHandler{
		logger: h.logger.With().Fields(fields).Logger(),
		prefix: h.prefix,
	}
}

// WithGroup implements slog.Handler. Groups become dotted key prefixes.
func (h *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &SlogHandler{logger: h.logger, prefix: h.prefix + name + "."}
}

// flatten writes a into fields, expanding groups into dotted keys.
func flatten(fields map[string]any, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() != slog.KindGroup {
		fields[prefix+a.Key] = a.Value.Any()
		return
	}
	// An unnamed group is inlined.
	nested := prefix
	if a.Key != "" {
		nested = prefix + a.Key + "."
	}
	for _, ga := range a.Value.Group() {
		flatten(fields, nested, ga)
	}
}

func zerologLevel(level slog.Level) zerolog.Level {
	switch {
	case level >= slog.LevelError:
		return zerolog.ErrorLevel
	case level >= slog.LevelWarn:
		return zerolog.WarnLevel
	case level >= slog.LevelInfo:
		return zerolog.InfoLevel
	case level >= slog.LevelDebug:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// NewSlogLogger returns an slog.Logger over the global logger, tagged
// with component "supervisor".
//
//	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), cfg)
func NewSlogLogger() *slog.Logger {
	return slog.New(NewSlogHandler(WithComponent("supervisor")))
}
