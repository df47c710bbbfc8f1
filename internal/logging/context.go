// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	userIDKey
	loggerKey
)

// GenerateRequestID returns a random UUID string.
func GenerateRequestID() string {
	return uuid.NewString()
}

// ContextWithRequestID tags ctx with the HTTP request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request ID, or "" when there is none.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// ContextWithUserID tags ctx with the user being recommended for.
func ContextWithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the tagged user ID and whether one was set.
func UserIDFromContext(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(userIDKey).(int)
	return id, ok
}

// ContextWithLogger makes Ctx and friends write through logger instead of
// the global one.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func ContextWithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, &logger)
}

// LoggerFromContext returns the stored logger or the global one.
func LoggerFromContext(ctx context.Context) zerolog.Logger {
	if l, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok {
		return *l
	}
	return Logger()
}

// CtxWith returns a builder preloaded with request_id and user_id.
//
//	logger := logging.CtxWith(ctx).Int("limit", limit).Logger()
func CtxWith(ctx context.Context) zerolog.Context {
	b := LoggerFromContext(ctx).With()
	if id := RequestIDFromContext(ctx); id != "" {
		b = b.Str("request_id", id)
	}
	if uid, ok := UserIDFromContext(ctx); ok {
		b = b.Int("user_id", uid)
	}
	return b
}

// Ctx returns a logger carrying the context's request and user IDs.
func Ctx(ctx context.Context) *zerolog.Logger {
	l := CtxWith(ctx).Logger()
	return &l
}

// CtxDebug starts a debug entry with context fields.
func CtxDebug(ctx context.Context) *zerolog.Event { return Ctx(ctx).Debug() }

// CtxInfo starts an info entry with context fields.
func CtxInfo(ctx context.Context) *zerolog.Event { return Ctx(ctx).Info() }

// CtxWarn starts a warn entry with context fields.
func CtxWarn(ctx context.Context) *zerolog.Event { return Ctx(ctx).Warn() }

// CtxErr starts an error entry with context fields and err.
func CtxErr(ctx context.Context, err error) *zerolog.Event { return Ctx(ctx).Err(err) }
