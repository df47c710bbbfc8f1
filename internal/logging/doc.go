// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

// Package logging provides zerolog-based structured logging for the
// recommendation server, trainer and evaluation tools.
//
// # Overview
//
//   - JSON output for production, console output for development
//   - A global logger configured once from LOG_LEVEL, LOG_FORMAT and LOG_CALLER
//   - Request-scoped fields (request_id, user_id) carried through context
//   - An slog adapter for the suture supervisor tree
//   - DSN redaction for logging database connection strings
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:   cfg.Logging.Level,
//	    Format:  cfg.Logging.Format,
//	    Caller:  cfg.Logging.Caller,
//	    Service: "animerec",
//	})
//
//	logging.Info().Str("bundle", path).Int("items", n).Msg("Model bundle loaded")
//	logging.CtxWarn(ctx).Err(err).Msg("Ratings store unavailable, serving degraded")
//
// # Request Context
//
// The request ID middleware stores an ID in the context and the
// recommendations handler adds the user ID. Ctx and its shorthands attach
// both fields:
//
//	ctx = logging.ContextWithUserID(ctx, userID)
//	logging.CtxInfo(ctx).Int("returned", len(recs)).Msg("Recommendations served")
//
// # Conventions
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("key", "value").Msg("message")  // Correct
//	logging.Info().Str("key", "value")                 // WRONG - log not emitted
//
// Never log a raw DSN:
//
//	logging.Info().Str("dsn", logging.RedactDSN(cfg.Ratings.DSN)).Msg("Connecting")
package logging
