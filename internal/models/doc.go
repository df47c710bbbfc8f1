// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

/*
Package models defines the HTTP payloads shared by the API handlers.

Every endpoint except /metrics answers with the same envelope:

	{
	  "status": "success",
	  "data": {...},
	  "metadata": {"timestamp": "2026-01-02T15:04:05Z", "query_time_ms": 12}
	}

Errors carry a machine-readable code and a constant message:

	{
	  "status": "error",
	  "data": null,
	  "metadata": {"timestamp": "2026-01-02T15:04:05Z"},
	  "error": {"code": "INVALID_USER_ID", "message": "Invalid user ID"}
	}

Recommendation payloads are the engine's own recommend.Response; this
package only holds the envelope and the health and stats documents.
*/
package models
