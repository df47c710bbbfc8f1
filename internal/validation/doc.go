// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

/*
Package validation provides struct validation using go-playground/validator v10.

It exposes one shared validator and converts validator errors
into the API's VALIDATION_ERROR envelope.

Features:
  - One shared validator instance (caches struct info)
  - Field names taken from json, koanf or query tags
  - Custom "finite" validator rejecting NaN and infinities
  - Uses WithRequiredStructEnabled option (v11+ compatibility)

# Usage

Request types:

	type recommendationRequest struct {
	    UserID int `json:"user_id" validate:"min=1"`
	    Limit  int `json:"limit" validate:"min=1,max=50"`
	}

	if err := validation.ValidateStruct(&req); err != nil {
	    apiErr := err.ToAPIError()
	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
	    return
	}

Configuration structs are validated the same way, with koanf tags naming
the fields in messages ("port must be at least 1").

# Error Messages

	required   "<field> is required"
	min/max    "<field> must be at least/at most <n>" (characters for strings)
	gte/lte    "<field> must be greater/less than or equal to <n>"
	oneof      "<field> must be one of: <values>"
	finite     "<field> must be a finite number"
*/
package validation
