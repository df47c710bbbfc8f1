// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/animerec/internal/logging"
	"github.com/tomtom215/animerec/internal/models"
	"github.com/tomtom215/animerec/internal/validation"
)

// Error codes returned in the error envelope.
const (
	ErrCodeInvalidUserID       = "INVALID_USER_ID"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeTimeout             = "TIMEOUT"
	ErrCodeRecommendation      = "RECOMMENDATION_ERROR"
	ErrCodeServiceUnavailable  = "SERVICE_UNAVAILABLE"
	ErrCodeRateLimited         = "RATE_LIMIT_EXCEEDED"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeMethodNotAllowed    = "METHOD_NOT_ALLOWED"
	ErrCodeInternalServerError = "INTERNAL_ERROR"
)

// sanitizeLogValue removes control characters from strings to prevent log injection attacks.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&result, "\\x%02x", r)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response. Responses are personalized, so they
// are never cached by intermediaries.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondSuccess wraps data in the success envelope.
func respondSuccess(w http.ResponseWriter, r *http.Request, data interface{}, queryTime time.Duration) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: models.StatusSuccess,
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: queryTime.Milliseconds(),
			RequestID:   logging.RequestIDFromContext(r.Context()),
		},
	})
}

// respondError sends an error response. err is logged, never returned to
// the client.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	respondErrorWithDetails(w, r, status, code, message, nil, err)
}

func respondErrorWithDetails(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]interface{}, err error) {
	if err != nil {
		logging.CtxErr(r.Context(), err).
			Str("code", sanitizeLogValue(code)).
			Str("path", sanitizeLogValue(r.URL.Path)).
			Int("status", status).
			Msg("API Error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status: models.StatusError,
		Data:   nil,
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// msgInvalidParameters is the message of every VALIDATION_ERROR; the
// failing fields are listed in the details.
const msgInvalidParameters = "Invalid request parameters"

// validateRequest validates a struct using go-playground/validator.
// Returns nil if validation passes.
func validateRequest(v interface{}) *models.APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}

	apiErr := validationErr.ToAPIError()
	details := apiErr.Details
	if details == nil {
		details = map[string]interface{}{}
	}
	details["reason"] = apiErr.Message
	return &models.APIError{
		Code:    ErrCodeValidation,
		Message: msgInvalidParameters,
		Details: details,
	}
}
