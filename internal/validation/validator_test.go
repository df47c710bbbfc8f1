// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package validation

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestValidator_Shared(t *testing.T) {
	if Validator() == nil {
		t.Fatal("Validator() = nil")
	}
	if Validator() != Validator() {
		t.Error("Validator() returned different instances")
	}
}

type recommendationQuery struct {
	UserID int     `json:"user_id" validate:"min=1"`
	Limit  int     `json:"limit" validate:"min=1,max=50"`
	Mode   string  `json:"mode" validate:"omitempty,oneof=hybrid content collaborative"`
	Boost  float64 `json:"boost" validate:"finite,gte=0,lte=1"`
	Note   string  `validate:"omitempty,max=5"`
}

type serverSection struct {
	Port int `koanf:"port" validate:"min=1,max=65535"`
}

type settings struct {
	Server serverSection `koanf:"server"`
	Name   string        `koanf:"name" validate:"required"`
}

func TestValidateStruct_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input recommendationQuery
	}{
		{"minimum values", recommendationQuery{UserID: 1, Limit: 1}},
		{"maximum values", recommendationQuery{UserID: 1 << 30, Limit: 50, Boost: 1}},
		{"explicit mode", recommendationQuery{UserID: 7, Limit: 10, Mode: "content"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateStruct(&tt.input); err != nil {
				t.Errorf("ValidateStruct() returned unexpected error: %v", err)
			}
		})
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		input     recommendationQuery
		wantField string
		wantTag   string
		wantMsg   string
	}{
		{
			name:      "user id zero",
			input:     recommendationQuery{UserID: 0, Limit: 10},
			wantField: "user_id",
			wantTag:   "min",
			wantMsg:   "user_id must be at least 1",
		},
		{
			name:      "limit above max",
			input:     recommendationQuery{UserID: 1, Limit: 51},
			wantField: "limit",
			wantTag:   "max",
			wantMsg:   "limit must be at most 50",
		},
		{
			name:      "unknown mode",
			input:     recommendationQuery{UserID: 1, Limit: 10, Mode: "random"},
			wantField: "mode",
			wantTag:   "oneof",
			wantMsg:   "mode must be one of: hybrid content collaborative",
		},
		{
			name:      "nan boost",
			input:     recommendationQuery{UserID: 1, Limit: 10, Boost: math.NaN()},
			wantField: "boost",
			wantTag:   "finite",
			wantMsg:   "boost must be a finite number",
		},
		{
			name:      "untagged field keeps go name",
			input:     recommendationQuery{UserID: 1, Limit: 10, Note: "too long"},
			wantField: "Note",
			wantTag:   "max",
			wantMsg:   "Note must be at most 5 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			if err == nil {
				t.Fatal("ValidateStruct() expected error, got nil")
			}
			if len(err.Fields) != 1 {
				t.Fatalf("got %d failures, want 1: %v", len(err.Fields), err)
			}
			got := err.Fields[0]
			if got.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", got.Field, tt.wantField)
			}
			if got.Tag != tt.wantTag {
				t.Errorf("Tag = %q, want %q", got.Tag, tt.wantTag)
			}
			if got.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", got.Message, tt.wantMsg)
			}
		})
	}
}

func TestValidateStruct_KoanfNames(t *testing.T) {
	err := ValidateStruct(&settings{Server: serverSection{Port: 0}})
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "port must be at least 1") {
		t.Errorf("missing port message in %q", msg)
	}
	if !strings.Contains(msg, "name is required") {
		t.Errorf("missing name message in %q", msg)
	}
}

func TestToAPIError_SingleError(t *testing.T) {
	err := ValidateStruct(&recommendationQuery{UserID: 1, Limit: 0})
	if err == nil {
		t.Fatal("expected error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != CodeValidation {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if apiErr.Message != "limit must be at least 1" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if apiErr.Details["field"] != "limit" {
		t.Errorf("Details[field] = %v, want limit", apiErr.Details["field"])
	}
}

func TestToAPIError_NonFiniteValueEncodes(t *testing.T) {
	for _, boost := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		err := ValidateStruct(&recommendationQuery{UserID: 1, Limit: 1, Boost: boost})
		if err == nil {
			t.Fatalf("boost %v: expected error", boost)
		}
		apiErr := err.ToAPIError()
		if apiErr.Details["value"] != fmt.Sprint(boost) {
			t.Errorf("Details[value] = %v, want %q", apiErr.Details["value"], fmt.Sprint(boost))
		}
		if _, mErr := json.Marshal(apiErr.Details); mErr != nil {
			t.Errorf("boost %v: details not encodable: %v", boost, mErr)
		}
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	err := ValidateStruct(&recommendationQuery{UserID: 0, Limit: 0})
	if err == nil {
		t.Fatal("expected error")
	}

	apiErr := err.ToAPIError()
	if !strings.Contains(apiErr.Message, "user_id:") || !strings.Contains(apiErr.Message, "limit:") {
		t.Errorf("Message = %q, want both fields listed", apiErr.Message)
	}
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 2 {
		t.Errorf("Details[fields] = %v", apiErr.Details["fields"])
	}
}

func TestToAPIError_Empty(t *testing.T) {
	apiErr := (&RequestValidationError{}).ToAPIError()
	if apiErr.Code != CodeValidation || apiErr.Message != "Validation failed" {
		t.Errorf("apiErr = %+v", apiErr)
	}
	if (&RequestValidationError{}).Error() != "validation failed" {
		t.Error("empty error message mismatch")
	}
}

func TestRangeValidation(t *testing.T) {
	tests := []struct {
		name    string
		boost   float64
		wantErr string
	}{
		{"lower bound", 0, ""},
		{"upper bound", 1, ""},
		{"below range", -0.1, "boost must be greater than or equal to 0"},
		{"above range", 1.1, "boost must be less than or equal to 1"},
		{"infinite", math.Inf(1), "boost must be a finite number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&recommendationQuery{UserID: 1, Limit: 1, Boost: tt.boost})
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}
