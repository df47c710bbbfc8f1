// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// CodeValidation is the envelope error code for rejected input.
const CodeValidation = "VALIDATION_ERROR"

// instance builds the shared validator on first use. Struct metadata is
// cached inside it, so every caller must go through here.
var instance = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	if err := v.RegisterValidation("finite", isFinite); err != nil {
		panic(fmt.Sprintf("validation: register finite: %v", err))
	}
	return v
})

// Validator returns the shared validator.
func Validator() *validator.Validate {
	return instance()
}

// FieldError is one failed constraint, named the way clients see it.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Value   any
	Message string
}

func (e FieldError) Error() string {
	return e.Message
}

// RequestValidationError collects every constraint a value failed.
type RequestValidationError struct {
	Fields []FieldError
}

func (e *RequestValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e.Fields))
	for i := range e.Fields {
		msgs[i] = e.Fields[i].Message
	}
	return strings.Join(msgs, "; ")
}

// APIError is the transport-neutral shape of a validation failure; the
// api package copies it into its response envelope.
type APIError struct {
	Code    string
	Message string
	Details map[string]interface{}
}

// ToAPIError flattens the failures. A single failure reports its field,
// tag and value; several are listed under "fields". The value is rendered
// as text so NaN and infinities stay encodable.
func (e *RequestValidationError) ToAPIError() *APIError {
	switch len(e.Fields) {
	case 0:
		return &APIError{Code: CodeValidation, Message: "Validation failed"}
	case 1:
		f := e.Fields[0]
		return &APIError{
			Code:    CodeValidation,
			Message: f.Message,
			Details: map[string]interface{}{"field": f.Field, "tag": f.Tag, "value": fmt.Sprint(f.Value)},
		}
	}

	var sb strings.Builder
	list := make([]map[string]interface{}, 0, len(e.Fields))
	for i, f := range e.Fields {
		if i > 0 {
			sb.WriteString("; ")
		}
		fmt.Fprintf(&sb, "%s: %s", f.Field, f.Message)
		list = append(list, map[string]interface{}{"field": f.Field, "tag": f.Tag, "message": f.Message})
	}
	return &APIError{
		Code:    CodeValidation,
		Message: sb.String(),
		Details: map[string]interface{}{"fields": list},
	}
}

// ValidateStruct runs the tag constraints of s. It returns nil when s is
// valid; the result is a concrete pointer so callers can reach the
// individual failures.
func ValidateStruct(s interface{}) *RequestValidationError {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}

	var failed validator.ValidationErrors
	if !errors.As(err, &failed) {
		return &RequestValidationError{Fields: []FieldError{{
			Field:   "unknown",
			Tag:     "unknown",
			Message: err.Error(),
		}}}
	}

	out := &RequestValidationError{Fields: make([]FieldError, 0, len(failed))}
	for _, fe := range failed {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Value:   fe.Value(),
			Message: describe(fe),
		})
	}
	return out
}

// describe renders a failed constraint as a sentence about the field.
func describe(fe validator.FieldError) string {
	name, param := fe.Field(), fe.Param()
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}

	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "finite":
		return name + " must be a finite number"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, param)
	case "min":
		return fmt.Sprintf("%s must be at least %s%s", name, param, unit)
	case "max":
		return fmt.Sprintf("%s must be at most %s%s", name, param, unit)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", name, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", name, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", name, param)
	case "lt":
		return fmt.Sprintf("%s must be less than %s", name, param)
	}
	return fmt.Sprintf("%s failed %s validation", name, fe.Tag())
}

// fieldName reports the name clients and operators know a field by: the
// json tag for request types, the koanf tag for configuration, then the
// query tag. Untagged fields keep their Go name.
func fieldName(f reflect.StructField) string {
	for _, key := range []string{"json", "koanf", "query"} {
		name, _, _ := strings.Cut(f.Tag.Get(key), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

// isFinite rejects NaN and infinities on float fields.
func isFinite(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Float32 && field.Kind() != reflect.Float64 {
		return true
	}
	v := field.Float()
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
