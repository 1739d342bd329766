// Billsync - Congress.gov Ingestion Resilience for FedBillX
// Copyright 2026 FedBillX contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fedbillx/billsync

// Package validation provides struct validation using go-playground/validator
// v10. A thread-safe singleton validator instance backs configuration
// validation across the application.
//
// Example usage:
//
//	type RateLimitConfig struct {
//	    RequestsPerSecond float64 `validate:"gt=0"`
//	    BurstSize         int     `validate:"min=1"`
//	}
//
//	if err := validation.ValidateStruct(&cfg); err != nil {
//	    return fmt.Errorf("invalid rate limit config: %w", err)
//	}
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// singleton validator instance
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError represents a single field validation failure.
type FieldError struct {
	field string
	tag   string
	param string
	value interface{}
}

// Field returns the struct field name that failed validation.
func (e *FieldError) Field() string { return e.field }

// Tag returns the validation tag that failed.
func (e *FieldError) Tag() string { return e.tag }

// Param returns the parameter for the validation tag (e.g., "1" for "min=1").
func (e *FieldError) Param() string { return e.param }

// Error returns a human-readable error message.
func (e *FieldError) Error() string {
	if e.param != "" {
		return fmt.Sprintf("%s failed %s=%s validation (value: %v)", e.field, e.tag, e.param, e.value)
	}
	return fmt.Sprintf("%s failed %s validation (value: %v)", e.field, e.tag, e.value)
}

// StructError is a collection of field validation failures for one struct.
type StructError struct {
	errors []FieldError
}

// Errors returns the individual field errors.
func (se *StructError) Errors() []FieldError { return se.errors }

// Error implements the error interface, joining all field messages.
func (se *StructError) Error() string {
	if len(se.errors) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(se.errors))
	for i := range se.errors {
		messages[i] = se.errors[i].Error()
	}
	return strings.Join(messages, "; ")
}

// GetValidator returns the singleton validator instance. Thread-safe; the
// instance caches struct metadata so reuse is cheap.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateStruct validates a struct via the singleton validator.
// Returns nil on success, or *StructError listing every failed field.
func ValidateStruct(s interface{}) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		// InvalidValidationError (non-struct input) or similar
		return fmt.Errorf("validation: %w", err)
	}

	fieldErrors := make([]FieldError, len(validationErrs))
	for i, fe := range validationErrs {
		fieldErrors[i] = FieldError{
			field: fe.Field(),
			tag:   fe.Tag(),
			param: fe.Param(),
			value: fe.Value(),
		}
	}

	return &StructError{errors: fieldErrors}
}
