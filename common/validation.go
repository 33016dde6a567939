package common

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ValidationError represents a single field-level validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors collects validation errors for a single request payload
type FieldErrors struct {
	Errors []ValidationError
}

// Add appends a validation error
func (f *FieldErrors) Add(field, message string) {
	f.Errors = append(f.Errors, ValidationError{Field: field, Message: message})
}

// Err returns the collected errors as a domain error, or nil when clean
func (f *FieldErrors) Err() error {
	if len(f.Errors) == 0 {
		return nil
	}
	return Invalid(f.Errors)
}

// ValidateRequired checks if a string field is not empty
func ValidateRequired(field, value string) *ValidationError {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("%s is required", field),
		}
	}
	return nil
}

// ValidateEnum checks if value is in allowed list
func ValidateEnum(field, value string, allowed []string) *ValidationError {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("%s must be one of: %s", field, strings.Join(allowed, ", ")),
	}
}

// DateLayout is the calendar-date format used on the wire and in storage
const DateLayout = "2006-01-02"

// ValidateDate checks if value is a calendar date in YYYY-MM-DD format
func ValidateDate(field, value string) *ValidationError {
	if _, err := time.Parse(DateLayout, value); err != nil {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field),
		}
	}
	return nil
}

// ValidateRange checks if value is within [min, max] inclusive
func ValidateRange(field string, value, min, max int) *ValidationError {
	if value < min || value > max {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("%s must be between %d and %d", field, min, max),
		}
	}
	return nil
}

// Username validation regex: lowercase letters, digits, dots, dashes, underscores
var usernameRegex = regexp.MustCompile(`^[a-z0-9._-]{3,32}$`)

// ValidateUsername checks if username has an acceptable format
func ValidateUsername(username string) bool {
	return usernameRegex.MatchString(username)
}
