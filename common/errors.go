package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ErrorKind classifies a domain-rule failure. Handlers and rule functions
// return these instead of writing HTTP responses; the kind is translated to a
// status code only at the transport boundary (Respond).
type ErrorKind int

const (
	KindUnauthenticated ErrorKind = iota
	KindForbidden
	KindNotFound
	KindValidation
	KindConflict
	KindBadRequest
	KindInternal
)

// Error is a domain error carrying a kind and, for validation failures,
// field-level messages.
type Error struct {
	Kind    ErrorKind
	Message string
	Fields  []ValidationError
}

func (e *Error) Error() string {
	return e.Message
}

func Unauthenticated(message string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func BadRequest(message string) *Error {
	return &Error{Kind: KindBadRequest, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Invalid wraps field-level validation errors.
func Invalid(fields []ValidationError) *Error {
	return &Error{Kind: KindValidation, Message: "Validation failed", Fields: fields}
}

func statusFor(kind ErrorKind) int {
	switch kind {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindBadRequest:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes err to the client. Domain errors map to their status code;
// anything else is reported as a generic server error without leaking
// internals.
func Respond(c *gin.Context, err error) {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		body := gin.H{"error": domainErr.Message}
		if len(domainErr.Fields) > 0 {
			body["errors"] = domainErr.Fields
		}
		c.JSON(statusFor(domainErr.Kind), body)
		return
	}

	c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// IsDuplicateKey reports whether err is a unique-constraint violation
// surfaced by the store.
func IsDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
