package errors

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

func NotFound(message string) error {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusNotFound}
}

func Unauthorized(message string) error {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusUnauthorized}
}

func BadRequest(message string) error {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusBadRequest}
}

// StatusCode returns the http status carried by err, or 500.
func StatusCode(err error) int {
	var e *ErrorWithStatusCode
	if errors.As(err, &e) {
		return e.StatusCode
	}
	var v *ValidationError
	if errors.As(err, &v) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// ValidationError holds per-field reasons, reported to the client before any mutation.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

func (e *ValidationError) Add(field, reason string) {
	e.Fields[field] = reason
}

func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// OrNil returns e as an error only if it carries at least one field.
func (e *ValidationError) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return fmt.Sprintf("Validation error: %s", strings.Join(parts, ", "))
}
