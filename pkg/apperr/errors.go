// Package apperr defines the error taxonomy shared by services and handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNoData means a filter matched nothing.
	ErrNoData = errors.New("no data found")
	// ErrInvalidData means records matched but none survived cleaning.
	ErrInvalidData = errors.New("no valid data after cleaning")
)

// ValidationError reports missing or invalid request input.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// MissingFields builds a ValidationError for absent inputs.
func MissingFields(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// Invalid builds a ValidationError with a free-form message.
func Invalid(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// UpstreamError is a non-success reply from an external provider.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s API error (status: %d): %s", e.Provider, e.StatusCode, strings.TrimSpace(e.Body))
}

// DataSourceError is a non-success reply from the mandi price source.
type DataSourceError struct {
	StatusCode int
	Body       string
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("mandi data source error (status: %d): %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// MalformedResponseError means a provider replied with an unexpected shape.
type MalformedResponseError struct {
	Provider string
	Reason   string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed %s response: %s", e.Provider, e.Reason)
}

// HTTPStatus maps an error to the status code a handler should return.
func HTTPStatus(err error) int {
	var validationErr *ValidationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoData), errors.Is(err, ErrInvalidData):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
