package errors

import (
	"errors"
	"net/http"

	"marketplace/internal/validation"
)

var (
	// ErrNotFound is returned when an identifier does not resolve to a record.
	ErrNotFound = errors.New("record not found")
	// ErrAuthentication is returned when a bearer token is missing or invalid.
	ErrAuthentication = errors.New("not authenticated")
)

// ValidationError carries the field violations for a rejected write.
type ValidationError struct {
	Fields validation.Errors
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// NewValidationError wraps a violations map.
func NewValidationError(fields validation.Errors) *ValidationError {
	return &ValidationError{Fields: fields}
}

// ErrorsResponse is the error envelope for every failure the API reports.
// Non-field failures are keyed under "base".
type ErrorsResponse struct {
	Errors validation.Errors `json:"errors"`
}

// Base builds an envelope with a single message under the "base" key.
func Base(message string) ErrorsResponse {
	return ErrorsResponse{Errors: validation.Errors{"base": {message}}}
}

// ToHTTP maps a domain error to its status code and response body. This is
// the only place handlers convert errors to transport.
func ToHTTP(err error) (int, ErrorsResponse) {
	var vErr *ValidationError
	switch {
	case errors.As(err, &vErr):
		return http.StatusUnprocessableEntity, ErrorsResponse{Errors: vErr.Fields}
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, Base("not found")
	case errors.Is(err, ErrAuthentication):
		return http.StatusUnauthorized, Base("not authenticated")
	default:
		return http.StatusInternalServerError, Base("internal server error")
	}
}
