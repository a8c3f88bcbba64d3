package apiclient

import (
	"errors"
	"fmt"
	"net/http"

	internalerrors "github.com/jrsteele09/go-car-rental/internal/errors"
)

// Status classes an *APIError can be matched against with errors.Is
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")
	ErrServer       = errors.New("server error")
)

// APIError is a non-2xx/3xx response from the rental API. The body is kept
// raw so ErrorMessage can pick the most useful text out of it.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("request failed with status code %d", e.StatusCode)
}

// Is matches the status class sentinels
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrBadRequest:
		return e.StatusCode == http.StatusBadRequest
	case ErrServer:
		return e.StatusCode >= http.StatusInternalServerError
	}
	return false
}

// Payload parses the response body
func (e *APIError) Payload() ErrorPayload {
	return ParseErrorPayload(e.Body)
}

// ValidationError is a client-side rejection of a request before it is sent.
// It renders like a field error from the API.
type ValidationError struct {
	Field   string
	Message string
	// Cause optionally names the rule that failed, e.g. ErrInvalidDateRange
	Cause error
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() []error {
	if e.Cause == nil {
		return []error{internalerrors.ErrInvalidRequest}
	}
	return []error{internalerrors.ErrInvalidRequest, e.Cause}
}
