package storefrontapi

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is returned when the client configuration is incomplete
	ErrInvalidConfig = errors.New("invalid storefront api config")

	// ErrNetworkError is returned when the API could not be reached
	ErrNetworkError = errors.New("network error")

	// ErrUpstream is returned for 5xx responses
	ErrUpstream = errors.New("upstream error")

	// ErrDomainFailure is returned when the API answers with a failed status
	ErrDomainFailure = errors.New("request rejected by api")

	// ErrNotFound is returned for 404 responses
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized is returned for 401 and 403 responses
	ErrUnauthorized = errors.New("unauthorized")

	// ErrCircuitOpen is returned while the breaker rejects calls
	ErrCircuitOpen = errors.New("storefront api unavailable")
)

// APIError carries the status and message of a rejected request.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
	kind       error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%v (http %d)", e.kind, e.StatusCode)
	}
	return fmt.Sprintf("%v (http %d): %s", e.kind, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.kind
}

// IsTransient reports whether retrying the same call may succeed.
func IsTransient(err error) bool {
	return errors.Is(err, ErrNetworkError) ||
		errors.Is(err, ErrUpstream) ||
		errors.Is(err, ErrCircuitOpen)
}
