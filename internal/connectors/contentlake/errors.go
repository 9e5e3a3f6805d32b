package contentlake

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/custodia-labs/lakesync/internal/core/domain"
)

// Listen feed errors.
var (
	// ErrChannel indicates the listen feed reported a channel error.
	ErrChannel = errors.New("contentlake: listen channel error")

	// ErrDisconnected indicates the server asked the client to disconnect
	// and not reconnect.
	ErrDisconnected = errors.New("contentlake: listener disconnected")
)

// notFoundHint is appended to 404 responses from the export endpoint.
const notFoundHint = "double-check project ID and dataset configuration"

// APIError represents a non-2xx response from the content platform.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("contentlake: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// Is reports domain.ErrUpstream so callers outside this package can match
// platform failures.
func (e *APIError) Is(target error) bool {
	return target == domain.ErrUpstream
}

// IsNotFound checks if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// IsUnauthorized checks if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized
	}
	return false
}

// IsForbidden checks if the error indicates a forbidden resource.
func IsForbidden(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusForbidden
	}
	return false
}

// isRetryable reports whether a listen failure may be retried by
// reconnecting.
func isRetryable(err error) bool {
	if errors.Is(err, ErrChannel) || errors.Is(err, ErrDisconnected) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	return true
}
