package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a document type that has no declared collection.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrSyncInProgress indicates a sync is already running.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrUpstream indicates the content platform reported a failure,
	// either as an HTTP status or as an error record inside the export stream.
	ErrUpstream = errors.New("upstream error")

	// ErrStoreClosed indicates the node store has been closed.
	ErrStoreClosed = errors.New("store closed")
)

// UpstreamError is an error-shaped record found in the export stream.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// Is reports ErrUpstream so callers can match any upstream failure.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}
