package util

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes
var (
	// ErrNotFound indicates a required resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidConfig indicates invalid configuration
	ErrInvalidConfig = errors.New("invalid configuration")
)

// RemoteFetchError is returned for any non-2xx response or transport failure.
// Status is 0 when no response was received.
type RemoteFetchError struct {
	Status int
	URL    string
	Err    error
}

func (e *RemoteFetchError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
}

func (e *RemoteFetchError) Unwrap() error { return e.Err }

// MalformedReferenceError means a profile reference carried no usable id
type MalformedReferenceError struct {
	Reference string
}

func (e *MalformedReferenceError) Error() string {
	return fmt.Sprintf("malformed profile reference %q: no id parameter", e.Reference)
}

// PersistenceConflictError wraps constraint violations other than the
// expected "already exists" no-op.
type PersistenceConflictError struct {
	Table string
	Err   error
}

func (e *PersistenceConflictError) Error() string {
	return fmt.Sprintf("%s: constraint violation: %v", e.Table, e.Err)
}

func (e *PersistenceConflictError) Unwrap() error { return e.Err }

// DateConversionError is raised while converting a release timestamp.
// Callers always recover it with a fallback date.
type DateConversionError struct {
	Timestamp int64
	Reason    string
}

func (e *DateConversionError) Error() string {
	return fmt.Sprintf("convert timestamp %d: %s", e.Timestamp, e.Reason)
}
