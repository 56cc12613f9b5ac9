package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers missing users and unresolvable services.
	ErrNotFound = errors.New("not found")

	// ErrUpstreamUnavailable means the device-session service could not
	// be reached at the transport level.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrRuntimeUnavailable means the container runtime could not be
	// reached, or a log stream broke mid-read.
	ErrRuntimeUnavailable = errors.New("container runtime unavailable")
)

// UpstreamRejectedError is returned when the device-session service was
// reachable but answered a delete with a non-success status. Unlike the
// device list case this is never swallowed.
type UpstreamRejectedError struct {
	Status int
}

func (e *UpstreamRejectedError) Error() string {
	return fmt.Sprintf("upstream rejected request with status %d", e.Status)
}

// ConflictError reports a uniqueness collision on user creation,
// naming the colliding fields.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// ValidationError carries a user-facing message for malformed input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
