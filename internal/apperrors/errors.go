// Package apperrors defines the error taxonomy shared by every core
// operation. Transport maps these to status codes at the edge; nothing
// below the handlers knows about HTTP.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks a referenced record that does not exist. Not
	// retryable; surfaced to the caller as-is.
	ErrNotFound = errors.New("record not found")

	// ErrForbidden marks an authorization invariant violation, e.g. a
	// non-debtor marking a settlement paid. Not retryable.
	ErrForbidden = errors.New("operation not permitted")
)

// NotFound wraps ErrNotFound with the record kind and ID.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}

// Forbidden wraps ErrForbidden with a caller-facing reason.
func Forbidden(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrForbidden)
}

// ValidationError reports malformed or inconsistent split input. Nothing
// is persisted; the caller must fix the request and resubmit.
type ValidationError struct {
	Reason   string
	Expected float64
	Actual   float64
}

func (e *ValidationError) Error() string {
	if e.Expected != 0 || e.Actual != 0 {
		return fmt.Sprintf("validation failed: %s (expected %.2f, got %.2f)", e.Reason, e.Expected, e.Actual)
	}
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

// PersistenceError reports a transient backend failure. Every mutating
// core operation is idempotent, so callers may retry.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// PartialFailure reports a multi-step operation that completed some but
// not all sub-writes. It is distinct from total failure so the caller can
// retry only the missing piece instead of re-creating the whole thing.
type PartialFailure struct {
	Op        string
	Completed []string
	Failed    map[string]error
}

func (e *PartialFailure) Error() string {
	return fmt.Sprintf("%s: %d of %d sub-writes failed",
		e.Op, len(e.Failed), len(e.Failed)+len(e.Completed))
}
