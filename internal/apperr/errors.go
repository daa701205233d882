// Package apperr defines the error kinds surfaced by the note engine.
// Callers branch with errors.Is rather than parsing messages.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the target note does not exist or belongs to
	// another owner.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateTitle means the (owner, title) uniqueness constraint
	// was violated.
	ErrDuplicateTitle = errors.New("duplicate title")
	// ErrUnresolvedLink means content references a title with no live
	// note under the same owner.
	ErrUnresolvedLink = errors.New("unresolved link")
	// ErrTxConflict is a retryable store-level transaction abort.
	ErrTxConflict = errors.New("transaction conflict")
	// ErrStoreUnavailable is a non-retryable infrastructure failure.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrChecksumMismatch means an If-Match precondition failed.
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// UnresolvedLinkError carries the offending marker title so clients can
// report which reference is dangling. Unwraps to ErrUnresolvedLink.
type UnresolvedLinkError struct {
	Title string
}

func (e *UnresolvedLinkError) Error() string {
	return fmt.Sprintf("unresolved link: [[%s]]", e.Title)
}

func (e *UnresolvedLinkError) Unwrap() error { return ErrUnresolvedLink }
