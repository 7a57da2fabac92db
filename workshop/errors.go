/*
errors.go - Centralized error types for the workshop engine

PURPOSE:
  All error kinds in one place for consistency and discoverability.
  Every error carries a stable machine-readable kind plus a human message;
  no internal stack detail reaches end users.

ERROR CATEGORIES:
  1. Validation errors - Rejected before any mutation
  2. Conflict errors   - Slot taken, duplicate active plate, quote already accepted
  3. Not-found errors  - Unknown work item or invoice
  4. Persistence errors - Store-level failures on the primary path

PROPAGATION POLICY:
  Validation and conflict errors are detected before any mutation and
  returned synchronously. Persistence errors abort the operation.
  Audit-write failures are never propagated (see audit package).

USAGE:
  if workshop.IsConflict(err) {
      // render 409
  }
*/
package workshop

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation marks input rejected before any mutation.
	ErrValidation = errors.New("validation failed")

	// ErrConflict marks an operation that lost to existing state:
	// a reserved slot, an active entry for the same plate, or a
	// quote that was already accepted.
	ErrConflict = errors.New("conflict")

	// ErrNotFound marks a reference to an unknown work item or invoice.
	ErrNotFound = errors.New("not found")

	// ErrPersistence marks a store-level failure on the primary path.
	ErrPersistence = errors.New("persistence failure")
)

// =============================================================================
// STRUCTURED ERRORS - Carry context for precise user messages
// =============================================================================

// ValidationError reports which field failed and why. Reason is written to
// be user-renderable (it names the holiday when a date falls on one).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ConflictError reports what the operation collided with.
type ConflictError struct {
	Resource string // "slot", "plate", "invoice"
	Detail   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Resource, e.Detail)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// NotFoundError reports the missing record kind and id.
type NotFoundError struct {
	Kind string // "work item", "invoice"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// PersistenceError wraps a collaborator failure with the operation name.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return ErrPersistence }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsValidation returns true if the error is due to invalid client input.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsConflict returns true if the error lost a check-and-reserve race or
// an idempotency guard.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// IsNotFound returns true if the error references an unknown record.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
