/*
errors.go - Centralized error types for the compensation engine

PURPOSE:
  All engine error types in one place. Callers branch with errors.Is;
  the API layer maps them to HTTP statuses via the helpers at the
  bottom.

ERROR CATEGORIES:
  1. Input errors     - calculation aborted, nothing partial returned
  2. Reference errors - unknown activity/KPI/task type; these are
     NON-FATAL inside a calculation (the entry is skipped and surfaced
     in the breakdown) and only become errors when a caller asks for a
     definition directly
  3. Workflow errors  - record lookup and status transitions

USAGE:
  if errors.Is(err, engine.ErrInvalidInput) {
      // 400
  }
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInput is returned when a calculation cannot start:
	// hours <= 0, negative quantity, missing function/shift, or an
	// ambiguous mode (both or neither of activity-mode and task-mode).
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownReference is returned when a referenced activity, KPI,
	// or task type is not in the catalog.
	ErrUnknownReference = errors.New("unknown reference")

	// ErrNotFound is returned when a launch record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidTransition is returned on an illegal status change
	// (e.g. approving an already-rejected record).
	ErrInvalidTransition = errors.New("invalid status transition")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidInputError pinpoints the offending field.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

// UnknownReferenceError names the missing catalog entry.
type UnknownReferenceError struct {
	Kind string // "activity", "kpi", "task_type"
	Name string
}

func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("unknown %s: %q", e.Kind, e.Name)
}

func (e *UnknownReferenceError) Unwrap() error { return ErrUnknownReference }

// TransitionError describes an illegal status change.
type TransitionError struct {
	ID   int64
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("record %d: cannot transition %s -> %s", e.ID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// EditRejectedError is returned when an admin edit targets a rejected
// record. Rejected records are immutable; the workflow expects a fresh
// launch for the date instead.
type EditRejectedError struct {
	ID int64
}

func (e *EditRejectedError) Error() string {
	return fmt.Sprintf("record %d: cannot edit a rejected record", e.ID)
}

func (e *EditRejectedError) Unwrap() error { return ErrInvalidTransition }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidTransition)
}

// IsNotFound returns true if the error indicates a missing record or
// catalog entry.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUnknownReference)
}
