/*
store.go - Persistence interface for launch records

PURPOSE:
  Defines the contract between the engine's workflow and the database.
  The engine computes; the store keeps LaunchRecords and applies the
  two mutations the workflow allows after creation: a status
  transition and an admin edit.

IMPLEMENTATIONS:
  - store/sqlite: production storage
  - store/memory: in-memory, for tests

ID CONTRACT:
  Create assigns a strictly increasing int64 ID. Reconciliation relies
  on this ordering for its deterministic tie-break.
*/
package engine

import (
	"context"
	"time"
)

// LaunchFilter narrows List queries. Zero times mean an open bound.
type LaunchFilter struct {
	WorkerID WorkerID
	From     time.Time
	To       time.Time
}

// LaunchStore persists launch records.
type LaunchStore interface {
	// Create persists a new record, assigning ID, Ref, and CreatedAt.
	Create(ctx context.Context, rec *LaunchRecord) error

	// Get returns a record by ID, or ErrNotFound.
	Get(ctx context.Context, id int64) (*LaunchRecord, error)

	// SetStatus applies an approve/reject transition. Only pending
	// records may transition; anything else is ErrInvalidTransition.
	SetStatus(ctx context.Context, id int64, status Status) error

	// ApplyEdit replaces a record's input and breakdown in place and
	// marks it edited_admin. It does NOT create a new row and does not
	// change the approval status.
	ApplyEdit(ctx context.Context, id int64, input ShiftInput, bd Breakdown, editedBy string, at time.Time) error

	// List returns raw (un-reconciled) records matching the filter,
	// ordered by date then ID. Callers wanting canonical history must
	// pass the result through Reconcile.
	List(ctx context.Context, f LaunchFilter) ([]LaunchRecord, error)
}
