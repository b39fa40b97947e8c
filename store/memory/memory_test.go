package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/comp-engine/engine"
	"github.com/warp/comp-engine/store/memory"
)

func record(worker string, date time.Time) engine.LaunchRecord {
	return engine.LaunchRecord{
		WorkerID:  engine.WorkerID(worker),
		Date:      date,
		Breakdown: engine.Breakdown{Total: decimal.RequireFromString("18.00")},
	}
}

var day = time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

func TestCreate_MatchesStoreContract(t *testing.T) {
	// GIVEN: A fresh in-memory store
	// WHEN: Creating two records
	// THEN: Same contract as the SQLite store - strictly increasing
	//       IDs, distinct refs, pending/original defaults

	store := memory.New()
	ctx := context.Background()

	r1 := record("w-1", day)
	r2 := record("w-1", day.AddDate(0, 0, 1))
	require.NoError(t, store.Create(ctx, &r1))
	require.NoError(t, store.Create(ctx, &r2))

	assert.Greater(t, r2.ID, r1.ID)
	assert.NotEmpty(t, r1.Ref)
	assert.NotEqual(t, r1.Ref, r2.Ref)
	assert.Equal(t, engine.StatusPending, r1.Status)
	assert.Equal(t, engine.EditOriginal, r1.EditStatus)
}

func TestSetStatus_PendingOnly(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	rec := record("w-1", day)
	require.NoError(t, store.Create(ctx, &rec))
	require.NoError(t, store.SetStatus(ctx, rec.ID, engine.StatusApproved))

	err := store.SetStatus(ctx, rec.ID, engine.StatusRejected)
	assert.ErrorIs(t, err, engine.ErrInvalidTransition)

	err = store.SetStatus(ctx, 999, engine.StatusApproved)
	assert.ErrorIs(t, err, engine.ErrNotFound)
}

func TestApplyEdit_RefusesRejected(t *testing.T) {
	// GIVEN: A rejected record
	// WHEN: Trying to edit it
	// THEN: The dedicated edit-rejected error, naming the record

	store := memory.New()
	ctx := context.Background()

	rec := record("w-1", day)
	require.NoError(t, store.Create(ctx, &rec))
	require.NoError(t, store.SetStatus(ctx, rec.ID, engine.StatusRejected))

	err := store.ApplyEdit(ctx, rec.ID, rec.Input, rec.Breakdown, "admin-1", time.Now())
	assert.ErrorIs(t, err, engine.ErrInvalidTransition)

	var editErr *engine.EditRejectedError
	require.ErrorAs(t, err, &editErr)
	assert.Equal(t, rec.ID, editErr.ID)
	assert.Contains(t, err.Error(), "cannot edit a rejected record")
}
