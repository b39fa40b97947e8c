package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/comp-engine/engine"
	"github.com/warp/comp-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRecord(worker string, date time.Time) engine.LaunchRecord {
	qty := decimal.NewFromInt(100)
	hrs := decimal.NewFromInt(8)
	return engine.LaunchRecord{
		WorkerID: engine.WorkerID(worker),
		Date:     date,
		Input: engine.ShiftInput{
			Function:    "separador",
			Shift:       "manha",
			Date:        date,
			Activity:    &engine.ActivityEntry{Name: "separacao", Quantity: qty, Hours: hrs},
			ClaimedKPIs: []string{"assiduidade", "qualidade"},
		},
		Breakdown: engine.Breakdown{
			GrossActivityValue: decimal.RequireFromString("24.00"),
			SubtotalActivities: decimal.RequireFromString("12.00"),
			KPIBonus:           decimal.RequireFromString("6.00"),
			CreditedKPIs:       []string{"assiduidade", "qualidade"},
			Total:              decimal.RequireFromString("18.00"),
		},
	}
}

var day = time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

// =============================================================================
// CREATE / GET
// =============================================================================

func TestCreate_AssignsIncreasingIDs(t *testing.T) {
	// GIVEN: A fresh store
	// WHEN: Creating two records
	// THEN: IDs strictly increase and refs are distinct non-empty uuids

	store := newTestStore(t)
	ctx := context.Background()

	r1 := sampleRecord("w-1", day)
	r2 := sampleRecord("w-1", day.AddDate(0, 0, 1))
	require.NoError(t, store.Create(ctx, &r1))
	require.NoError(t, store.Create(ctx, &r2))

	assert.Greater(t, r2.ID, r1.ID)
	assert.NotEmpty(t, r1.Ref)
	assert.NotEqual(t, r1.Ref, r2.Ref)
	assert.Equal(t, engine.StatusPending, r1.Status)
	assert.Equal(t, engine.EditOriginal, r1.EditStatus)
	assert.False(t, r1.CreatedAt.IsZero())
}

func TestCreateGet_RoundTrip(t *testing.T) {
	// GIVEN: A persisted record
	// WHEN: Reading it back by ID
	// THEN: Money stays exact and the KPI lists stay typed string slices

	store := newTestStore(t)
	ctx := context.Background()

	rec := sampleRecord("w-1", day)
	require.NoError(t, store.Create(ctx, &rec))

	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)

	assert.Equal(t, rec.Ref, got.Ref)
	assert.Equal(t, engine.WorkerID("w-1"), got.WorkerID)
	assert.Equal(t, "2025-03-10", got.DateKey())
	assert.True(t, got.Breakdown.Total.Equal(decimal.RequireFromString("18.00")),
		"total %s", got.Breakdown.Total)
	assert.Equal(t, []string{"assiduidade", "qualidade"}, got.Breakdown.CreditedKPIs)
	assert.Equal(t, []string{"assiduidade", "qualidade"}, got.Input.ClaimedKPIs)
	require.NotNil(t, got.Input.Activity)
	assert.True(t, got.Input.Activity.Quantity.Equal(decimal.NewFromInt(100)))
}

func TestGet_NotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Get(context.Background(), 12345)
	assert.ErrorIs(t, err, engine.ErrNotFound)
	assert.True(t, engine.IsNotFound(err))
}

// =============================================================================
// STATUS TRANSITIONS
// =============================================================================

func TestSetStatus_PendingOnly(t *testing.T) {
	// GIVEN: A pending record
	// WHEN: Approving it, then approving it again
	// THEN: The first transition succeeds; the second is a conflict

	store := newTestStore(t)
	ctx := context.Background()

	rec := sampleRecord("w-1", day)
	require.NoError(t, store.Create(ctx, &rec))

	require.NoError(t, store.SetStatus(ctx, rec.ID, engine.StatusApproved))

	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusApproved, got.Status)

	err = store.SetStatus(ctx, rec.ID, engine.StatusApproved)
	assert.ErrorIs(t, err, engine.ErrInvalidTransition)

	var trErr *engine.TransitionError
	require.ErrorAs(t, err, &trErr)
	assert.Equal(t, engine.StatusApproved, trErr.From)
}

func TestSetStatus_RejectsBadTargets(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := sampleRecord("w-1", day)
	require.NoError(t, store.Create(ctx, &rec))

	err := store.SetStatus(ctx, rec.ID, engine.StatusPending)
	assert.ErrorIs(t, err, engine.ErrInvalidInput, "pending is not a transition target")

	err = store.SetStatus(ctx, 9999, engine.StatusApproved)
	assert.ErrorIs(t, err, engine.ErrNotFound)
}

// =============================================================================
// ADMIN EDITS
// =============================================================================

func TestApplyEdit_RewritesInPlace(t *testing.T) {
	// GIVEN: An approved record
	// WHEN: An admin applies a corrected input and breakdown
	// THEN: The same row carries the new values, marked edited_admin,
	//       with approval status untouched and no extra row created

	store := newTestStore(t)
	ctx := context.Background()

	rec := sampleRecord("w-1", day)
	require.NoError(t, store.Create(ctx, &rec))
	require.NoError(t, store.SetStatus(ctx, rec.ID, engine.StatusApproved))

	newInput := rec.Input
	newInput.ManualExtra = decimal.RequireFromString("5.00")
	newBd := rec.Breakdown
	newBd.ManualExtra = decimal.RequireFromString("5.00")
	newBd.Total = decimal.RequireFromString("23.00")

	editedAt := time.Date(2025, time.March, 11, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.ApplyEdit(ctx, rec.ID, newInput, newBd, "admin-1", editedAt))

	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.EditAdmin, got.EditStatus)
	assert.Equal(t, "admin-1", got.EditedBy)
	assert.True(t, got.EditedAt.Equal(editedAt))
	assert.Equal(t, engine.StatusApproved, got.Status, "edit must not change approval status")
	assert.True(t, got.Breakdown.Total.Equal(decimal.RequireFromString("23.00")))

	all, err := store.List(ctx, engine.LaunchFilter{WorkerID: "w-1"})
	require.NoError(t, err)
	assert.Len(t, all, 1, "edit rewrites in place, never inserts")
}

func TestApplyEdit_RefusesRejected(t *testing.T) {
	// GIVEN: A rejected record
	// WHEN: Trying to edit it
	// THEN: Refused - the workflow expects a fresh launch instead

	store := newTestStore(t)
	ctx := context.Background()

	rec := sampleRecord("w-1", day)
	require.NoError(t, store.Create(ctx, &rec))
	require.NoError(t, store.SetStatus(ctx, rec.ID, engine.StatusRejected))

	err := store.ApplyEdit(ctx, rec.ID, rec.Input, rec.Breakdown, "admin-1", time.Now())
	assert.ErrorIs(t, err, engine.ErrInvalidTransition)

	var editErr *engine.EditRejectedError
	require.ErrorAs(t, err, &editErr)
	assert.Equal(t, rec.ID, editErr.ID)
	assert.Contains(t, err.Error(), "cannot edit a rejected record")
}

// =============================================================================
// LISTING
// =============================================================================

func TestList_FiltersAndOrder(t *testing.T) {
	// GIVEN: Records for two workers across three dates
	// WHEN: Listing with worker and date-range filters
	// THEN: Only matching rows return, ordered by date then ID

	store := newTestStore(t)
	ctx := context.Background()

	r1 := sampleRecord("w-1", day.AddDate(0, 0, 2))
	r2 := sampleRecord("w-1", day)
	r3 := sampleRecord("w-2", day)
	r4 := sampleRecord("w-1", day.AddDate(0, 0, 5))
	for _, r := range []*engine.LaunchRecord{&r1, &r2, &r3, &r4} {
		require.NoError(t, store.Create(ctx, r))
	}

	got, err := store.List(ctx, engine.LaunchFilter{WorkerID: "w-1"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, r2.ID, got[0].ID, "ordered by date ascending")
	assert.Equal(t, r1.ID, got[1].ID)
	assert.Equal(t, r4.ID, got[2].ID)

	got, err = store.List(ctx, engine.LaunchFilter{
		WorkerID: "w-1",
		From:     day,
		To:       day.AddDate(0, 0, 2),
	})
	require.NoError(t, err)
	assert.Len(t, got, 2, "range bounds are inclusive")

	got, err = store.List(ctx, engine.LaunchFilter{WorkerID: "w-9"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestList_FeedsReconciliation(t *testing.T) {
	// GIVEN: A duplicated date where the second record was admin-edited
	// WHEN: Listing raw rows and reconciling them
	// THEN: Exactly the edited record is canonical

	store := newTestStore(t)
	ctx := context.Background()

	r1 := sampleRecord("w-1", day)
	r2 := sampleRecord("w-1", day)
	require.NoError(t, store.Create(ctx, &r1))
	require.NoError(t, store.Create(ctx, &r2))

	bd := r2.Breakdown
	bd.Total = decimal.RequireFromString("25.00")
	require.NoError(t, store.ApplyEdit(ctx, r2.ID, r2.Input, bd, "admin-1", time.Now()))

	raw, err := store.List(ctx, engine.LaunchFilter{WorkerID: "w-1"})
	require.NoError(t, err)
	require.Len(t, raw, 2)

	canonical := engine.Reconcile(raw)
	require.Len(t, canonical, 1)
	assert.Equal(t, r2.ID, canonical[0].ID)
	assert.True(t, canonical[0].Breakdown.Total.Equal(decimal.RequireFromString("25.00")))
}
