package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/comp-engine/engine"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var (
	march10 = time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	march11 = time.Date(2025, time.March, 11, 0, 0, 0, 0, time.UTC)
	march12 = time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC)
)

func original(id int64, date, createdAt time.Time, total string) engine.LaunchRecord {
	return engine.LaunchRecord{
		ID:         id,
		WorkerID:   "w-1",
		Date:       date,
		Status:     engine.StatusPending,
		EditStatus: engine.EditOriginal,
		CreatedAt:  createdAt,
		Breakdown:  engine.Breakdown{Total: dec(total)},
	}
}

func edited(id int64, date, editedAt time.Time, total string) engine.LaunchRecord {
	r := original(id, date, editedAt.Add(-time.Hour), total)
	r.EditStatus = engine.EditAdmin
	r.EditedBy = "admin-1"
	r.EditedAt = editedAt
	return r
}

func rejected(id int64, date, createdAt time.Time, total string) engine.LaunchRecord {
	r := original(id, date, createdAt, total)
	r.Status = engine.StatusRejected
	return r
}

func ids(records []engine.LaunchRecord) []int64 {
	out := make([]int64, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

// =============================================================================
// CANONICAL SELECTION
// =============================================================================

func TestReconcile_AdminEditWinsOverOriginal(t *testing.T) {
	// GIVEN: Two records for the same date: an original and an admin edit
	// WHEN: Reconciling
	// THEN: Only the edited record survives, regardless of creation order

	noon := march10.Add(12 * time.Hour)
	records := []engine.LaunchRecord{
		original(10, march10, noon, "15.00"),
		edited(11, march10, noon.Add(time.Hour), "18.00"),
	}

	canonical := engine.Reconcile(records)
	require.Len(t, canonical, 1)
	assert.Equal(t, int64(11), canonical[0].ID)
	assert.True(t, canonical[0].Breakdown.Total.Equal(dec("18.00")))
}

func TestReconcile_EditWinsEvenWhenOriginalIsNewer(t *testing.T) {
	// GIVEN: An admin edit followed by a later original for the same date
	// WHEN: Reconciling
	// THEN: The edit still wins; recency never outranks an admin edit

	noon := march10.Add(12 * time.Hour)
	records := []engine.LaunchRecord{
		edited(5, march10, noon, "20.00"),
		original(9, march10, noon.Add(3*time.Hour), "15.00"),
	}

	canonical := engine.Reconcile(records)
	require.Len(t, canonical, 1)
	assert.Equal(t, int64(5), canonical[0].ID)
}

func TestReconcile_LatestCreatedWinsAmongOriginals(t *testing.T) {
	// GIVEN: Three originals for one date with distinct creation times
	// WHEN: Reconciling
	// THEN: The most recently created record wins

	noon := march10.Add(12 * time.Hour)
	records := []engine.LaunchRecord{
		original(1, march10, noon, "10.00"),
		original(2, march10, noon.Add(2*time.Hour), "11.00"),
		original(3, march10, noon.Add(time.Hour), "12.00"),
	}

	canonical := engine.Reconcile(records)
	require.Len(t, canonical, 1)
	assert.Equal(t, int64(2), canonical[0].ID)
}

func TestReconcile_TiesFallBackToHighestID(t *testing.T) {
	// GIVEN: Identical timestamps among originals and among edits
	// WHEN: Reconciling each date
	// THEN: The higher storage ID wins deterministically

	noon := march10.Add(12 * time.Hour)
	records := []engine.LaunchRecord{
		original(4, march10, noon, "10.00"),
		original(7, march10, noon, "11.00"),
		edited(20, march11, noon, "12.00"),
		edited(22, march11, noon, "13.00"),
	}

	canonical := engine.Reconcile(records)
	require.Len(t, canonical, 2)
	assert.Equal(t, []int64{22, 7}, ids(canonical)) // date descending
}

// =============================================================================
// REJECTED RECORDS
// =============================================================================

func TestReconcile_RejectedNeverContributes(t *testing.T) {
	// GIVEN: A rejected record and a fresh resubmission for the same date,
	//        plus a date where every record was rejected
	// WHEN: Reconciling
	// THEN: The resubmission wins its date; the all-rejected date is absent

	noon := march10.Add(12 * time.Hour)
	records := []engine.LaunchRecord{
		rejected(1, march10, noon, "99.00"),
		original(2, march10, noon.Add(-time.Hour), "15.00"), // older but not rejected
		rejected(3, march11, noon, "50.00"),
	}

	canonical := engine.Reconcile(records)
	require.Len(t, canonical, 1)
	assert.Equal(t, int64(2), canonical[0].ID)
}

func TestReconcile_EmptyInput(t *testing.T) {
	// GIVEN: No records at all
	// WHEN: Reconciling
	// THEN: Empty output, no error, no panic

	assert.Empty(t, engine.Reconcile(nil))
	assert.Empty(t, engine.Reconcile([]engine.LaunchRecord{}))
}

// =============================================================================
// STRUCTURAL PROPERTIES
// =============================================================================

func TestReconcile_OnePerDateSortedDescending(t *testing.T) {
	// GIVEN: Duplicates spread over three dates
	// WHEN: Reconciling
	// THEN: Exactly one record per date, newest date first

	noon := march10.Add(12 * time.Hour)
	records := []engine.LaunchRecord{
		original(1, march11, noon, "10.00"),
		original(2, march10, noon, "11.00"),
		original(3, march12, noon, "12.00"),
		original(4, march10, noon.Add(time.Hour), "13.00"),
	}

	canonical := engine.Reconcile(records)
	require.Len(t, canonical, 3)
	assert.Equal(t, []int64{3, 1, 4}, ids(canonical))
}

func TestReconcile_Idempotent(t *testing.T) {
	// GIVEN: A messy record set already reconciled once
	// WHEN: Reconciling the result again
	// THEN: Nothing changes

	noon := march10.Add(12 * time.Hour)
	records := []engine.LaunchRecord{
		original(1, march10, noon, "10.00"),
		edited(2, march10, noon, "18.00"),
		rejected(3, march11, noon, "99.00"),
		original(4, march12, noon, "20.00"),
	}

	once := engine.Reconcile(records)
	twice := engine.Reconcile(once)
	assert.Equal(t, once, twice)
}

func TestReconciledTotal_CountsEachDateOnce(t *testing.T) {
	// GIVEN: A duplicated date (original + edit) and a clean date
	// WHEN: Summing through ReconciledTotal
	// THEN: The duplicated date contributes only its canonical total

	noon := march10.Add(12 * time.Hour)
	records := []engine.LaunchRecord{
		original(1, march10, noon, "15.00"),
		edited(2, march10, noon, "18.00"),
		original(3, march11, noon, "20.00"),
		rejected(4, march12, noon, "99.00"),
	}

	total := engine.ReconciledTotal(records)
	assert.True(t, total.Equal(dec("38.00")), "total %s", total)
}
