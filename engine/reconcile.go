/*
reconcile.go - History reconciliation

PURPOSE:
  The upstream workflow allows a worker's shift to be submitted, edited
  by an admin, rejected, and resubmitted - leaving several stored
  LaunchRecords for the same (worker, date). Reconcile collapses any
  such set to exactly one canonical record per date. Every listing and
  every total MUST pass through here first; no other component picks
  one-record-per-date.

ALGORITHM:
  1. Discard rejected records. They never contribute to history and
     never block a resubmission for the same date.
  2. Group the remainder by date (day granularity).
  3. Per date: if any record was admin-edited, the one with the latest
     edited_at wins (tie: highest id). Otherwise the latest created_at
     wins (tie: highest id).
  4. Emit one record per date, sorted by date descending.

  Deterministic by construction: ties always fall back to the id,
  which storage assigns strictly increasing. Empty input returns empty
  output; nothing here can fail.

STATE MACHINE (single record):
  pending -> approved | rejected
  pending/approved -> edit_status=edited_admin   (status unchanged)
  rejected is terminal for reconciliation but the row is kept - a
  worker may launch a brand-new record for the same date afterwards.
*/
package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Reconcile returns exactly one canonical record per distinct date
// present in the non-rejected input, sorted by date descending. It is
// a pure function over the snapshot it is given and is idempotent.
func Reconcile(records []LaunchRecord) []LaunchRecord {
	byDate := map[string]LaunchRecord{}
	for _, r := range records {
		if r.Status == StatusRejected {
			continue
		}
		key := r.DateKey()
		current, exists := byDate[key]
		if !exists || wins(r, current) {
			byDate[key] = r
		}
	}

	out := make([]LaunchRecord, 0, len(byDate))
	for _, r := range byDate {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// wins reports whether candidate beats incumbent for the same date.
func wins(candidate, incumbent LaunchRecord) bool {
	ce := candidate.EditStatus == EditAdmin
	ie := incumbent.EditStatus == EditAdmin

	// An admin edit always outranks an original.
	if ce != ie {
		return ce
	}

	if ce {
		if !candidate.EditedAt.Equal(incumbent.EditedAt) {
			return candidate.EditedAt.After(incumbent.EditedAt)
		}
		return candidate.ID > incumbent.ID
	}

	if !candidate.CreatedAt.Equal(incumbent.CreatedAt) {
		return candidate.CreatedAt.After(incumbent.CreatedAt)
	}
	return candidate.ID > incumbent.ID
}

// ReconciledTotal reconciles the records and sums the canonical
// totals. This is the only sanctioned way to compute a period
// aggregate; summing raw record sets double-counts duplicates.
func ReconciledTotal(records []LaunchRecord) decimal.Decimal {
	total := decimal.Zero
	for _, r := range Reconcile(records) {
		total = total.Add(r.Breakdown.Total)
	}
	return total
}
