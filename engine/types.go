/*
Package engine computes variable compensation for warehouse shift work
and reconciles duplicated compensation records.

PURPOSE:
  Five pure calculators turn one shift's raw numbers into a payable
  breakdown:
  - tiers.go:     productivity rate -> per-unit value (tier table scan)
  - activity.go:  one or many activity entries -> gross + margin subtotal
  - kpi.go:       claimed KPIs -> credited bonus (policy + cap)
  - assemble.go:  composes everything into a Breakdown
  - reconcile.go: picks the canonical record per worker/date from a set
                  that may contain duplicates and admin edits

DESIGN PRINCIPLES:
  1. Purity: every calculator is a function of its input plus an
     immutable catalog snapshot. No shared mutable state, safe to call
     concurrently.
  2. Precision: decimal.Decimal for all money and rates, never float64.
  3. Typed lists: claimed/credited KPI names are []string through the
     whole pipeline; JSON appears only at the persistence boundary.
  4. Non-fatal references: an unknown activity or KPI name is skipped
     and surfaced in the breakdown, it never aborts a calculation.

KEY CONCEPTS IN THIS FILE (types.go):
  - ShiftInput:   one worker-submitted shift's raw numbers (transient)
  - Breakdown:    the computed compensation, component by component
  - LaunchRecord: persisted ShiftInput snapshot + Breakdown + workflow
                  state (status, admin-edit metadata)

SEE ALSO:
  - catalog/:   the reference tables calculations read
  - taskmatch/: valid-task counting for task-paid roles
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/comp-engine/taskmatch"
)

// WorkerID identifies a worker. Identity itself comes from an upstream
// provider; the engine only carries the ID through.
type WorkerID string

// =============================================================================
// SHIFT INPUT - raw numbers for one shift (input only, never mutated)
// =============================================================================

// ActivityEntry is one produced-quantity line of a shift.
type ActivityEntry struct {
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	Hours    decimal.Decimal `json:"hours"`
}

// ShiftInput is one worker-submitted shift. Exactly one of the two
// payment modes must be populated:
//
//   - activity mode: Activity (single) or Activities (multiple)
//   - task mode:     OperatorName plus TaskExport or TaskCount
type ShiftInput struct {
	Function string    `json:"function"`
	Shift    string    `json:"shift"`
	Date     time.Time `json:"date"` // day granularity

	Activity   *ActivityEntry  `json:"activity,omitempty"`
	Activities []ActivityEntry `json:"multiple_activities,omitempty"`

	OperatorName string `json:"operator_name,omitempty"`
	TaskExport   string `json:"valid_task_export,omitempty"`
	TaskCount    *int   `json:"valid_task_count,omitempty"` // pre-counted valid tasks, when no raw export

	ClaimedKPIs    []string         `json:"claimed_kpis"`
	AchievedMetric *decimal.Decimal `json:"achieved_metric,omitempty"` // optional, used by CreditValidateMetric

	ManualExtra decimal.Decimal `json:"manual_extra"`
}

// ActivityMode reports whether the input carries produced quantities.
func (in ShiftInput) ActivityMode() bool {
	return in.Activity != nil || len(in.Activities) > 0
}

// TaskMode reports whether the input is paid per discrete task.
func (in ShiftInput) TaskMode() bool {
	return in.OperatorName != "" && (in.TaskExport != "" || in.TaskCount != nil)
}

// Entries flattens single- and multi-activity inputs into one list.
func (in ShiftInput) Entries() []ActivityEntry {
	if in.Activity != nil {
		return []ActivityEntry{*in.Activity}
	}
	return in.Activities
}

// =============================================================================
// BREAKDOWN - computed compensation
// =============================================================================

// ActivityLine is the per-activity detail retained for reporting.
type ActivityLine struct {
	Name      string          `json:"name"`
	Rate      decimal.Decimal `json:"rate"`
	TierLabel string          `json:"tier_label"`
	UnitValue decimal.Decimal `json:"unit_value"`
	Value     decimal.Decimal `json:"value"`
	Counted   bool            `json:"counted"` // false when the activity was not in the catalog
	Note      string          `json:"note,omitempty"` // reason when not counted
}

// UncreditedKPI records a claimed KPI that earned nothing, and why.
type UncreditedKPI struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Breakdown is the full computed compensation for one shift.
type Breakdown struct {
	GrossActivityValue decimal.Decimal `json:"gross_activity_value"`
	SubtotalActivities decimal.Decimal `json:"subtotal_activities"` // gross * margin ratio
	ActivityBreakdown  []ActivityLine  `json:"activity_breakdown"`

	ValidTaskCount int                       `json:"valid_task_count"`
	ValidTaskValue decimal.Decimal           `json:"valid_task_value"`
	TaskBreakdown  []taskmatch.TypeBreakdown `json:"task_breakdown"`

	KPIBonus       decimal.Decimal `json:"kpi_bonus"`
	CreditedKPIs   []string        `json:"credited_kpis"`
	UncreditedKPIs []UncreditedKPI `json:"uncredited_kpis"`

	ProductivityRate decimal.Decimal `json:"productivity_rate"`
	TierLabel        string          `json:"tier_label"`
	UnitLabel        string          `json:"unit_label"`

	ManualExtra decimal.Decimal `json:"manual_extra"`
	Total       decimal.Decimal `json:"total"`

	// Notes carries non-fatal diagnostics: parse degradation, skipped
	// entries. Never affects Total.
	Notes []string `json:"notes,omitempty"`
}

// =============================================================================
// LAUNCH RECORD - persisted submission with workflow state
// =============================================================================

// Status is the approval workflow state of a LaunchRecord.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"

	// StatusRejected is terminal for reconciliation: rejected records
	// never contribute to canonical history or totals, and never block
	// a fresh submission for the same date.
	StatusRejected Status = "rejected"
)

// EditStatus tracks whether an admin rewrote the record after creation.
type EditStatus string

const (
	EditOriginal EditStatus = "original"
	EditAdmin    EditStatus = "edited_admin"
)

// LaunchRecord is one persisted compensation submission: the input
// snapshot, its computed breakdown, and workflow metadata. The engine
// creates it once and never mutates it; admin edits and status
// transitions happen through the store.
type LaunchRecord struct {
	ID  int64  // storage-assigned, strictly increasing; reconciliation tie-break key
	Ref string // stable external reference (uuid)

	WorkerID WorkerID
	Date     time.Time // day granularity

	Status     Status
	EditStatus EditStatus
	EditedBy   string
	EditedAt   time.Time // zero unless EditStatus == EditAdmin

	Input     ShiftInput
	Breakdown Breakdown

	CreatedAt time.Time
}

// DateKey normalizes the record date to day granularity for grouping.
func (r LaunchRecord) DateKey() string {
	return r.Date.UTC().Format("2006-01-02")
}
