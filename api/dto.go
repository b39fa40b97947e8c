/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupled from the internal
  domain model. Money crosses the API edge as plain JSON numbers
  (float64); inside the engine everything stays decimal.Decimal.

NAMING CONVENTION:
  - *DTO:     response types returned to clients
  - *Request: request body types from clients

SEE ALSO:
  - handlers.go: uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/comp-engine/catalog"
	"github.com/warp/comp-engine/engine"
	"github.com/warp/comp-engine/taskmatch"
)

// =============================================================================
// CALCULATION REQUEST
// =============================================================================

// ActivityEntryRequest is one produced-quantity line.
type ActivityEntryRequest struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Hours    float64 `json:"hours"`
}

// CalculateRequest carries one shift's raw numbers. Exactly one of
// activity/multiple_activities or operator_name+task data is expected.
type CalculateRequest struct {
	Function string `json:"function"`
	Shift    string `json:"shift"`
	Date     string `json:"date"` // YYYY-MM-DD

	Activity           *ActivityEntryRequest  `json:"activity,omitempty"`
	MultipleActivities []ActivityEntryRequest `json:"multiple_activities,omitempty"`

	OperatorName    string `json:"operator_name,omitempty"`
	ValidTaskExport string `json:"valid_task_export,omitempty"`
	ValidTaskCount  *int   `json:"valid_task_count,omitempty"`

	ClaimedKPIs    []string `json:"claimed_kpis"`
	AchievedMetric *float64 `json:"achieved_metric,omitempty"`
	ManualExtra    float64  `json:"manual_extra,omitempty"`
}

// toShiftInput converts the API request into the engine's input type.
func (req CalculateRequest) toShiftInput() (engine.ShiftInput, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return engine.ShiftInput{}, &engine.InvalidInputError{
			Field: "date", Reason: "expected YYYY-MM-DD",
		}
	}

	in := engine.ShiftInput{
		Function:     req.Function,
		Shift:        req.Shift,
		Date:         date,
		OperatorName: req.OperatorName,
		TaskExport:   req.ValidTaskExport,
		TaskCount:    req.ValidTaskCount,
		ClaimedKPIs:  req.ClaimedKPIs,
		ManualExtra:  decimal.NewFromFloat(req.ManualExtra),
	}
	if req.Activity != nil {
		e := toActivityEntry(*req.Activity)
		in.Activity = &e
	}
	for _, a := range req.MultipleActivities {
		in.Activities = append(in.Activities, toActivityEntry(a))
	}
	if req.AchievedMetric != nil {
		m := decimal.NewFromFloat(*req.AchievedMetric)
		in.AchievedMetric = &m
	}
	return in, nil
}

func toActivityEntry(a ActivityEntryRequest) engine.ActivityEntry {
	return engine.ActivityEntry{
		Name:     a.Name,
		Quantity: decimal.NewFromFloat(a.Quantity),
		Hours:    decimal.NewFromFloat(a.Hours),
	}
}

// =============================================================================
// BREAKDOWN RESPONSE
// =============================================================================

// ActivityLineDTO is the per-activity detail in responses.
type ActivityLineDTO struct {
	Name      string  `json:"name"`
	Rate      float64 `json:"rate"`
	TierLabel string  `json:"tier_label"`
	UnitValue float64 `json:"unit_value"`
	Value     float64 `json:"value"`
	Counted   bool    `json:"counted"`
	Note      string  `json:"note,omitempty"`
}

// UncreditedKPIDTO explains why a claimed KPI earned nothing.
type UncreditedKPIDTO struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// BreakdownDTO is the computed compensation in responses.
type BreakdownDTO struct {
	GrossActivityValue float64                   `json:"gross_activity_value"`
	SubtotalActivities float64                   `json:"subtotal_activities"`
	ActivityBreakdown  []ActivityLineDTO         `json:"activity_breakdown"`
	ValidTaskCount     int                       `json:"valid_task_count"`
	ValidTaskValue     float64                   `json:"valid_task_value"`
	TaskBreakdown      []taskmatch.TypeBreakdown `json:"task_breakdown"`
	KPIBonus           float64                   `json:"kpi_bonus"`
	CreditedKPIs       []string                  `json:"credited_kpis"`
	UncreditedKPIs     []UncreditedKPIDTO        `json:"uncredited_kpis"`
	ProductivityRate   float64                   `json:"productivity_rate"`
	TierLabel          string                    `json:"tier_label"`
	UnitLabel          string                    `json:"unit_label"`
	ManualExtra        float64                   `json:"manual_extra"`
	Total              float64                   `json:"total"`
	Notes              []string                  `json:"notes,omitempty"`
}

func toBreakdownDTO(bd engine.Breakdown) BreakdownDTO {
	dto := BreakdownDTO{
		GrossActivityValue: f64(bd.GrossActivityValue),
		SubtotalActivities: f64(bd.SubtotalActivities),
		ActivityBreakdown:  make([]ActivityLineDTO, 0, len(bd.ActivityBreakdown)),
		ValidTaskCount:     bd.ValidTaskCount,
		ValidTaskValue:     f64(bd.ValidTaskValue),
		TaskBreakdown:      bd.TaskBreakdown,
		KPIBonus:           f64(bd.KPIBonus),
		CreditedKPIs:       bd.CreditedKPIs,
		UncreditedKPIs:     make([]UncreditedKPIDTO, 0, len(bd.UncreditedKPIs)),
		ProductivityRate:   f64(bd.ProductivityRate),
		TierLabel:          bd.TierLabel,
		UnitLabel:          bd.UnitLabel,
		ManualExtra:        f64(bd.ManualExtra),
		Total:              f64(bd.Total),
		Notes:              bd.Notes,
	}
	for _, l := range bd.ActivityBreakdown {
		dto.ActivityBreakdown = append(dto.ActivityBreakdown, ActivityLineDTO{
			Name:      l.Name,
			Rate:      f64(l.Rate),
			TierLabel: l.TierLabel,
			UnitValue: f64(l.UnitValue),
			Value:     f64(l.Value),
			Counted:   l.Counted,
			Note:      l.Note,
		})
	}
	for _, u := range bd.UncreditedKPIs {
		dto.UncreditedKPIs = append(dto.UncreditedKPIs, UncreditedKPIDTO{Name: u.Name, Reason: u.Reason})
	}
	return dto
}

func f64(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// =============================================================================
// LAUNCH RECORDS
// =============================================================================

// CreateLaunchRequest submits a shift for a worker and persists the
// resulting record.
type CreateLaunchRequest struct {
	WorkerID string `json:"worker_id"`
	CalculateRequest
}

// EditLaunchRequest is an admin rewrite of an existing record.
type EditLaunchRequest struct {
	EditedBy string `json:"edited_by"`
	CalculateRequest
}

// LaunchDTO is a persisted record in responses.
type LaunchDTO struct {
	ID         int64        `json:"id"`
	Ref        string       `json:"ref"`
	WorkerID   string       `json:"worker_id"`
	Date       string       `json:"date"`
	Status     string       `json:"status"`
	EditStatus string       `json:"edit_status"`
	EditedBy   string       `json:"edited_by,omitempty"`
	EditedAt   string       `json:"edited_at,omitempty"`
	Breakdown  BreakdownDTO `json:"breakdown"`
	CreatedAt  string       `json:"created_at"`
}

func toLaunchDTO(rec engine.LaunchRecord) LaunchDTO {
	dto := LaunchDTO{
		ID:         rec.ID,
		Ref:        rec.Ref,
		WorkerID:   string(rec.WorkerID),
		Date:       rec.Date.Format("2006-01-02"),
		Status:     string(rec.Status),
		EditStatus: string(rec.EditStatus),
		EditedBy:   rec.EditedBy,
		Breakdown:  toBreakdownDTO(rec.Breakdown),
		CreatedAt:  rec.CreatedAt.Format(time.RFC3339),
	}
	if !rec.EditedAt.IsZero() {
		dto.EditedAt = rec.EditedAt.Format(time.RFC3339)
	}
	return dto
}

func toLaunchDTOs(recs []engine.LaunchRecord) []LaunchDTO {
	dtos := make([]LaunchDTO, len(recs))
	for i, r := range recs {
		dtos[i] = toLaunchDTO(r)
	}
	return dtos
}

// SummaryDTO is a worker's monthly aggregate over canonical history.
type SummaryDTO struct {
	WorkerID string  `json:"worker_id"`
	Month    string  `json:"month"`
	Days     int     `json:"days"`
	Total    float64 `json:"total"`
}

// =============================================================================
// TASK PREVIEW
// =============================================================================

// TaskPreviewRequest parses an export without persisting anything.
type TaskPreviewRequest struct {
	OperatorName    string `json:"operator_name"`
	ValidTaskExport string `json:"valid_task_export"`
}

// TaskPreviewDTO is the matcher outcome.
type TaskPreviewDTO struct {
	ValidTaskCount int                       `json:"valid_task_count"`
	ValidTaskValue float64                   `json:"valid_task_value"`
	TaskBreakdown  []taskmatch.TypeBreakdown `json:"task_breakdown"`
	Degraded       bool                      `json:"degraded"`
	Reason         string                    `json:"reason,omitempty"`
}

// =============================================================================
// CATALOG
// =============================================================================

// TierDTO is one productivity bracket.
type TierDTO struct {
	Label     string  `json:"label"`
	MinRate   float64 `json:"min_rate"`
	UnitValue float64 `json:"unit_value"`
}

// ActivityDefinitionDTO is one activity's tier table.
type ActivityDefinitionDTO struct {
	Name  string    `json:"name"`
	Unit  string    `json:"unit"`
	Tiers []TierDTO `json:"tiers"`
}

// KPIDefinitionDTO is one bonus indicator.
type KPIDefinitionDTO struct {
	Name         string  `json:"name"`
	Function     string  `json:"function"`
	Shift        string  `json:"shift"`
	TargetMetric float64 `json:"target_metric"`
	Weight       float64 `json:"weight"`
	Active       bool    `json:"active"`
}

func toActivityDTOs(defs []catalog.ActivityDefinition) []ActivityDefinitionDTO {
	out := make([]ActivityDefinitionDTO, len(defs))
	for i, d := range defs {
		tiers := make([]TierDTO, len(d.Tiers))
		for j, t := range d.Tiers {
			tiers[j] = TierDTO{Label: t.Label, MinRate: f64(t.MinRate), UnitValue: f64(t.UnitValue)}
		}
		out[i] = ActivityDefinitionDTO{Name: d.Name, Unit: d.Unit, Tiers: tiers}
	}
	return out
}

func toKPIDTOs(defs []catalog.KPIDefinition) []KPIDefinitionDTO {
	out := make([]KPIDefinitionDTO, len(defs))
	for i, d := range defs {
		out[i] = KPIDefinitionDTO{
			Name:         d.Name,
			Function:     d.Function,
			Shift:        d.Shift,
			TargetMetric: f64(d.TargetMetric),
			Weight:       f64(d.Weight),
			Active:       d.Active,
		}
	}
	return out
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}
