/*
assemble.go - Compensation assembly

PURPOSE:
  Composes the full Breakdown for one shift:

    total = (subtotal_activities OR valid_task_value)
          + kpi_bonus
          + manual_extra

  The assembler is the single entry point the API uses: it validates
  the input mode, runs the aggregator or the task matcher, credits
  KPIs, and returns a Breakdown ready to attach to a new LaunchRecord.

VALIDATION:
  Missing function or shift, both payment modes present, or neither
  present -> ErrInvalidInput, no partial breakdown. Everything past
  validation is non-fatal and lands in Breakdown.Notes instead.
*/
package engine

import (
	"github.com/warp/comp-engine/catalog"
	"github.com/warp/comp-engine/taskmatch"
)

// Assembler composes breakdowns against one catalog snapshot.
type Assembler struct {
	Catalog *catalog.Catalog
	Config  Config
}

// NewAssembler builds an assembler for a catalog snapshot.
func NewAssembler(cat *catalog.Catalog, cfg Config) Assembler {
	return Assembler{Catalog: cat, Config: cfg}
}

// Assemble validates the input and computes its Breakdown.
func (a Assembler) Assemble(in ShiftInput) (*Breakdown, error) {
	if err := a.validate(in); err != nil {
		return nil, err
	}

	bd := &Breakdown{
		ActivityBreakdown: []ActivityLine{},
		TaskBreakdown:     []taskmatch.TypeBreakdown{},
		CreditedKPIs:      []string{},
		UncreditedKPIs:    []UncreditedKPI{},
		ManualExtra:       in.ManualExtra,
	}

	if in.ActivityMode() {
		agg, err := Aggregator{Catalog: a.Catalog, Config: a.Config}.Aggregate(in.Entries())
		if err != nil {
			return nil, err
		}
		bd.GrossActivityValue = agg.Gross
		bd.SubtotalActivities = agg.Subtotal
		bd.ActivityBreakdown = agg.Lines
		bd.ProductivityRate = agg.Rate
		bd.TierLabel = agg.TierLabel
		bd.UnitLabel = agg.Unit
		for _, line := range agg.Lines {
			if !line.Counted {
				bd.Notes = append(bd.Notes, line.Note)
			}
		}
	} else {
		matcher := taskmatch.Matcher{
			Targets: a.Catalog.TaskTargets(),
			Rate:    a.Config.ValidTaskRate,
		}
		var res taskmatch.Result
		if in.TaskExport != "" {
			res = matcher.MatchExport(in.TaskExport, in.OperatorName)
		} else {
			res = matcher.FromCount(*in.TaskCount)
		}
		bd.ValidTaskCount = res.ValidCount
		bd.ValidTaskValue = res.Value
		bd.TaskBreakdown = res.PerType
		if res.Degraded && res.Reason != "" {
			bd.Notes = append(bd.Notes, "task export: "+res.Reason)
		}
	}

	kpi := KPICalculator{Catalog: a.Catalog, Config: a.Config}.
		Credit(in.ClaimedKPIs, in.Function, in.Shift, in.AchievedMetric)
	bd.KPIBonus = kpi.Bonus
	bd.CreditedKPIs = kpi.Credited
	bd.UncreditedKPIs = kpi.Uncredited

	base := bd.SubtotalActivities
	if in.TaskMode() {
		base = bd.ValidTaskValue
	}
	bd.Total = base.Add(bd.KPIBonus).Add(bd.ManualExtra)

	return bd, nil
}

func (a Assembler) validate(in ShiftInput) error {
	if in.Function == "" {
		return &InvalidInputError{Field: "function", Reason: "required"}
	}
	if in.Shift == "" {
		return &InvalidInputError{Field: "shift", Reason: "required"}
	}
	if in.ActivityMode() && in.TaskMode() {
		return &InvalidInputError{Field: "mode", Reason: "provide activity data or task data, not both"}
	}
	if !in.ActivityMode() && !in.TaskMode() {
		return &InvalidInputError{Field: "mode", Reason: "provide activity data or task data"}
	}
	if in.Activity != nil && len(in.Activities) > 0 {
		return &InvalidInputError{Field: "activities", Reason: "provide a single activity or a list, not both"}
	}
	if in.TaskCount != nil && *in.TaskCount < 0 {
		return &InvalidInputError{Field: "task_count", Reason: "must not be negative"}
	}
	return nil
}
