/*
activity.go - Activity aggregation

PURPOSE:
  Turns one or several activity entries into a gross monetary value via
  the tier evaluator, then applies the margin rule:

    gross    = sum over entries of quantity * unit_value(rate)
    subtotal = gross * Config.MarginRatio

  Each entry is evaluated independently against its own tier table, and
  the per-activity detail is retained for reporting.

UNKNOWN ACTIVITIES:
  An entry whose name is not in the catalog is skipped, not fatal: it
  appears in the breakdown as an uncounted line. Invalid numbers
  (hours <= 0, negative quantity) DO abort the calculation - that is
  bad input, not a bad reference.
*/
package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/comp-engine/catalog"
)

// AggregateResult is the activity portion of a breakdown.
type AggregateResult struct {
	Gross    decimal.Decimal
	Subtotal decimal.Decimal
	Lines    []ActivityLine

	// Headline figures: taken from the first counted line, which is
	// the single activity in single mode.
	Rate      decimal.Decimal
	TierLabel string
	Unit      string
}

// Aggregator computes activity value against a catalog snapshot.
type Aggregator struct {
	Catalog *catalog.Catalog
	Config  Config
}

// Aggregate evaluates every entry and applies the margin rule.
func (a Aggregator) Aggregate(entries []ActivityEntry) (AggregateResult, error) {
	res := AggregateResult{
		Gross: decimal.Zero,
		Lines: make([]ActivityLine, 0, len(entries)),
	}

	headline := false
	for _, e := range entries {
		def := a.Catalog.Activity(e.Name)
		if def == nil {
			res.Lines = append(res.Lines, ActivityLine{
				Name: e.Name,
				Note: fmt.Sprintf("activity %q not in catalog; not counted", e.Name),
			})
			continue
		}

		tier, err := EvaluateProductivity(*def, e.Quantity, e.Hours)
		if err != nil {
			return AggregateResult{}, err
		}

		value := e.Quantity.Mul(tier.UnitValue)
		res.Gross = res.Gross.Add(value)
		res.Lines = append(res.Lines, ActivityLine{
			Name:      def.Name,
			Rate:      tier.Rate,
			TierLabel: tier.TierLabel,
			UnitValue: tier.UnitValue,
			Value:     value,
			Counted:   true,
		})

		if !headline {
			res.Rate = tier.Rate
			res.TierLabel = tier.TierLabel
			res.Unit = tier.Unit
			headline = true
		}
	}

	res.Subtotal = res.Gross.Mul(a.Config.MarginRatio)
	return res, nil
}
