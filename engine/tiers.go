/*
tiers.go - Tiered productivity evaluation

PURPOSE:
  Maps a production rate (quantity per hour) to a per-unit monetary
  value through an activity's ordered tier table.

LOOKUP RULE:
  Scan tiers ascending by MinRate and keep the highest tier whose
  MinRate <= rate. The last tier is an open-ended ceiling. The lookup
  is total: the first tier starts at rate 0 (enforced by catalog
  validation), so every non-negative rate maps somewhere, and a higher
  rate never pays less per unit (monotonic, also enforced on load).

EDGE CASES:
  hours <= 0   -> ErrInvalidInput (a rate cannot be computed)
  quantity = 0 -> rate 0, lowest tier. A worker who produced nothing
                  still gets a defined (base) evaluation rather than an
                  error; the gross works out to zero anyway.
*/
package engine

import (
	"github.com/shopspring/decimal"

	"github.com/warp/comp-engine/catalog"
)

// TierResult is the outcome of evaluating one activity's rate.
type TierResult struct {
	TierLabel string
	UnitValue decimal.Decimal
	Unit      string
	Rate      decimal.Decimal
}

// EvaluateProductivity computes rate = quantity/hours and resolves it
// against the activity's tier table.
func EvaluateProductivity(def catalog.ActivityDefinition, quantity, hours decimal.Decimal) (TierResult, error) {
	if hours.Sign() <= 0 {
		return TierResult{}, &InvalidInputError{Field: "hours", Reason: "must be greater than zero"}
	}
	if quantity.Sign() < 0 {
		return TierResult{}, &InvalidInputError{Field: "quantity", Reason: "must not be negative"}
	}
	if len(def.Tiers) == 0 {
		return TierResult{}, &UnknownReferenceError{Kind: "activity", Name: def.Name}
	}

	rate := quantity.Div(hours)

	tier := def.Tiers[0]
	for _, t := range def.Tiers[1:] {
		if t.MinRate.GreaterThan(rate) {
			break
		}
		tier = t
	}

	return TierResult{
		TierLabel: tier.Label,
		UnitValue: tier.UnitValue,
		Unit:      def.Unit,
		Rate:      rate,
	}, nil
}
