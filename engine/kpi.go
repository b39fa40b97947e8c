/*
kpi.go - KPI bonus crediting

PURPOSE:
  Credits bonus amounts for claimed KPIs against the catalog's KPI
  definitions. A claim is eligible when an active definition exists for
  the worker's function and shift (or the "general" shift wildcard).

RULES:
  - A KPI is credited at most once per calculation, even if claimed
    twice.
  - The crediting policy (Config.Crediting) decides whether an
    achieved-metric value is checked against the definition's target.
  - At most Config.KPICreditCap KPIs are credited, in claim order.
  - Ineligible and over-cap claims are not errors: they are reported
    as uncredited with a reason, and the calculation proceeds.
*/
package engine

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warp/comp-engine/catalog"
)

// KPIResult is the bonus portion of a breakdown.
type KPIResult struct {
	Bonus      decimal.Decimal
	Credited   []string
	Uncredited []UncreditedKPI
}

// KPICalculator credits claimed KPIs against a catalog snapshot.
type KPICalculator struct {
	Catalog *catalog.Catalog
	Config  Config
}

// Credit resolves the claimed KPI names for the given function and
// shift. achieved is the optional achieved-metric value for the
// period; it is only consulted under CreditValidateMetric.
func (k KPICalculator) Credit(claimed []string, function, shift string, achieved *decimal.Decimal) KPIResult {
	res := KPIResult{
		Bonus:      decimal.Zero,
		Credited:   []string{},
		Uncredited: []UncreditedKPI{},
	}

	seen := map[string]bool{}
	for _, name := range claimed {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if seen[key] {
			res.Uncredited = append(res.Uncredited, UncreditedKPI{Name: name, Reason: "duplicate claim"})
			continue
		}
		seen[key] = true

		def := k.Catalog.KPI(name, function, shift)
		if def == nil {
			res.Uncredited = append(res.Uncredited, UncreditedKPI{
				Name:   name,
				Reason: "no active definition for this function and shift",
			})
			continue
		}

		if k.Config.Crediting == CreditValidateMetric && achieved != nil &&
			achieved.LessThan(def.TargetMetric) {
			res.Uncredited = append(res.Uncredited, UncreditedKPI{
				Name:   name,
				Reason: "achieved metric below target",
			})
			continue
		}

		if len(res.Credited) >= k.Config.KPICreditCap {
			res.Uncredited = append(res.Uncredited, UncreditedKPI{Name: name, Reason: "credit cap reached"})
			continue
		}

		res.Credited = append(res.Credited, def.Name)
		res.Bonus = res.Bonus.Add(def.Weight)
	}

	return res
}

// AvailableKPIs exposes the catalog lookup through the calculator so
// API callers resolve eligibility and crediting against the same
// snapshot.
func (k KPICalculator) AvailableKPIs(function, shift string) []catalog.KPIDefinition {
	return k.Catalog.AvailableKPIs(function, shift)
}
