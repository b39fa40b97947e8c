/*
config.go - Named, overridable calculation constants

PURPOSE:
  The three numbers that govern every payout, plus the KPI crediting
  policy, live here as explicit configuration instead of inline
  literals. DefaultConfig carries the operational values this engine
  shipped with; deployments override per instance.

CREDITING POLICIES:
  CreditTrustClaim (default):
    Every claimed KPI that matches an active definition for the
    worker's function and shift is credited. The upstream claim is
    authoritative.

  CreditValidateMetric:
    When the input carries an achieved-metric value, a claimed KPI is
    credited only if achieved >= the definition's target. Without an
    achieved metric the policy degrades to trusting the claim.

  The two are never mixed implicitly; pick one per deployment.
*/
package engine

import "github.com/shopspring/decimal"

// CreditingPolicy selects how claimed KPIs are validated.
type CreditingPolicy string

const (
	CreditTrustClaim     CreditingPolicy = "trust_claim"
	CreditValidateMetric CreditingPolicy = "validate_metric"
)

// Config holds the calculation constants.
type Config struct {
	// MarginRatio is the fraction of gross activity value paid out:
	// subtotal = gross * MarginRatio.
	MarginRatio decimal.Decimal

	// ValidTaskRate is the payout per valid task for task-counted roles.
	ValidTaskRate decimal.Decimal

	// KPICreditCap bounds how many KPIs one calculation may credit.
	// Excess eligible claims are dropped in claim order.
	KPICreditCap int

	// Crediting selects the KPI validation policy.
	Crediting CreditingPolicy
}

// DefaultConfig returns the observed operational values.
func DefaultConfig() Config {
	return Config{
		MarginRatio:   decimal.NewFromFloat(0.5),
		ValidTaskRate: decimal.NewFromFloat(0.093),
		KPICreditCap:  2,
		Crediting:     CreditTrustClaim,
	}
}
