/*
Package catalog holds the read-only reference tables the compensation
engine calculates against.

PURPOSE:
  Three tables drive every calculation:
  - ActivityDefinition: productivity tiers per warehouse activity
  - KPIDefinition:      bonus indicators per function/shift
  - TaskTypeMeta:       target durations for discrete task types

  The engine never mutates these tables. Callers load a Catalog snapshot
  (from YAML files or the built-in defaults) and pass it into each
  calculation. Reloading produces a NEW snapshot; in-flight calculations
  keep the one they started with.

KEY CONCEPTS:
  - Tier: a productivity-rate bracket mapping to a per-unit value.
    Tiers are ordered ascending by MinRate; the last tier is an open
    ceiling. Lookup is total: rate 0 lands in the lowest tier.
  - Shift wildcard: a KPIDefinition with Shift == "general" applies to
    every shift of its function.

USAGE:
  cat := catalog.Default()
  defs := cat.AvailableKPIs("separador", "manha")

SEE ALSO:
  - load.go:  YAML file loading and validation
  - watch.go: fsnotify-based hot reload
  - engine/:  the calculators consuming these tables
*/
package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ShiftGeneral is the wildcard shift: a KPI defined for it applies to
// every shift of its function.
const ShiftGeneral = "general"

// =============================================================================
// ACTIVITY DEFINITIONS - tiered productivity tables
// =============================================================================

// Tier is one productivity bracket of an activity. A rate r falls into
// the highest tier whose MinRate <= r.
type Tier struct {
	Label     string          `yaml:"label" json:"label"`
	MinRate   decimal.Decimal `yaml:"min_rate" json:"min_rate"`
	UnitValue decimal.Decimal `yaml:"unit_value" json:"unit_value"`
}

// ActivityDefinition is the immutable tier table for one activity.
type ActivityDefinition struct {
	Name string `yaml:"name" json:"name"`
	Unit string `yaml:"unit" json:"unit"` // e.g. "caixas", "pallets"
	// Tiers ordered ascending by MinRate. Validated on load.
	Tiers []Tier `yaml:"tiers" json:"tiers"`
}

// =============================================================================
// KPI DEFINITIONS
// =============================================================================

// KPIDefinition describes one bonus indicator.
type KPIDefinition struct {
	Name         string          `yaml:"name" json:"name"`
	Function     string          `yaml:"function" json:"function"`
	Shift        string          `yaml:"shift" json:"shift"` // concrete shift or ShiftGeneral
	TargetMetric decimal.Decimal `yaml:"target_metric" json:"target_metric"`
	Weight       decimal.Decimal `yaml:"weight" json:"weight"`
	Active       bool            `yaml:"active" json:"active"`
}

// AppliesTo reports whether the definition covers the given function and
// shift. Matching is case-insensitive; ShiftGeneral matches any shift.
func (d KPIDefinition) AppliesTo(function, shift string) bool {
	if !strings.EqualFold(d.Function, function) {
		return false
	}
	return strings.EqualFold(d.Shift, shift) || strings.EqualFold(d.Shift, ShiftGeneral)
}

// =============================================================================
// TASK TYPE METADATA
// =============================================================================

// TaskTypeMeta gives the target duration for one discrete task type.
// Tasks completed within TargetSeconds count as valid.
type TaskTypeMeta struct {
	Name          string `yaml:"name" json:"name"`
	TargetSeconds int    `yaml:"target_seconds" json:"target_seconds"`
}

// =============================================================================
// CATALOG SNAPSHOT
// =============================================================================

// Catalog is an immutable snapshot of all three reference tables.
type Catalog struct {
	Activities []ActivityDefinition
	KPIs       []KPIDefinition
	TaskTypes  []TaskTypeMeta
}

// Activity returns the definition for name (case-insensitive), or nil
// when the activity is not in the catalog.
func (c *Catalog) Activity(name string) *ActivityDefinition {
	for i := range c.Activities {
		if strings.EqualFold(c.Activities[i].Name, name) {
			return &c.Activities[i]
		}
	}
	return nil
}

// AvailableKPIs returns every active KPI applicable to the given
// function and shift. This is the single lookup path for KPI
// eligibility: the engine and the API both call it whenever function or
// shift changes, instead of keeping coupled lookup state.
func (c *Catalog) AvailableKPIs(function, shift string) []KPIDefinition {
	var out []KPIDefinition
	for _, d := range c.KPIs {
		if d.Active && d.AppliesTo(function, shift) {
			out = append(out, d)
		}
	}
	return out
}

// KPI returns the active definition for name applicable to
// function/shift, or nil when no such definition exists.
func (c *Catalog) KPI(name, function, shift string) *KPIDefinition {
	for i := range c.KPIs {
		d := &c.KPIs[i]
		if d.Active && strings.EqualFold(d.Name, name) && d.AppliesTo(function, shift) {
			return d
		}
	}
	return nil
}

// TaskTargets returns task-type target durations keyed by normalized
// (lower-cased, trimmed) type name.
func (c *Catalog) TaskTargets() map[string]int {
	out := make(map[string]int, len(c.TaskTypes))
	for _, t := range c.TaskTypes {
		out[strings.ToLower(strings.TrimSpace(t.Name))] = t.TargetSeconds
	}
	return out
}

// =============================================================================
// BUILT-IN DEFAULTS
// =============================================================================

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Default returns the built-in catalog used by the demo seed and as a
// fallback when no catalog files are configured. Values mirror the
// operational tables of the warehouse this engine was built for.
func Default() *Catalog {
	return &Catalog{
		Activities: []ActivityDefinition{
			{
				Name: "separacao",
				Unit: "caixas",
				Tiers: []Tier{
					{Label: "base", MinRate: dec("0"), UnitValue: dec("0.18")},
					{Label: "meta", MinRate: dec("10"), UnitValue: dec("0.21")},
					{Label: "super", MinRate: dec("12"), UnitValue: dec("0.24")},
					{Label: "excelencia", MinRate: dec("15"), UnitValue: dec("0.27")},
				},
			},
			{
				Name: "conferencia",
				Unit: "volumes",
				Tiers: []Tier{
					{Label: "base", MinRate: dec("0"), UnitValue: dec("0.10")},
					{Label: "meta", MinRate: dec("40"), UnitValue: dec("0.12")},
					{Label: "super", MinRate: dec("55"), UnitValue: dec("0.15")},
				},
			},
			{
				Name: "paletizacao",
				Unit: "pallets",
				Tiers: []Tier{
					{Label: "base", MinRate: dec("0"), UnitValue: dec("1.10")},
					{Label: "meta", MinRate: dec("2"), UnitValue: dec("1.35")},
					{Label: "super", MinRate: dec("3"), UnitValue: dec("1.60")},
				},
			},
		},
		KPIs: []KPIDefinition{
			{Name: "assiduidade", Function: "separador", Shift: ShiftGeneral,
				TargetMetric: dec("100"), Weight: dec("3.00"), Active: true},
			{Name: "qualidade", Function: "separador", Shift: ShiftGeneral,
				TargetMetric: dec("99.5"), Weight: dec("3.00"), Active: true},
			{Name: "ruptura", Function: "separador", Shift: "noturno",
				TargetMetric: dec("0.5"), Weight: dec("2.50"), Active: true},
			{Name: "assiduidade", Function: "operador_empilhadeira", Shift: ShiftGeneral,
				TargetMetric: dec("100"), Weight: dec("3.00"), Active: true},
			{Name: "avarias", Function: "operador_empilhadeira", Shift: ShiftGeneral,
				TargetMetric: dec("0"), Weight: dec("2.00"), Active: true},
		},
		TaskTypes: []TaskTypeMeta{
			{Name: "abastecimento", TargetSeconds: 180},
			{Name: "putaway", TargetSeconds: 240},
			{Name: "remocao", TargetSeconds: 150},
			{Name: "carregamento", TargetSeconds: 300},
		},
	}
}
