/*
load.go - YAML catalog loading and validation

PURPOSE:
  Reads the three reference tables from a YAML file so operations staff
  can adjust tier tables, KPI weights, and task targets without a code
  change. Validation runs at load time: a catalog that passes Load is
  safe for every engine invariant (total, monotonic tier lookup).

FILE SHAPE:
  activities:
    - name: separacao
      unit: caixas
      tiers:
        - {label: base,  min_rate: 0,  unit_value: 0.18}
        - {label: super, min_rate: 12, unit_value: 0.24}
  kpis:
    - {name: assiduidade, function: separador, shift: general,
       target_metric: 100, weight: 3.00, active: true}
  task_types:
    - {name: putaway, target_seconds: 240}

SEE ALSO:
  - watch.go: hot reload of the same file
*/
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type fileSchema struct {
	Activities []ActivityDefinition `yaml:"activities"`
	KPIs       []KPIDefinition      `yaml:"kpis"`
	TaskTypes  []TaskTypeMeta       `yaml:"task_types"`
}

// Load reads and validates a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var f fileSchema
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}

	c := &Catalog{Activities: f.Activities, KPIs: f.KPIs, TaskTypes: f.TaskTypes}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the structural invariants every calculation relies on.
func (c *Catalog) Validate() error {
	seen := map[string]bool{}
	for _, a := range c.Activities {
		if a.Name == "" {
			return fmt.Errorf("catalog: activity with empty name")
		}
		if seen[a.Name] {
			return fmt.Errorf("catalog: duplicate activity %q", a.Name)
		}
		seen[a.Name] = true

		if len(a.Tiers) == 0 {
			return fmt.Errorf("catalog: activity %q has no tiers", a.Name)
		}
		// Lowest tier must open at rate zero so lookup is total.
		if !a.Tiers[0].MinRate.IsZero() {
			return fmt.Errorf("catalog: activity %q: first tier must start at rate 0, got %s",
				a.Name, a.Tiers[0].MinRate)
		}
		for i := 1; i < len(a.Tiers); i++ {
			prev, cur := a.Tiers[i-1], a.Tiers[i]
			if !cur.MinRate.GreaterThan(prev.MinRate) {
				return fmt.Errorf("catalog: activity %q: tier %d min_rate %s not above previous %s",
					a.Name, i, cur.MinRate, prev.MinRate)
			}
			// Monotonic: a higher rate never pays less per unit.
			if cur.UnitValue.LessThan(prev.UnitValue) {
				return fmt.Errorf("catalog: activity %q: tier %q unit_value %s below previous tier",
					a.Name, cur.Label, cur.UnitValue)
			}
		}
	}

	for _, k := range c.KPIs {
		if k.Name == "" || k.Function == "" {
			return fmt.Errorf("catalog: kpi with empty name or function")
		}
		if k.Shift == "" {
			return fmt.Errorf("catalog: kpi %q has empty shift (use %q for all shifts)", k.Name, ShiftGeneral)
		}
		if k.Weight.IsNegative() {
			return fmt.Errorf("catalog: kpi %q has negative weight", k.Name)
		}
	}

	for _, t := range c.TaskTypes {
		if t.Name == "" {
			return fmt.Errorf("catalog: task type with empty name")
		}
		if t.TargetSeconds <= 0 {
			return fmt.Errorf("catalog: task type %q: target_seconds must be positive", t.Name)
		}
	}

	return nil
}
