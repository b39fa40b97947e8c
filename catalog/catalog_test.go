package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/comp-engine/catalog"
)

// =============================================================================
// YAML LOADING
// =============================================================================

const validYAML = `
activities:
  - name: separacao
    unit: caixas
    tiers:
      - {label: base,  min_rate: 0,  unit_value: 0.18}
      - {label: meta,  min_rate: 10, unit_value: 0.21}
      - {label: super, min_rate: 12, unit_value: 0.24}
kpis:
  - {name: assiduidade, function: separador, shift: general,
     target_metric: 100, weight: 3.00, active: true}
  - {name: ruptura, function: separador, shift: noturno,
     target_metric: 0.5, weight: 2.50, active: true}
task_types:
  - {name: putaway, target_seconds: 240}
`

func TestParse_ValidFile(t *testing.T) {
	// GIVEN: A well-formed catalog document
	// WHEN: Parsing
	// THEN: All three tables come back with their values intact

	c, err := catalog.Parse([]byte(validYAML))
	require.NoError(t, err)

	require.Len(t, c.Activities, 1)
	def := c.Activity("separacao")
	require.NotNil(t, def)
	assert.Equal(t, "caixas", def.Unit)
	require.Len(t, def.Tiers, 3)
	assert.Equal(t, "super", def.Tiers[2].Label)

	require.Len(t, c.KPIs, 2)
	assert.True(t, c.KPIs[0].Active)

	targets := c.TaskTargets()
	assert.Equal(t, 240, targets["putaway"])
}

func TestLoad_ReadsFromDisk(t *testing.T) {
	// GIVEN: A catalog file on disk
	// WHEN: Loading by path
	// THEN: Same result as parsing the bytes directly

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validYAML), 0o644))

	c, err := catalog.Load(path)
	require.NoError(t, err)
	assert.NotNil(t, c.Activity("separacao"))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := catalog.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestParse_RejectsFirstTierAboveZero(t *testing.T) {
	// GIVEN: A tier table whose lowest tier opens above rate 0
	// WHEN: Parsing
	// THEN: Rejected - the lookup would not be total

	_, err := catalog.Parse([]byte(`
activities:
  - name: separacao
    unit: caixas
    tiers:
      - {label: meta, min_rate: 10, unit_value: 0.21}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first tier")
}

func TestParse_RejectsNonAscendingMinRate(t *testing.T) {
	_, err := catalog.Parse([]byte(`
activities:
  - name: separacao
    unit: caixas
    tiers:
      - {label: base, min_rate: 0,  unit_value: 0.18}
      - {label: meta, min_rate: 12, unit_value: 0.21}
      - {label: bad,  min_rate: 12, unit_value: 0.24}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_rate")
}

func TestParse_RejectsDecreasingUnitValue(t *testing.T) {
	// GIVEN: A tier that pays less per unit than the tier below it
	// WHEN: Parsing
	// THEN: Rejected - a higher rate must never pay less

	_, err := catalog.Parse([]byte(`
activities:
  - name: separacao
    unit: caixas
    tiers:
      - {label: base, min_rate: 0,  unit_value: 0.18}
      - {label: bad,  min_rate: 10, unit_value: 0.15}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unit_value")
}

func TestParse_RejectsBadTaskTarget(t *testing.T) {
	_, err := catalog.Parse([]byte(`
task_types:
  - {name: putaway, target_seconds: 0}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target_seconds")
}

func TestParse_RejectsEmptyKPIShift(t *testing.T) {
	_, err := catalog.Parse([]byte(`
kpis:
  - {name: assiduidade, function: separador, shift: "",
     target_metric: 100, weight: 3.00, active: true}
`))
	assert.Error(t, err)
}

func TestDefault_PassesValidation(t *testing.T) {
	// The built-in tables must satisfy every invariant the loader enforces.
	assert.NoError(t, catalog.Default().Validate())
}

// =============================================================================
// LOOKUPS
// =============================================================================

func TestActivity_CaseInsensitive(t *testing.T) {
	c := catalog.Default()
	assert.NotNil(t, c.Activity("SEPARACAO"))
	assert.NotNil(t, c.Activity("Separacao"))
	assert.Nil(t, c.Activity("unknown"))
}

func TestAvailableKPIs_GeneralShiftWildcard(t *testing.T) {
	// GIVEN: The default tables, where ruptura is noturno-only and the
	//        rest of separador's KPIs are shift "general"
	// WHEN: Looking up morning vs night shift
	// THEN: The wildcard KPIs apply to both; ruptura only at night

	c := catalog.Default()

	morning := c.AvailableKPIs("separador", "manha")
	require.Len(t, morning, 2)

	night := c.AvailableKPIs("separador", "noturno")
	require.Len(t, night, 3)

	names := make([]string, len(night))
	for i, d := range night {
		names[i] = d.Name
	}
	assert.Contains(t, names, "ruptura")
}

func TestAvailableKPIs_InactiveExcluded(t *testing.T) {
	c, err := catalog.Parse([]byte(`
kpis:
  - {name: assiduidade, function: separador, shift: general,
     target_metric: 100, weight: 3.00, active: true}
  - {name: retired, function: separador, shift: general,
     target_metric: 1, weight: 1.00, active: false}
`))
	require.NoError(t, err)

	defs := c.AvailableKPIs("separador", "manha")
	require.Len(t, defs, 1)
	assert.Equal(t, "assiduidade", defs[0].Name)

	assert.Nil(t, c.KPI("retired", "separador", "manha"))
}

func TestTaskTargets_NormalizesNames(t *testing.T) {
	c := &catalog.Catalog{TaskTypes: []catalog.TaskTypeMeta{
		{Name: "  Putaway ", TargetSeconds: 240},
	}}
	assert.Equal(t, 240, c.TaskTargets()["putaway"])
}
