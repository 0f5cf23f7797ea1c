package builder

import (
	"testing"

	"github.com/samber/mo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/core/catalog"
	"storefront/internal/errors"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestEngine(t *testing.T, lookup catalog.Lookup) *Engine {
	t.Helper()
	templates, err := DefaultTemplates(DefaultPerformanceCeiling)
	require.NoError(t, err)
	return NewEngine(templates, lookup)
}

// overpricedLookup ignores the ceiling, as a misbehaving catalog would
type overpricedLookup struct{}

func (overpricedLookup) Select(category string, ceiling decimal.Decimal) mo.Option[catalog.Component] {
	return mo.Some(catalog.Component{Name: category, Price: ceiling.Add(decimal.NewFromInt(1))})
}

func TestDefaultTemplates(t *testing.T) {
	templates, err := DefaultTemplates(DefaultPerformanceCeiling)
	require.NoError(t, err)

	assert.Equal(t, []string{"budget", "midrange", "highend"}, templates.Tiers())

	mid, ok := templates.Get("midrange")
	require.True(t, ok)
	assert.Equal(t, "Mid-Range Build", mid.Name)
	assert.Equal(t, "500", mid.Slots[SlotGPU].MaxBudget.String())
	assert.Equal(t, "0.3", mid.Slots[SlotGPU].Priority.String())
	assert.Equal(t, Performance{Gaming: 80, ContentCreation: 75, Productivity: 85}, mid.Performance)

	high, _ := templates.Get("highend")
	assert.Equal(t, "3000", high.PriceRange.Max.String(), "highend tops out at the performance ceiling")
}

func TestForBudgetThresholds(t *testing.T) {
	templates, err := DefaultTemplates(DefaultPerformanceCeiling)
	require.NoError(t, err)

	tests := []struct {
		budget string
		want   string
	}{
		{"100", "budget"},
		{"800", "budget"},
		{"800.01", "midrange"},
		{"1500", "midrange"},
		{"1500.01", "highend"},
		{"99999", "highend"},
	}
	for _, tt := range tests {
		t.Run(tt.budget, func(t *testing.T) {
			assert.Equal(t, tt.want, templates.ForBudget(dec(tt.budget)).Tier)
		})
	}
}

func TestGenerateFromTierMidrange(t *testing.T) {
	e := newTestEngine(t, catalog.NearBudget{})

	build, err := e.GenerateFromTier("midrange")
	require.NoError(t, err)

	require.Len(t, build.Parts, len(SlotOrder))
	for i, part := range build.Parts {
		assert.Equal(t, SlotOrder[i], part.Slot, "parts follow slot order")
	}

	gpu := build.Parts[1]
	assert.Equal(t, SlotGPU, gpu.Slot)
	assert.True(t, gpu.Component.Price.LessThanOrEqual(dec("500")))
	assert.Equal(t, "450", gpu.Component.Price.String())

	// (350+500+200+150+150+100+80) × 0.9
	assert.Equal(t, "1377", build.TotalPrice.String())
	assert.Equal(t, Performance{Gaming: 80, ContentCreation: 75, Productivity: 85}, build.Performance)
}

func TestGenerateFromTierWithInventory(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)
	e := newTestEngine(t, catalog.NewInventory(c))

	build, err := e.GenerateFromTier("midrange")
	require.NoError(t, err)

	tpl, _ := e.Template("midrange")
	sum := decimal.Zero
	for _, part := range build.Parts {
		assert.True(t, part.Component.Price.LessThanOrEqual(tpl.Slots[part.Slot].MaxBudget),
			"%s over cap", part.Slot)
		sum = sum.Add(part.Component.Price)
	}
	assert.True(t, sum.Equal(build.TotalPrice))

	gpu := build.Parts[1]
	assert.Equal(t, "11", gpu.Component.ID, "RTX 4060 Ti is the best card under 500")
}

func TestGenerateFromTierUnknown(t *testing.T) {
	e := newTestEngine(t, catalog.NearBudget{})

	_, err := e.GenerateFromTier("ultra")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeNotFound))
}

func TestGenerateFromBudgetPerformance(t *testing.T) {
	e := newTestEngine(t, catalog.NearBudget{})

	tests := []struct {
		budget string
		want   Performance
	}{
		{"3000", Performance{Gaming: 95, ContentCreation: 90, Productivity: 100}},
		{"6000", Performance{Gaming: 95, ContentCreation: 90, Productivity: 100}},
		{"1500", Performance{Gaming: 48, ContentCreation: 45, Productivity: 50}},
		{"1000", Performance{Gaming: 32, ContentCreation: 30, Productivity: 33}},
	}
	for _, tt := range tests {
		t.Run(tt.budget, func(t *testing.T) {
			build := e.GenerateFromBudget(dec(tt.budget))
			assert.Equal(t, tt.want, build.Performance)
			assert.Equal(t, TierCustom, build.Tier)
		})
	}
}

func TestGenerateFromBudgetSplitsByPriority(t *testing.T) {
	e := newTestEngine(t, catalog.NearBudget{})

	build := e.GenerateFromBudget(dec("1000"))
	require.Len(t, build.Parts, len(SlotOrder))

	// midrange weights: 0.25, 0.3, 0.12, 0.1, 0.1, 0.08, 0.05
	want := []string{"225", "270", "108", "90", "90", "72", "45"}
	for i, part := range build.Parts {
		assert.Equal(t, want[i], part.Component.Price.String(), part.Slot)
	}
	assert.Equal(t, "900", build.TotalPrice.String())
}

// TestGenerateFromBudgetZero covers empty and negative budgets
func TestGenerateFromBudgetZero(t *testing.T) {
	e := newTestEngine(t, catalog.NearBudget{})

	for _, budget := range []string{"0", "-250"} {
		build := e.GenerateFromBudget(dec(budget))
		assert.True(t, build.IsEmpty())
		assert.True(t, build.TotalPrice.IsZero())
		assert.Equal(t, Performance{}, build.Performance)
		assert.Equal(t, SlotOrder, build.Unfilled)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)
	e := newTestEngine(t, catalog.NewInventory(c))

	first := e.GenerateFromBudget(dec("1234.56"))
	second := e.GenerateFromBudget(dec("1234.56"))
	assert.Equal(t, first, second)
}

func TestOverpricedComponentsLeaveSlotsUnfilled(t *testing.T) {
	e := newTestEngine(t, overpricedLookup{})

	build, err := e.GenerateFromTier("budget")
	require.NoError(t, err)
	assert.True(t, build.IsEmpty())
	assert.Len(t, build.Unfilled, len(SlotOrder))
	assert.True(t, build.TotalPrice.IsZero())
}

func TestCustomTemplateNormalizesWeights(t *testing.T) {
	src := []byte(`
tier "lopsided" {
  name      = "Lopsided"
  min_price = 0
  max_price = 1000
  performance {
    gaming           = 10
    content_creation = 10
    productivity     = 10
  }
  slot "cpu" {
    category   = "processors"
    max_budget = 100
    priority   = 0.5
  }
  slot "gpu" {
    category   = "graphics-cards"
    max_budget = 100
    priority   = 0.5
  }
  slot "motherboard" {
    category   = "motherboards"
    max_budget = 100
    priority   = 0.25
  }
  slot "ram" {
    category   = "memory"
    max_budget = 100
    priority   = 0.25
  }
  slot "storage" {
    category   = "storage"
    max_budget = 100
    priority   = 0.25
  }
  slot "psu" {
    category   = "power-supplies"
    max_budget = 100
    priority   = 0.25
  }
  slot "case" {
    category   = "cases"
    max_budget = 100
    priority   = 0.5
  }
}
`)
	templates, err := ParseTemplates("lopsided.hcl", src, DefaultPerformanceCeiling)
	require.NoError(t, err)
	e := NewEngine(templates, catalog.NearBudget{})

	tpl := e.CustomTemplate(dec("500"))
	sum := decimal.Zero
	for _, spec := range tpl.Slots {
		sum = sum.Add(spec.MaxBudget)
	}
	assert.Equal(t, "500", sum.String(), "caps add up to the budget")
	assert.Equal(t, "100", tpl.Slots[SlotCPU].MaxBudget.String())
	assert.Equal(t, "50", tpl.Slots[SlotRAM].MaxBudget.String())
}

func TestParseTemplatesValidation(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"no tiers", ``},
		{"reserved name", `
tier "custom" {
  name      = "x"
  min_price = 0
  max_price = 1
  performance {
    gaming           = 1
    content_creation = 1
    productivity     = 1
  }
}`},
		{"missing slots", `
tier "tiny" {
  name      = "x"
  min_price = 0
  max_price = 1
  performance {
    gaming           = 1
    content_creation = 1
    productivity     = 1
  }
  slot "cpu" {
    category   = "processors"
    max_budget = 1
    priority   = 1
  }
}`},
		{"bad priority", `
tier "tiny" {
  name      = "x"
  min_price = 0
  max_price = 1
  performance {
    gaming           = 1
    content_creation = 1
    productivity     = 1
  }
  slot "cpu" {
    category   = "processors"
    max_budget = 1
    priority   = 1.5
  }
}`},
		{"unknown slot", `
tier "tiny" {
  name      = "x"
  min_price = 0
  max_price = 1
  performance {
    gaming           = 1
    content_creation = 1
    productivity     = 1
  }
  slot "fan" {
    category   = "cooling"
    max_budget = 1
    priority   = 1
  }
}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTemplates("bad.hcl", []byte(tt.src), DefaultPerformanceCeiling)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.TypeConfig))
		})
	}
}
