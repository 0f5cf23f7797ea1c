package builder

import (
	"slices"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/core/catalog"
	"storefront/internal/errors"
	"storefront/internal/logging"
)

// SelectedPart is one filled slot of a build
type SelectedPart struct {
	Slot      Slot              `json:"slot"`
	Category  string            `json:"category"`
	Component catalog.Component `json:"component"`
}

// SelectedBuild is the result of one allocation run
type SelectedBuild struct {
	Tier        string          `json:"tier"`
	Name        string          `json:"name"`
	Budget      decimal.Decimal `json:"budget"`
	Parts       []SelectedPart  `json:"parts"`
	Unfilled    []Slot          `json:"unfilled,omitempty"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
	Performance Performance     `json:"performance"`
}

// IsEmpty reports whether no slot was filled
func (b *SelectedBuild) IsEmpty() bool {
	return b == nil || len(b.Parts) == 0
}

// Engine generates builds from templates
type Engine struct {
	templates *Templates
	lookup    catalog.Lookup
	ceiling   decimal.Decimal
	logger    *zap.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithPerformanceCeiling sets the budget at which custom builds score 100%
func WithPerformanceCeiling(ceiling decimal.Decimal) Option {
	return func(e *Engine) {
		if ceiling.IsPositive() {
			e.ceiling = ceiling
		}
	}
}

// WithLogger overrides the engine logger
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// DefaultPerformanceCeiling is the budget at which custom builds score 100%
var DefaultPerformanceCeiling = decimal.NewFromInt(3000)

// NewEngine creates a build engine
func NewEngine(templates *Templates, lookup catalog.Lookup, opts ...Option) *Engine {
	e := &Engine{
		templates: templates,
		lookup:    lookup,
		ceiling:   DefaultPerformanceCeiling,
		logger:    logging.Module("builder"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Tiers returns the predefined tier names in price order
func (e *Engine) Tiers() []string {
	return e.templates.Tiers()
}

// Template returns a predefined template
func (e *Engine) Template(tier string) (*Template, error) {
	tpl, ok := e.templates.Get(tier)
	if !ok {
		return nil, errors.NotFound("tier", tier)
	}
	return tpl, nil
}

// GenerateFromTier fills every slot of a predefined tier
func (e *Engine) GenerateFromTier(tier string) (*SelectedBuild, error) {
	tpl, err := e.Template(tier)
	if err != nil {
		return nil, err
	}

	build := e.fill(tpl)
	build.Budget = tpl.PriceRange.Max
	build.Performance = tpl.Performance

	e.logger.Debug("generated tier build",
		zap.String("tier", tier),
		zap.String("total", build.TotalPrice.String()),
		zap.Int("parts", len(build.Parts)))
	return build, nil
}

// GenerateFromBudget splits budget across the slots of the matching tier by priority.
// A budget of zero or less yields an empty build.
func (e *Engine) GenerateFromBudget(budget decimal.Decimal) *SelectedBuild {
	if !budget.IsPositive() {
		return &SelectedBuild{
			Tier:       TierCustom,
			Name:       "Custom Build",
			Budget:     budget,
			Unfilled:   slices.Clone(SlotOrder),
			TotalPrice: decimal.Zero,
		}
	}

	tpl := e.CustomTemplate(budget)
	build := e.fill(tpl)
	build.Budget = budget
	build.Performance = e.customPerformance(budget)

	e.logger.Debug("generated custom build",
		zap.String("budget", budget.String()),
		zap.String("total", build.TotalPrice.String()),
		zap.Int("parts", len(build.Parts)))
	return build
}

// CustomTemplate derives a template whose slot caps are budget × normalized priority.
// Priorities are divided by their sum only when they do not already sum to 1.
func (e *Engine) CustomTemplate(budget decimal.Decimal) *Template {
	base := e.templates.ForBudget(budget)

	total := lo.Reduce(SlotOrder, func(acc decimal.Decimal, slot Slot, _ int) decimal.Decimal {
		return acc.Add(base.Slots[slot].Priority)
	}, decimal.Zero)
	normalize := !total.Equal(decimal.NewFromInt(1))
	if normalize {
		e.logger.Debug("normalizing slot priorities",
			zap.String("tier", base.Tier),
			zap.String("sum", total.String()))
	}

	slots := make(map[Slot]SlotSpec, len(base.Slots))
	for _, slot := range SlotOrder {
		spec := base.Slots[slot]
		weight := spec.Priority
		if normalize {
			weight = weight.Div(total)
		}
		slots[slot] = SlotSpec{
			Category:  spec.Category,
			MaxBudget: budget.Mul(weight),
			Priority:  spec.Priority,
		}
	}

	return &Template{
		Tier:        TierCustom,
		Name:        "Custom Build (" + base.Name + ")",
		PriceRange:  PriceRange{Min: budget, Max: budget},
		Slots:       slots,
		Performance: e.customPerformance(budget),
	}
}

func (e *Engine) fill(tpl *Template) *SelectedBuild {
	build := &SelectedBuild{
		Tier:       tpl.Tier,
		Name:       tpl.Name,
		TotalPrice: decimal.Zero,
	}

	for _, slot := range SlotOrder {
		spec := tpl.Slots[slot]
		component, ok := e.lookup.Select(spec.Category, spec.MaxBudget).Get()
		if !ok || component.Price.GreaterThan(spec.MaxBudget) {
			e.logger.Debug("slot unfilled",
				zap.String("slot", string(slot)),
				zap.String("category", spec.Category),
				zap.String("max_budget", spec.MaxBudget.String()))
			build.Unfilled = append(build.Unfilled, slot)
			continue
		}
		build.Parts = append(build.Parts, SelectedPart{
			Slot:      slot,
			Category:  spec.Category,
			Component: component,
		})
		build.TotalPrice = build.TotalPrice.Add(component.Price)
	}
	return build
}

var (
	hundred      = decimal.NewFromInt(100)
	gamingScale  = decimal.RequireFromString("0.95")
	contentScale = decimal.RequireFromString("0.90")
)

func (e *Engine) customPerformance(budget decimal.Decimal) Performance {
	if !budget.IsPositive() {
		return Performance{}
	}
	pct := decimal.Min(budget.Div(e.ceiling), decimal.NewFromInt(1)).Mul(hundred)
	return Performance{
		Gaming:          int(pct.Mul(gamingScale).Round(0).IntPart()),
		ContentCreation: int(pct.Mul(contentScale).Round(0).IntPart()),
		Productivity:    int(pct.Round(0).IntPart()),
	}
}
