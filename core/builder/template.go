// Package builder - PC build allocation
// Splits a budget across part slots and asks a catalog lookup for one
// component per slot.
package builder

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/shopspring/decimal"
	"github.com/zclconf/go-cty/cty"

	"storefront/adapters/hclconf"
	"storefront/internal/errors"
)

// Slot is a part position in a build
type Slot string

const (
	SlotCPU         Slot = "cpu"
	SlotGPU         Slot = "gpu"
	SlotMotherboard Slot = "motherboard"
	SlotRAM         Slot = "ram"
	SlotStorage     Slot = "storage"
	SlotPSU         Slot = "psu"
	SlotCase        Slot = "case"
)

// SlotOrder is the order parts are selected and listed in
var SlotOrder = []Slot{SlotCPU, SlotGPU, SlotMotherboard, SlotRAM, SlotStorage, SlotPSU, SlotCase}

// TierCustom names templates derived from an arbitrary budget
const TierCustom = "custom"

// SlotSpec caps one slot of a template
type SlotSpec struct {
	Category  string          `json:"category"`
	MaxBudget decimal.Decimal `json:"maxBudget"`
	Priority  decimal.Decimal `json:"priority"`
}

// PriceRange is the nominal spend of a tier
type PriceRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// Performance holds 0-100 scores
type Performance struct {
	Gaming          int `json:"gaming"`
	ContentCreation int `json:"contentCreation"`
	Productivity    int `json:"productivity"`
}

// Template is the allocation policy of one tier
type Template struct {
	Tier        string            `json:"tier"`
	Name        string            `json:"name"`
	PriceRange  PriceRange        `json:"priceRange"`
	Slots       map[Slot]SlotSpec `json:"slots"`
	Performance Performance       `json:"performance"`
}

// Templates is the set of predefined tiers, ordered by price
type Templates struct {
	byTier map[string]*Template
	order  []string
}

// Get returns the template for a tier
func (t *Templates) Get(tier string) (*Template, bool) {
	tpl, ok := t.byTier[tier]
	return tpl, ok
}

// Tiers returns tier names in ascending price order
func (t *Templates) Tiers() []string {
	return slices.Clone(t.order)
}

// ForBudget returns the cheapest tier whose range reaches budget, or the most
// expensive tier when budget exceeds them all.
func (t *Templates) ForBudget(budget decimal.Decimal) *Template {
	for _, name := range t.order {
		if tpl := t.byTier[name]; budget.LessThanOrEqual(tpl.PriceRange.Max) {
			return tpl
		}
	}
	return t.byTier[t.order[len(t.order)-1]]
}

//go:embed templates.hcl
var defaultTemplates []byte

type templateFile struct {
	Tiers []tierBlock `hcl:"tier,block"`
}

type tierBlock struct {
	Tier        string           `hcl:"tier,label"`
	Name        string           `hcl:"name"`
	MinPrice    hcl.Expression   `hcl:"min_price"`
	MaxPrice    hcl.Expression   `hcl:"max_price"`
	Performance performanceBlock `hcl:"performance,block"`
	Slots       []slotBlock      `hcl:"slot,block"`
}

type performanceBlock struct {
	Gaming          int `hcl:"gaming"`
	ContentCreation int `hcl:"content_creation"`
	Productivity    int `hcl:"productivity"`
}

type slotBlock struct {
	Slot      string         `hcl:"slot,label"`
	Category  string         `hcl:"category"`
	MaxBudget hcl.Expression `hcl:"max_budget"`
	Priority  hcl.Expression `hcl:"priority"`
}

// DefaultTemplates returns the built-in tiers. performanceCeiling is visible to
// template expressions as performance_ceiling.
func DefaultTemplates(performanceCeiling decimal.Decimal) (*Templates, error) {
	return ParseTemplates("templates.hcl", defaultTemplates, performanceCeiling)
}

// LoadTemplates reads tiers from path, or the built-in tiers when path is empty
func LoadTemplates(path string, performanceCeiling decimal.Decimal) (*Templates, error) {
	if path == "" {
		return DefaultTemplates(performanceCeiling)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Config("failed to read templates file", err)
	}
	return ParseTemplates(filepath.Base(path), src, performanceCeiling)
}

// ParseTemplates decodes and validates a templates document
func ParseTemplates(filename string, src []byte, performanceCeiling decimal.Decimal) (*Templates, error) {
	doc := hclconf.NewDocument(map[string]cty.Value{
		"performance_ceiling": hclconf.DecimalVal(performanceCeiling),
	})

	var file templateFile
	if err := doc.Decode(filename, src, &file); err != nil {
		return nil, errors.Config("invalid build templates", err)
	}
	if len(file.Tiers) == 0 {
		return nil, errors.New(errors.TypeConfig, "build templates define no tiers")
	}

	set := &Templates{byTier: make(map[string]*Template)}
	for _, block := range file.Tiers {
		tpl, err := block.template(doc)
		if err != nil {
			return nil, errors.Config(fmt.Sprintf("invalid tier %q", block.Tier), err)
		}
		if _, dup := set.byTier[tpl.Tier]; dup {
			return nil, errors.Newf(errors.TypeConfig, "duplicate tier %q", tpl.Tier)
		}
		set.byTier[tpl.Tier] = tpl
		set.order = append(set.order, tpl.Tier)
	}

	slices.SortStableFunc(set.order, func(a, b string) int {
		return set.byTier[a].PriceRange.Max.Cmp(set.byTier[b].PriceRange.Max)
	})
	return set, nil
}

func (b tierBlock) template(doc *hclconf.Document) (*Template, error) {
	if b.Tier == "" || b.Tier == TierCustom {
		return nil, fmt.Errorf("tier name %q is reserved", b.Tier)
	}

	minPrice, err := requiredDecimal(doc, "min_price", b.MinPrice)
	if err != nil {
		return nil, err
	}
	maxPrice, err := requiredDecimal(doc, "max_price", b.MaxPrice)
	if err != nil {
		return nil, err
	}
	if minPrice.GreaterThan(maxPrice) {
		return nil, fmt.Errorf("min_price %s exceeds max_price %s", minPrice, maxPrice)
	}

	perf := Performance(b.Performance)
	for _, score := range []int{perf.Gaming, perf.ContentCreation, perf.Productivity} {
		if score < 0 || score > 100 {
			return nil, fmt.Errorf("performance score %d outside 0-100", score)
		}
	}

	slots := make(map[Slot]SlotSpec, len(b.Slots))
	for _, sb := range b.Slots {
		slot := Slot(sb.Slot)
		if !slices.Contains(SlotOrder, slot) {
			return nil, fmt.Errorf("unknown slot %q", sb.Slot)
		}
		if _, dup := slots[slot]; dup {
			return nil, fmt.Errorf("slot %q defined twice", sb.Slot)
		}
		spec, err := sb.spec(doc)
		if err != nil {
			return nil, fmt.Errorf("slot %q: %w", sb.Slot, err)
		}
		slots[slot] = spec
	}
	for _, slot := range SlotOrder {
		if _, ok := slots[slot]; !ok {
			return nil, fmt.Errorf("missing slot %q", slot)
		}
	}

	return &Template{
		Tier:        b.Tier,
		Name:        b.Name,
		PriceRange:  PriceRange{Min: minPrice, Max: maxPrice},
		Slots:       slots,
		Performance: perf,
	}, nil
}

func (sb slotBlock) spec(doc *hclconf.Document) (SlotSpec, error) {
	if sb.Category == "" {
		return SlotSpec{}, fmt.Errorf("category must not be empty")
	}
	maxBudget, err := requiredDecimal(doc, "max_budget", sb.MaxBudget)
	if err != nil {
		return SlotSpec{}, err
	}
	if maxBudget.IsNegative() {
		return SlotSpec{}, fmt.Errorf("max_budget must not be negative")
	}
	priority, err := requiredDecimal(doc, "priority", sb.Priority)
	if err != nil {
		return SlotSpec{}, err
	}
	if !priority.IsPositive() || priority.GreaterThan(decimal.NewFromInt(1)) {
		return SlotSpec{}, fmt.Errorf("priority %s outside (0, 1]", priority)
	}
	return SlotSpec{Category: sb.Category, MaxBudget: maxBudget, Priority: priority}, nil
}

func requiredDecimal(doc *hclconf.Document, name string, expr hcl.Expression) (decimal.Decimal, error) {
	d, ok, err := doc.Decimal(expr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", name, err)
	}
	if !ok {
		return decimal.Zero, fmt.Errorf("%s is required", name)
	}
	return d, nil
}
