package catalog

import (
	"strings"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"

	"storefront/core/types"
)

// Component is a candidate part returned by a lookup
type Component struct {
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image,omitempty"`
}

// Lookup picks one component for a category under a price ceiling.
// An empty option means nothing fits and the slot stays unfilled.
type Lookup interface {
	Select(category string, ceiling decimal.Decimal) mo.Option[Component]
}

// Lookup names accepted by NewLookup
const (
	LookupNearBudget = "near-budget"
	LookupInventory  = "inventory"
)

// NewLookup returns the named lookup. Inventory lookups read from c.
func NewLookup(name string, c *Catalog) (Lookup, bool) {
	switch name {
	case "", LookupNearBudget:
		return NearBudget{}, true
	case LookupInventory:
		return NewInventory(c), true
	default:
		return nil, false
	}
}

var nearBudgetFactor = decimal.RequireFromString("0.9")

// NearBudget synthesizes a sample part priced at 90% of the ceiling
type NearBudget struct{}

// Select implements Lookup
func (NearBudget) Select(category string, ceiling decimal.Decimal) mo.Option[Component] {
	if !ceiling.IsPositive() {
		return mo.None[Component]()
	}
	return mo.Some(Component{
		Name:  "Sample " + strings.ReplaceAll(category, "-", " "),
		Price: types.Cents(ceiling.Mul(nearBudgetFactor)),
		Image: "images/products/" + category + ".jpg",
	})
}

// Inventory selects real products: the most expensive in-stock product that fits
type Inventory struct {
	catalog *Catalog
}

// NewInventory creates an inventory lookup over c
func NewInventory(c *Catalog) *Inventory {
	return &Inventory{catalog: c}
}

// Select implements Lookup. Equal prices resolve to the lowest id.
func (l *Inventory) Select(category string, ceiling decimal.Decimal) mo.Option[Component] {
	if !ceiling.IsPositive() {
		return mo.None[Component]()
	}
	candidates := lo.Filter(l.catalog.ListByCategory(category), func(p *Product, _ int) bool {
		return p.Stock > 0 && p.Price.LessThanOrEqual(ceiling)
	})
	if len(candidates) == 0 {
		return mo.None[Component]()
	}

	best := lo.MaxBy(candidates, func(a, b *Product) bool {
		if a.Price.Equal(b.Price) {
			return a.ID < b.ID
		}
		return a.Price.GreaterThan(b.Price)
	})
	return mo.Some(Component{
		ID:    best.ID,
		Name:  best.Name,
		Price: best.Price,
		Image: best.Image,
	})
}
