package catalog

import (
	"cmp"
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"
)

// SortOrder controls product listing order
type SortOrder string

const (
	SortFeatured  SortOrder = "featured"
	SortPriceLow  SortOrder = "price-low"
	SortPriceHigh SortOrder = "price-high"
	SortNewest    SortOrder = "newest"
)

// ParseSortOrder validates a sort order name
func ParseSortOrder(s string) (SortOrder, bool) {
	switch o := SortOrder(s); o {
	case SortFeatured, SortPriceLow, SortPriceHigh, SortNewest:
		return o, true
	case "":
		return SortFeatured, true
	default:
		return "", false
	}
}

// Query filters a product listing. Zero values match everything.
type Query struct {
	Categories []string
	Brands     []string
	MinPrice   mo.Option[decimal.Decimal]
	MaxPrice   mo.Option[decimal.Decimal]
	Sort       SortOrder
}

// Matches reports whether p passes every filter in q
func (q Query) Matches(p *Product) bool {
	if len(q.Categories) > 0 && !slices.Contains(q.Categories, p.Category) {
		return false
	}
	if len(q.Brands) > 0 {
		brand := strings.ToLower(p.Brand)
		if !lo.ContainsBy(q.Brands, func(b string) bool { return strings.ToLower(b) == brand }) {
			return false
		}
	}
	if floor, ok := q.MinPrice.Get(); ok && p.Price.LessThan(floor) {
		return false
	}
	if ceiling, ok := q.MaxPrice.Get(); ok && p.Price.GreaterThan(ceiling) {
		return false
	}
	return true
}

// Find returns the products matching q in the requested order. The sort is stable, so
// products that compare equal keep catalog order.
func (c *Catalog) Find(q Query) []*Product {
	result := lo.Filter(c.All(), func(p *Product, _ int) bool {
		return q.Matches(p)
	})

	switch q.Sort {
	case SortPriceLow:
		slices.SortStableFunc(result, func(a, b *Product) int { return a.Price.Cmp(b.Price) })
	case SortPriceHigh:
		slices.SortStableFunc(result, func(a, b *Product) int { return b.Price.Cmp(a.Price) })
	case SortNewest, SortFeatured:
		slices.SortStableFunc(result, func(a, b *Product) int {
			return cmp.Compare(newRank(a), newRank(b))
		})
	}
	return result
}

func newRank(p *Product) int {
	if p.IsNew {
		return 0
	}
	return 1
}

// ClampQuantity limits a requested quantity to [1, stock]. Out-of-stock products clamp to 0.
func ClampQuantity(p *Product, n int) int {
	return min(p.Stock, max(1, n))
}

var hundred = decimal.NewFromInt(100)

// Discount returns the whole-percent reduction from the original price, or 0 when the
// product is not on sale.
func Discount(p *Product) int {
	if !p.OnSale() || !p.OriginalPrice.IsPositive() {
		return 0
	}
	off := p.OriginalPrice.Sub(p.Price).Div(p.OriginalPrice).Mul(hundred)
	return int(off.Round(0).IntPart())
}
