// Package catalog - Product catalog for the storefront
// Holds the parts and peripherals offered for sale and answers the
// component lookups the PC builder makes.
package catalog

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/core/types"
)

// Part categories filled by the PC builder
const (
	CategoryProcessors    = "processors"
	CategoryGraphicsCards = "graphics-cards"
	CategoryMotherboards  = "motherboards"
	CategoryMemory        = "memory"
	CategoryStorage       = "storage"
	CategoryPowerSupplies = "power-supplies"
	CategoryCases         = "cases"
)

// Peripheral categories offered next to a build
const (
	CategoryMonitors  = "monitors"
	CategoryKeyboards = "keyboards"
	CategoryMice      = "mice"
	CategoryHeadsets  = "headsets"
	CategorySpeakers  = "speakers"
)

var peripheralCategories = []string{
	CategoryMonitors,
	CategoryKeyboards,
	CategoryMice,
	CategoryHeadsets,
	CategorySpeakers,
}

// IsPeripheral reports whether category holds peripherals rather than build parts
func IsPeripheral(category string) bool {
	return slices.Contains(peripheralCategories, category)
}

// Product is a catalog entry
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Brand         string          `json:"brand,omitempty"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"originalPrice,omitempty"`
	Rating        int             `json:"rating,omitempty"`
	RatingCount   int             `json:"ratingCount,omitempty"`
	Image         string          `json:"image,omitempty"`
	Specs         string          `json:"specs,omitempty"`
	IsNew         bool            `json:"isNew,omitempty"`
	Stock         int             `json:"stock"`
}

// Snapshot returns the display data cached by selection sets
func (p *Product) Snapshot() types.Snapshot {
	return types.Snapshot{Name: p.Name, Price: p.Price, Image: p.Image}
}

// OnSale reports whether the product has a higher original price
func (p *Product) OnSale() bool {
	return p.OriginalPrice.GreaterThan(p.Price)
}

// Catalog is an ordered product registry
type Catalog struct {
	products map[string]*Product
	order    []string
}

// NewCatalog creates a new catalog
func NewCatalog() *Catalog {
	return &Catalog{
		products: make(map[string]*Product),
	}
}

// Register adds a product to the catalog. Registering an id again replaces the
// entry but keeps its original position.
func (c *Catalog) Register(p Product) {
	if _, exists := c.products[p.ID]; !exists {
		c.order = append(c.order, p.ID)
	}
	c.products[p.ID] = &p
}

// Get returns a product by id
func (c *Catalog) Get(id string) (*Product, bool) {
	p, ok := c.products[id]
	return p, ok
}

// Len returns the number of products
func (c *Catalog) Len() int {
	return len(c.order)
}

// All returns every product in registration order
func (c *Catalog) All() []*Product {
	result := make([]*Product, 0, len(c.order))
	for _, id := range c.order {
		result = append(result, c.products[id])
	}
	return result
}

// ListByCategory returns all products in a category, in registration order
func (c *Catalog) ListByCategory(category string) []*Product {
	var result []*Product
	for _, id := range c.order {
		if p := c.products[id]; p.Category == category {
			result = append(result, p)
		}
	}
	return result
}

// Categories returns the distinct categories in first-seen order
func (c *Catalog) Categories() []string {
	var result []string
	for _, id := range c.order {
		cat := c.products[id].Category
		if !slices.Contains(result, cat) {
			result = append(result, cat)
		}
	}
	return result
}

// Brands returns the distinct brands, lowercased and sorted
func (c *Catalog) Brands() []string {
	var result []string
	for _, p := range c.products {
		if p.Brand == "" {
			continue
		}
		b := strings.ToLower(p.Brand)
		if !slices.Contains(result, b) {
			result = append(result, b)
		}
	}
	slices.Sort(result)
	return result
}

// Stats returns catalog statistics
func (c *Catalog) Stats() CatalogStats {
	stats := CatalogStats{
		ByCategory: make(map[string]int),
	}

	for _, p := range c.products {
		stats.Total++
		stats.ByCategory[p.Category]++

		if IsPeripheral(p.Category) {
			stats.Peripherals++
		}
		if p.Stock > 0 {
			stats.InStock++
		}
		if p.OnSale() {
			stats.OnSale++
		}
	}

	return stats
}

// CatalogStats holds catalog statistics
type CatalogStats struct {
	Total       int
	Peripherals int
	InStock     int
	OnSale      int
	ByCategory  map[string]int
}
