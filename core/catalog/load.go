package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/shopspring/decimal"

	"storefront/adapters/hclconf"
	"storefront/internal/errors"
)

//go:embed products.hcl
var defaultProducts []byte

type productFile struct {
	Products []productBlock `hcl:"product,block"`
}

type productBlock struct {
	ID            string         `hcl:"id,label"`
	Name          string         `hcl:"name"`
	Category      string         `hcl:"category"`
	Brand         string         `hcl:"brand,optional"`
	Price         hcl.Expression `hcl:"price"`
	OriginalPrice hcl.Expression `hcl:"original_price,optional"`
	Rating        int            `hcl:"rating,optional"`
	RatingCount   int            `hcl:"rating_count,optional"`
	Image         string         `hcl:"image,optional"`
	Specs         string         `hcl:"specs,optional"`
	New           bool           `hcl:"new,optional"`
	Stock         int            `hcl:"stock,optional"`
}

// Default returns the built-in catalog
func Default() (*Catalog, error) {
	return Parse("products.hcl", defaultProducts)
}

// LoadFile reads a catalog from an HCL (or HCL JSON) file. An empty path yields the
// built-in catalog.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Config("failed to read catalog file", err)
	}
	return Parse(filepath.Base(path), src)
}

// Parse decodes a catalog document
func Parse(filename string, src []byte) (*Catalog, error) {
	doc := hclconf.NewDocument(nil)

	var file productFile
	if err := doc.Decode(filename, src, &file); err != nil {
		return nil, errors.Config("invalid catalog", err)
	}

	c := NewCatalog()
	for _, block := range file.Products {
		p, err := block.product(doc)
		if err != nil {
			return nil, errors.Config(fmt.Sprintf("invalid product %q", block.ID), err)
		}
		if _, dup := c.Get(p.ID); dup {
			return nil, errors.Newf(errors.TypeConfig, "duplicate product id %q", p.ID)
		}
		c.Register(p)
	}
	return c, nil
}

func (b productBlock) product(doc *hclconf.Document) (Product, error) {
	if b.ID == "" {
		return Product{}, fmt.Errorf("id must not be empty")
	}
	if b.Category == "" {
		return Product{}, fmt.Errorf("category must not be empty")
	}
	if b.Stock < 0 {
		return Product{}, fmt.Errorf("stock must not be negative")
	}

	price, _, err := doc.Decimal(b.Price)
	if err != nil {
		return Product{}, fmt.Errorf("price: %w", err)
	}
	if price.IsNegative() {
		return Product{}, fmt.Errorf("price must not be negative")
	}

	original, ok, err := doc.Decimal(b.OriginalPrice)
	if err != nil {
		return Product{}, fmt.Errorf("original_price: %w", err)
	}
	if !ok {
		original = decimal.Zero
	}

	return Product{
		ID:            b.ID,
		Name:          b.Name,
		Category:      b.Category,
		Brand:         b.Brand,
		Price:         price,
		OriginalPrice: original,
		Rating:        b.Rating,
		RatingCount:   b.RatingCount,
		Image:         b.Image,
		Specs:         b.Specs,
		IsNew:         b.New,
		Stock:         b.Stock,
	}, nil
}
