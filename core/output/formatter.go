// Package output provides output formatting for storefront results.
// This package produces human and machine-readable outputs.
package output

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"storefront/core/builder"
	"storefront/core/cart"
	"storefront/core/catalog"
	"storefront/core/selection"
	"storefront/core/session"
	"storefront/core/types"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable CLI table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for the given result
	Render(w io.Writer, result *Result) error
}

// Result is whatever a command produced. Exactly one payload field is set.
type Result struct {
	// Currency is used to display amounts
	Currency types.Currency `json:"-"`

	// Cart is the cart view with its totals
	Cart *session.CartView `json:"cart,omitempty"`

	// Order is a checkout receipt
	Order *cart.Order `json:"order,omitempty"`

	// Build is a generated PC build
	Build *BuildResult `json:"build,omitempty"`

	// Tiers lists the predefined build templates
	Tiers []*builder.Template `json:"tiers,omitempty"`

	// Selection is one selection set
	Selection *SelectionResult `json:"selection,omitempty"`

	// Products is a filtered catalog listing
	Products []*catalog.Product `json:"products,omitempty"`

	// Summary is the full session snapshot
	Summary *session.Snapshot `json:"summary,omitempty"`
}

// BuildResult is a build plus the totals it joins into
type BuildResult struct {
	*builder.SelectedBuild

	// GrandTotal is the cart total plus the build price
	GrandTotal decimal.Decimal `json:"grandTotal"`

	// WithPeripherals is the build price plus selected peripherals
	WithPeripherals decimal.Decimal `json:"withPeripherals"`
}

// SelectionResult is the content of one selection set
type SelectionResult struct {
	// Name is the display name of the set
	Name string `json:"name"`

	// Entries are the members in id order
	Entries []selection.Entry `json:"entries"`

	// Total is the sum of cached prices
	Total decimal.Decimal `json:"total"`
}

// NewFormatter returns the formatter for a format name
func NewFormatter(format Format, noColor bool) (Formatter, error) {
	switch format {
	case FormatCLI, "":
		return NewCLIFormatter(noColor), nil
	case FormatJSON:
		return NewJSONFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (supported: cli, json)", format)
	}
}
