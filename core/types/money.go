// Package types - shared money and product snapshot types
package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

// String returns the string representation
func (c Currency) String() string {
	return string(c)
}

// Symbol returns the display symbol for the currency
func (c Currency) Symbol() string {
	switch c {
	case CurrencyEUR:
		return "€"
	case CurrencyGBP:
		return "£"
	default:
		return "$"
	}
}

// Cents rounds an amount to two decimal places, half away from zero.
func Cents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FormatMoney renders an amount with its currency symbol and two decimals ("$54.00").
func FormatMoney(c Currency, d decimal.Decimal) string {
	return fmt.Sprintf("%s%s", c.Symbol(), d.StringFixed(2))
}

// Snapshot is the cached display data stored alongside a selected product id.
type Snapshot struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image,omitempty"`
}

// IsZero reports whether the snapshot carries no display data
func (s Snapshot) IsZero() bool {
	return s.Name == "" && s.Image == "" && s.Price.IsZero()
}
