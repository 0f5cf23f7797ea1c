// Package hclconf decodes the HCL documents that define tier templates and the product catalog.
// Money values are read through cty so they never pass through float64.
package hclconf

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/shopspring/decimal"
	"github.com/zclconf/go-cty/cty"
)

// Document decodes HCL sources against a shared evaluation context
type Document struct {
	ctx *hcl.EvalContext
}

// NewDocument creates a decoder exposing vars to every expression
func NewDocument(vars map[string]cty.Value) *Document {
	if vars == nil {
		vars = map[string]cty.Value{}
	}
	return &Document{ctx: &hcl.EvalContext{Variables: vars}}
}

// Decode parses src (native syntax when filename ends in .hcl, JSON when .json) into target
func (d *Document) Decode(filename string, src []byte, target interface{}) error {
	if err := hclsimple.Decode(filename, src, d.ctx, target); err != nil {
		return fmt.Errorf("decode %s: %w", filename, err)
	}
	return nil
}

// Decimal evaluates expr as an exact decimal. A null value (absent optional attribute)
// yields ok=false.
func (d *Document) Decimal(expr hcl.Expression) (value decimal.Decimal, ok bool, err error) {
	if expr == nil {
		return decimal.Zero, false, nil
	}
	v, diags := expr.Value(d.ctx)
	if diags.HasErrors() {
		return decimal.Zero, false, diags
	}
	if v.IsNull() {
		return decimal.Zero, false, nil
	}
	dec, err := CtyToDecimal(v)
	if err != nil {
		rng := expr.Range()
		return decimal.Zero, false, fmt.Errorf("%s: %w", rng.String(), err)
	}
	return dec, true, nil
}

// CtyToDecimal converts a known cty number to a decimal
func CtyToDecimal(v cty.Value) (decimal.Decimal, error) {
	if !v.IsKnown() {
		return decimal.Zero, fmt.Errorf("value is not known")
	}
	if v.IsNull() {
		return decimal.Zero, fmt.Errorf("value is null")
	}
	if v.Type() != cty.Number {
		return decimal.Zero, fmt.Errorf("expected number, got %s", v.Type().FriendlyName())
	}
	return decimal.NewFromString(v.AsBigFloat().Text('f', -1))
}

// DecimalVal converts a decimal into a cty number for use as an evaluation variable
func DecimalVal(d decimal.Decimal) cty.Value {
	v, err := cty.ParseNumberVal(d.String())
	if err != nil {
		return cty.NumberFloatVal(d.InexactFloat64())
	}
	return v
}
