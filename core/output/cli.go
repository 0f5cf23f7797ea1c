package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/core/builder"
	"storefront/core/catalog"
	"storefront/core/session"
	"storefront/core/types"
	"storefront/core/ui"
)

// CLIFormatter renders results as terminal tables
type CLIFormatter struct {
	noColor bool
}

// NewCLIFormatter creates a CLI formatter
func NewCLIFormatter(noColor bool) *CLIFormatter {
	return &CLIFormatter{noColor: noColor}
}

// Format implements Formatter
func (f *CLIFormatter) Format() Format {
	return FormatCLI
}

// Render implements Formatter
func (f *CLIFormatter) Render(w io.Writer, result *Result) error {
	u := ui.NewWriter(w, f.noColor)
	cur := result.Currency
	if cur == "" {
		cur = types.CurrencyUSD
	}
	money := func(d decimal.Decimal) string { return types.FormatMoney(cur, d) }

	switch {
	case result.Cart != nil:
		renderCart(u, result.Cart, money)
	case result.Order != nil:
		u.Header("Order " + result.Order.ID)
		renderCart(u, &session.CartView{Items: result.Order.Items, Totals: result.Order.Totals}, money)
		u.Println("%s", u.Dim("Placed "+result.Order.PlacedAt.Format("2006-01-02 15:04:05 MST")))
	case result.Build != nil:
		renderBuild(u, result.Build, money)
	case result.Tiers != nil:
		renderTiers(u, result.Tiers, money)
	case result.Selection != nil:
		renderSelection(u, result.Selection, money)
	case result.Products != nil:
		renderProducts(u, result.Products, money)
	case result.Summary != nil:
		renderSummary(u, result.Summary, money)
	default:
		return fmt.Errorf("nothing to render")
	}
	return nil
}

func renderCart(u *ui.Writer, view *session.CartView, money func(decimal.Decimal) string) {
	if len(view.Items) == 0 {
		u.Info("Your cart is empty")
		return
	}

	t := u.NewTable("ID", "ITEM", "PRICE", "QTY", "LINE")
	for _, it := range view.Items {
		t.AddRow(it.ID, it.Name, money(it.UnitPrice), fmt.Sprint(it.Quantity), money(it.LineTotal()))
	}
	t.Render()
	u.Println("")

	u.NewTotalsBox().
		Add("Subtotal", money(view.Totals.Subtotal)).
		Add("Shipping", money(view.Totals.Shipping)).
		Add("Tax", money(view.Totals.Tax)).
		Add("Total", money(view.Totals.Total)).
		Render()
}

func renderBuild(u *ui.Writer, b *BuildResult, money func(decimal.Decimal) string) {
	u.Header(b.Name)

	if b.IsEmpty() {
		u.Warning("No components fit this budget")
	} else {
		t := u.NewTable("SLOT", "COMPONENT", "PRICE")
		for _, p := range b.Parts {
			t.AddRow(string(p.Slot), p.Component.Name, money(p.Component.Price))
		}
		t.Render()
		for _, slot := range b.Unfilled {
			u.Warning("%s: nothing within budget", slot)
		}
	}
	u.Println("")

	u.SubHeader("Performance")
	u.Meter("Gaming", b.Performance.Gaming)
	u.Meter("Content Creation", b.Performance.ContentCreation)
	u.Meter("Productivity", b.Performance.Productivity)
	u.Println("")

	u.NewTotalsBox().
		Add("Build", money(b.TotalPrice)).
		Add("+ Periph.", money(b.WithPeripherals)).
		Add("+ Cart", money(b.GrandTotal)).
		Render()
}

func renderTiers(u *ui.Writer, tiers []*builder.Template, money func(decimal.Decimal) string) {
	t := u.NewTable("TIER", "NAME", "RANGE", "GAMING", "CREATION", "PRODUCTIVITY")
	for _, tpl := range tiers {
		t.AddRow(
			tpl.Tier,
			tpl.Name,
			money(tpl.PriceRange.Min)+" - "+money(tpl.PriceRange.Max),
			fmt.Sprint(tpl.Performance.Gaming),
			fmt.Sprint(tpl.Performance.ContentCreation),
			fmt.Sprint(tpl.Performance.Productivity),
		)
	}
	t.Render()
}

func renderSelection(u *ui.Writer, s *SelectionResult, money func(decimal.Decimal) string) {
	u.Header(s.Name)
	if len(s.Entries) == 0 {
		u.Info("Nothing selected")
		return
	}

	t := u.NewTable("ID", "NAME", "PRICE")
	for _, e := range s.Entries {
		price := ""
		if !e.Snapshot.IsZero() {
			price = money(e.Snapshot.Price)
		}
		t.AddRow(e.ID, e.Snapshot.Name, price)
	}
	t.Render()
	u.Println("")
	u.Println("Total: %s", u.Highlight(money(s.Total)))
}

func renderProducts(u *ui.Writer, products []*catalog.Product, money func(decimal.Decimal) string) {
	if len(products) == 0 {
		u.Info("No products match")
		return
	}

	t := u.NewTable("ID", "NAME", "BRAND", "PRICE", "WAS", "RATING", "STOCK")
	for _, p := range products {
		was := ""
		if p.OnSale() {
			was = fmt.Sprintf("%s (-%d%%)", money(p.OriginalPrice), catalog.Discount(p))
		}
		name := p.Name
		if p.IsNew {
			name += " [new]"
		}
		t.AddRow(p.ID, name, p.Brand, money(p.Price), was, stars(p.Rating), fmt.Sprint(p.Stock))
	}
	t.Render()
}

func renderSummary(u *ui.Writer, s *session.Snapshot, money func(decimal.Decimal) string) {
	u.Header("Cart")
	renderCart(u, &s.Cart, money)

	u.Header("Selections")
	u.Println("  Wishlist:     %d", len(s.Wishlist))
	u.Println("  Peripherals:  %d (%s)", len(s.Peripherals), money(s.PeripheralsTotal))
	u.Println("  Build marks:  %d", len(s.BuildMarks))
}

func stars(n int) string {
	n = max(0, min(5, n))
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}
