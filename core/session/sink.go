package session

import (
	"github.com/shopspring/decimal"

	"storefront/core/builder"
	"storefront/core/cart"
	"storefront/core/selection"
)

// Level classifies a notice
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is a short message for the shopper (a toast in a browser)
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// CartView is the cart portion of a snapshot
type CartView struct {
	Items  []cart.LineItem `json:"items"`
	Totals cart.Totals     `json:"totals"`
	Count  int             `json:"count"`
}

// Snapshot is the full model state handed to a renderer after each mutation
type Snapshot struct {
	Cart                 CartView               `json:"cart"`
	Wishlist             []selection.Entry      `json:"wishlist"`
	Peripherals          []selection.Entry      `json:"peripherals"`
	PeripheralsTotal     decimal.Decimal        `json:"peripheralsTotal"`
	BuildMarks           []selection.Entry      `json:"buildMarks"`
	LastBuild            *builder.SelectedBuild `json:"lastBuild,omitempty"`
	GrandTotal           decimal.Decimal        `json:"grandTotal"`
	BuildWithPeripherals decimal.Decimal        `json:"buildWithPeripherals"`
}

// Renderer receives snapshots. It must not call back into the session.
type Renderer interface {
	Render(Snapshot)
}

// Notifier receives notices. It must not call back into the session.
type Notifier interface {
	Notify(Notice)
}

// RendererFunc adapts a function to Renderer
type RendererFunc func(Snapshot)

// Render implements Renderer
func (f RendererFunc) Render(s Snapshot) { f(s) }

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(Notice)

// Notify implements Notifier
func (f NotifierFunc) Notify(n Notice) { f(n) }

type discard struct{}

func (discard) Render(Snapshot) {}
func (discard) Notify(Notice)   {}
