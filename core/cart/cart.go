// Package cart - Shopping cart engine
// A keyed collection of line items with derived totals, persisted as one
// snapshot under a fixed storage key after every mutation.
package cart

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/adapters/storage"
	"storefront/core/determinism"
	"storefront/core/types"
	"storefront/internal/errors"
	"storefront/internal/logging"
)

// StorageKey is where the cart snapshot is persisted
const StorageKey = "cart"

// Metadata is opaque display data carried with a line item
type Metadata struct {
	Image string `json:"image,omitempty"`
	Specs string `json:"specs,omitempty"`
}

// LineItem is one product in the cart
type LineItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Metadata  Metadata        `json:"metadata"`
}

// LineTotal returns unit price × quantity
func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Item is a product offered to Add
type Item struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	Metadata Metadata
}

// Pricing holds the rules used to derive totals
type Pricing struct {
	ShippingFlat decimal.Decimal
	TaxRate      decimal.Decimal
}

// DefaultPricing charges a flat 10.00 shipping and 10% tax
func DefaultPricing() Pricing {
	return Pricing{
		ShippingFlat: decimal.NewFromInt(10),
		TaxRate:      decimal.RequireFromString("0.10"),
	}
}

// Totals are derived from the line items, rounded to cents.
// Total is always Subtotal + Shipping + Tax.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Order is the receipt returned by Checkout
type Order struct {
	ID       string     `json:"id"`
	Items    []LineItem `json:"items"`
	Totals   Totals     `json:"totals"`
	PlacedAt time.Time  `json:"placedAt"`
}

// Cart is the shopping cart engine
type Cart struct {
	mu      sync.Mutex
	items   *determinism.StableMap[string, *LineItem]
	store   storage.Store
	pricing Pricing
	logger  *zap.Logger
	now     func() time.Time
}

// Option configures a Cart
type Option func(*Cart)

// WithPricing overrides the shipping and tax rules
func WithPricing(p Pricing) Option {
	return func(c *Cart) {
		c.pricing = p
	}
}

// WithLogger overrides the cart logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Cart) {
		c.logger = logger
	}
}

// WithClock overrides the clock used to stamp orders
func WithClock(now func() time.Time) Option {
	return func(c *Cart) {
		c.now = now
	}
}

// Open hydrates a cart from store. Missing state yields an empty cart; malformed state
// is logged and discarded. Only a failing store read is returned as an error.
func Open(ctx context.Context, store storage.Store, opts ...Option) (*Cart, error) {
	c := &Cart{
		items:   determinism.NewStableMap[string, *LineItem](),
		store:   store,
		pricing: DefaultPricing(),
		logger:  logging.Module("cart"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	raw, found, err := store.Get(ctx, StorageKey)
	if err != nil {
		return nil, errors.Storage("failed to read cart", err)
	}
	if !found {
		return c, nil
	}

	res, err := Decode(raw)
	if err != nil {
		c.logger.Warn("discarding persisted cart", zap.Error(errors.MalformedState(StorageKey, err)))
		return c, nil
	}
	for i := range res.Items {
		item := res.Items[i]
		c.items.Set(item.ID, &item)
	}

	if res.NeedsRewrite() {
		c.logger.Info("migrated persisted cart",
			zap.Int("legacy", res.Legacy),
			zap.Int("dropped", res.Dropped),
			zap.Int("merged", res.Merged),
			zap.Int("clamped", res.Clamped))
		if err := c.persist(ctx); err != nil {
			c.logger.Warn("failed to rewrite migrated cart", zap.Error(err))
		}
	}
	return c, nil
}

// Add puts one unit of item in the cart. An id already present only gains quantity;
// its stored name and price are kept.
func (c *Cart) Add(ctx context.Context, item Item) error {
	if item.ID == "" {
		return errors.Input("item id must not be empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.items.Get(item.ID); ok {
		existing.Quantity++
		if !item.Price.IsZero() && !item.Price.Equal(existing.UnitPrice) {
			c.logger.Debug("keeping first-add price",
				zap.String("id", item.ID),
				zap.String("stored", existing.UnitPrice.String()),
				zap.String("offered", item.Price.String()))
		}
	} else {
		c.items.Set(item.ID, &LineItem{
			ID:        item.ID,
			Name:      item.Name,
			UnitPrice: item.Price,
			Quantity:  1,
			Metadata:  item.Metadata,
		})
	}
	return c.persist(ctx)
}

// Remove takes one unit of id out of the cart, deleting the line at zero.
// Unknown ids are ignored.
func (c *Cart) Remove(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing, ok := c.items.Get(id)
	if !ok {
		c.logger.Debug("remove ignored", zap.Error(errors.UnknownID(StorageKey, id)))
		return nil
	}
	if existing.Quantity > 1 {
		existing.Quantity--
	} else {
		c.items.Delete(id)
	}
	return c.persist(ctx)
}

// SetQuantity sets the quantity of id, clamped to at least 1. Unknown ids are ignored.
func (c *Cart) SetQuantity(ctx context.Context, id string, n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing, ok := c.items.Get(id)
	if !ok {
		c.logger.Debug("set quantity ignored", zap.Error(errors.UnknownID(StorageKey, id)))
		return nil
	}
	if n < 1 {
		c.logger.Debug("clamping quantity", zap.Error(errors.InvalidQuantity(id, n)))
		n = 1
	}
	existing.Quantity = n
	return c.persist(ctx)
}

// Clear empties the cart
func (c *Cart) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items.Clear()
	return c.persist(ctx)
}

// Totals derives subtotal, shipping, tax and total from the current items
func (c *Cart) Totals() Totals {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totals()
}

func (c *Cart) totals() Totals {
	subtotal := decimal.Zero
	for _, it := range c.items.All() {
		subtotal = subtotal.Add(it.LineTotal())
	}
	subtotal = types.Cents(subtotal)

	shipping := decimal.Zero
	if subtotal.IsPositive() {
		shipping = types.Cents(c.pricing.ShippingFlat)
	}
	tax := types.Cents(subtotal.Mul(c.pricing.TaxRate))

	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}

// Checkout issues an order receipt for the current items. The cart is left as is.
// An empty cart is rejected with a user-visible error.
func (c *Cart) Checkout() (*Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.items.Len() == 0 {
		return nil, errors.EmptyCart()
	}

	order := &Order{
		ID:       uuid.NewString(),
		Items:    c.snapshot(),
		Totals:   c.totals(),
		PlacedAt: c.now().UTC(),
	}
	c.logger.Info("order placed",
		zap.String("order_id", order.ID),
		zap.Int("lines", len(order.Items)),
		zap.String("total", order.Totals.Total.String()))
	return order, nil
}

// Items returns a copy of the line items ordered by id
func (c *Cart) Items() []LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Get returns a copy of the line item for id
func (c *Cart) Get(id string) (LineItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	it, ok := c.items.Get(id)
	if !ok {
		return LineItem{}, false
	}
	return *it, true
}

// Count returns the number of units across all lines
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, it := range c.items.All() {
		n += it.Quantity
	}
	return n
}

// Len returns the number of distinct lines
func (c *Cart) Len() int {
	return c.items.Len()
}

func (c *Cart) snapshot() []LineItem {
	out := make([]LineItem, 0, c.items.Len())
	for _, it := range c.items.All() {
		out = append(out, *it)
	}
	return out
}

func (c *Cart) persist(ctx context.Context) error {
	raw, err := Encode(c.snapshot())
	if err != nil {
		return errors.Internal("failed to encode cart", err)
	}
	if err := c.store.Set(ctx, StorageKey, raw); err != nil {
		c.logger.Error("failed to persist cart", zap.Error(err))
		return errors.Storage("failed to persist cart", err)
	}
	return nil
}
