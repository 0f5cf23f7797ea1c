// Package session - Application context for one shopper
// Owns the cart, the selection sets and the last generated build, and serializes
// every mutation through a single lock.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/adapters/storage"
	"storefront/core/builder"
	"storefront/core/cart"
	"storefront/core/catalog"
	"storefront/core/selection"
	"storefront/internal/errors"
	"storefront/internal/logging"
)

// Options configures a session
type Options struct {
	Pricing  cart.Pricing
	Catalog  *catalog.Catalog
	Builder  *builder.Engine
	Renderer Renderer
	Notifier Notifier
}

// Session is the single owner of shopper state
type Session struct {
	mu sync.Mutex

	store       storage.Store
	cart        *cart.Cart
	wishlist    *selection.Set
	peripherals *selection.Set
	marks       *selection.Set

	catalog   *catalog.Catalog
	builder   *builder.Engine
	lastBuild *builder.SelectedBuild

	renderer Renderer
	notifier Notifier
	logger   *zap.Logger
	closed   bool
}

// Open hydrates the cart and every selection set from store.
// The session takes ownership of store and closes it in Close.
func Open(ctx context.Context, store storage.Store, opts Options) (*Session, error) {
	if opts.Catalog == nil {
		return nil, errors.New(errors.TypeConfig, "session requires a catalog")
	}
	if opts.Builder == nil {
		return nil, errors.New(errors.TypeConfig, "session requires a build engine")
	}

	s := &Session{
		store:    store,
		catalog:  opts.Catalog,
		builder:  opts.Builder,
		renderer: opts.Renderer,
		notifier: opts.Notifier,
		logger:   logging.Module("session"),
	}
	if s.renderer == nil {
		s.renderer = discard{}
	}
	if s.notifier == nil {
		s.notifier = discard{}
	}

	var cartOpts []cart.Option
	if !opts.Pricing.TaxRate.IsZero() || !opts.Pricing.ShippingFlat.IsZero() {
		cartOpts = append(cartOpts, cart.WithPricing(opts.Pricing))
	}

	var err error
	if s.cart, err = cart.Open(ctx, store, cartOpts...); err != nil {
		return nil, err
	}
	if s.wishlist, err = selection.Open(ctx, store, selection.KeyWishlist); err != nil {
		return nil, err
	}
	if s.peripherals, err = selection.Open(ctx, store, selection.KeyPeripherals); err != nil {
		return nil, err
	}
	if s.marks, err = selection.Open(ctx, store, selection.KeyBuildMarks); err != nil {
		return nil, err
	}

	s.logger.Debug("session opened",
		zap.Int("cart_lines", s.cart.Len()),
		zap.Int("wishlist", s.wishlist.Len()),
		zap.Int("peripherals", s.peripherals.Len()),
		zap.Int("build_marks", s.marks.Len()))
	return s, nil
}

// Close releases the store. Every mutation has already been persisted.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.store.Close(); err != nil {
		return errors.Storage("failed to close store", err)
	}
	return nil
}

// Catalog returns the product catalog
func (s *Session) Catalog() *catalog.Catalog { return s.catalog }

// Cart returns the cart engine for reads
func (s *Session) Cart() *cart.Cart { return s.cart }

// Wishlist returns the wishlist set for reads
func (s *Session) Wishlist() *selection.Set { return s.wishlist }

// Peripherals returns the peripheral picks for reads
func (s *Session) Peripherals() *selection.Set { return s.peripherals }

// BuildMarks returns the products marked for the PC builder, for reads
func (s *Session) BuildMarks() *selection.Set { return s.marks }

// Tiers lists the predefined build tiers
func (s *Session) Tiers() []string { return s.builder.Tiers() }

// Template returns a predefined build template
func (s *Session) Template(tier string) (*builder.Template, error) { return s.builder.Template(tier) }

// AddToCart adds quantity units of a catalog product, limited to its stock
func (s *Session) AddToCart(ctx context.Context, productID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return err
	}
	p, ok := s.catalog.Get(productID)
	if !ok {
		return errors.NotFound("product", productID)
	}
	quantity = catalog.ClampQuantity(p, quantity)
	if quantity == 0 {
		s.notify(LevelError, fmt.Sprintf("%s is out of stock", p.Name))
		return errors.Newf(errors.TypeInput, "%s is out of stock", p.Name)
	}

	err := s.cart.Add(ctx, cart.Item{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Metadata: cart.Metadata{Image: p.Image, Specs: p.Specs},
	})
	if err == nil && quantity > 1 {
		item, _ := s.cart.Get(p.ID)
		err = s.cart.SetQuantity(ctx, p.ID, item.Quantity+quantity-1)
	}
	if err != nil {
		return s.fail(err)
	}

	s.notify(LevelSuccess, fmt.Sprintf("%s added to cart", p.Name))
	s.render()
	return nil
}

// RemoveFromCart takes one unit of id out of the cart
func (s *Session) RemoveFromCart(ctx context.Context, id string) error {
	return s.mutate(func() error { return s.cart.Remove(ctx, id) })
}

// SetCartQuantity sets the quantity of a cart line
func (s *Session) SetCartQuantity(ctx context.Context, id string, n int) error {
	return s.mutate(func() error { return s.cart.SetQuantity(ctx, id, n) })
}

// ClearCart empties the cart
func (s *Session) ClearCart(ctx context.Context) error {
	return s.mutate(func() error { return s.cart.Clear(ctx) })
}

// Checkout issues an order receipt. An empty cart is reported to the notifier.
func (s *Session) Checkout() (*cart.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	order, err := s.cart.Checkout()
	if err != nil {
		return nil, s.fail(err)
	}
	s.notify(LevelSuccess, "Proceeding to checkout... (This is a demo)")
	return order, nil
}

// ToggleWishlist adds or removes a product from the wishlist
func (s *Session) ToggleWishlist(ctx context.Context, id string) (bool, error) {
	return s.toggle(ctx, s.wishlist, id, "%s added to wishlist", "%s removed from wishlist")
}

// TogglePeripheral selects or deselects a peripheral
func (s *Session) TogglePeripheral(ctx context.Context, id string) (bool, error) {
	return s.toggle(ctx, s.peripherals, id, "%s selected", "%s deselected")
}

// ToggleBuildMark marks or unmarks a part for the PC builder
func (s *Session) ToggleBuildMark(ctx context.Context, id string) (bool, error) {
	return s.toggle(ctx, s.marks, id, "%s added to PC Builder", "%s removed from PC Builder")
}

// ClearSelection empties one of the session's selection sets
func (s *Session) ClearSelection(ctx context.Context, set *selection.Set) error {
	if set != s.wishlist && set != s.peripherals && set != s.marks {
		return errors.New(errors.TypeInternal, "selection set does not belong to this session")
	}
	return s.mutate(func() error { return set.Clear(ctx) })
}

// GenerateTierBuild replaces the last build with one from a predefined tier
func (s *Session) GenerateTierBuild(tier string) (*builder.SelectedBuild, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	build, err := s.builder.GenerateFromTier(tier)
	if err != nil {
		return nil, s.fail(err)
	}
	s.lastBuild = build
	s.render()
	return build, nil
}

// GenerateBudgetBuild replaces the last build with one fitted to budget
func (s *Session) GenerateBudgetBuild(budget decimal.Decimal) (*builder.SelectedBuild, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	s.lastBuild = s.builder.GenerateFromBudget(budget)
	s.render()
	return s.lastBuild, nil
}

// LastBuild returns the most recent build, or nil
func (s *Session) LastBuild() *builder.SelectedBuild {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBuild
}

// GrandTotal is the cart total plus the price of the last build
func (s *Session) GrandTotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grandTotal()
}

// BuildWithPeripherals is the price of the last build plus the selected peripherals
func (s *Session) BuildWithPeripherals() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buildWithPeripherals()
}

// Snapshot returns the current model state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) buildTotal() decimal.Decimal {
	if s.lastBuild == nil {
		return decimal.Zero
	}
	return s.lastBuild.TotalPrice
}

func (s *Session) grandTotal() decimal.Decimal {
	return s.cart.Totals().Total.Add(s.buildTotal())
}

func (s *Session) buildWithPeripherals() decimal.Decimal {
	return s.buildTotal().Add(s.peripherals.Total())
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{
		Cart: CartView{
			Items:  s.cart.Items(),
			Totals: s.cart.Totals(),
			Count:  s.cart.Count(),
		},
		Wishlist:             entries(s.wishlist),
		Peripherals:          entries(s.peripherals),
		PeripheralsTotal:     s.peripherals.Total(),
		BuildMarks:           entries(s.marks),
		LastBuild:            s.lastBuild,
		GrandTotal:           s.grandTotal(),
		BuildWithPeripherals: s.buildWithPeripherals(),
	}
}

func entries(set *selection.Set) []selection.Entry {
	out := make([]selection.Entry, 0, set.Len())
	for id, snap := range set.All() {
		out = append(out, selection.Entry{ID: id, Snapshot: snap})
	}
	return out
}

func (s *Session) toggle(ctx context.Context, set *selection.Set, id, added, removed string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return false, err
	}

	name := id
	snap, member := set.Get(id)
	if p, ok := s.catalog.Get(id); ok {
		name = p.Name
		if !member {
			snap = p.Snapshot()
		}
	} else if !member {
		return false, s.fail(errors.NotFound("product", id))
	} else if snap.Name != "" {
		name = snap.Name
	}

	in, err := set.Toggle(ctx, id, snap)
	if err != nil {
		return in, s.fail(err)
	}
	if in {
		s.notify(LevelSuccess, fmt.Sprintf(added, name))
	} else {
		s.notify(LevelInfo, fmt.Sprintf(removed, name))
	}
	s.render()
	return in, nil
}

func (s *Session) mutate(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := fn(); err != nil {
		return s.fail(err)
	}
	s.render()
	return nil
}

func (s *Session) checkOpen() error {
	if s.closed {
		return errors.New(errors.TypeInternal, "session is closed")
	}
	return nil
}

// fail reports user-visible errors to the notifier and passes err through
func (s *Session) fail(err error) error {
	var appErr *errors.Error
	if errors.As(err, &appErr) && appErr.UserVisible() {
		s.notify(LevelError, appErr.Message)
	} else {
		s.logger.Debug("operation failed", zap.Error(err))
	}
	return err
}

func (s *Session) notify(level Level, message string) {
	s.notifier.Notify(Notice{Level: level, Message: message})
}

func (s *Session) render() {
	s.renderer.Render(s.snapshot())
}
