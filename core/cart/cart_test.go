package cart

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"storefront/adapters/storage"
	"storefront/internal/errors"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func openCart(t *testing.T, store storage.Store, opts ...Option) *Cart {
	t.Helper()
	c, err := Open(context.Background(), store, opts...)
	require.NoError(t, err)
	return c
}

// flakyStore fails writes on demand
type flakyStore struct {
	storage.Store
	failSet bool
	failGet bool
}

func (s *flakyStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s.failGet {
		return "", false, fmt.Errorf("connection refused")
	}
	return s.Store.Get(ctx, key)
}

func (s *flakyStore) Set(ctx context.Context, key, value string) error {
	if s.failSet {
		return fmt.Errorf("disk full")
	}
	return s.Store.Set(ctx, key, value)
}

// TestAddTwiceExample is the worked example: A at 20.00 added twice
func TestAddTwiceExample(t *testing.T) {
	ctx := context.Background()
	c := openCart(t, storage.NewMemoryStore())

	require.NoError(t, c.Add(ctx, Item{ID: "A", Name: "Widget", Price: dec("20.00")}))
	require.NoError(t, c.Add(ctx, Item{ID: "A", Name: "Widget", Price: dec("20.00")}))

	assert.Equal(t, 1, c.Len())
	item, ok := c.Get("A")
	require.True(t, ok)
	assert.Equal(t, 2, item.Quantity)

	totals := c.Totals()
	assert.Equal(t, "40.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "10.00", totals.Shipping.StringFixed(2))
	assert.Equal(t, "4.00", totals.Tax.StringFixed(2))
	assert.Equal(t, "54.00", totals.Total.StringFixed(2))
}

func TestTotalsIdentity(t *testing.T) {
	ctx := context.Background()
	c := openCart(t, storage.NewMemoryStore())

	empty := c.Totals()
	assert.True(t, empty.Subtotal.IsZero())
	assert.True(t, empty.Shipping.IsZero(), "no shipping on an empty cart")
	assert.True(t, empty.Total.IsZero())

	prices := []string{"599.99", "0.01", "33.33", "1599.99"}
	for i, p := range prices {
		require.NoError(t, c.Add(ctx, Item{ID: fmt.Sprint(i), Price: dec(p)}))

		totals := c.Totals()
		assert.True(t, totals.Total.Equal(totals.Subtotal.Add(totals.Shipping).Add(totals.Tax)))
		assert.False(t, totals.Shipping.IsZero())
	}
}

func TestFreeItemsChargeNoShipping(t *testing.T) {
	c := openCart(t, storage.NewMemoryStore())
	require.NoError(t, c.Add(context.Background(), Item{ID: "sticker", Price: decimal.Zero}))

	totals := c.Totals()
	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.Shipping.IsZero())
}

func TestCustomPricing(t *testing.T) {
	c := openCart(t, storage.NewMemoryStore(), WithPricing(Pricing{
		ShippingFlat: dec("4.99"),
		TaxRate:      dec("0.0825"),
	}))
	require.NoError(t, c.Add(context.Background(), Item{ID: "x", Price: dec("100")}))

	totals := c.Totals()
	assert.Equal(t, "4.99", totals.Shipping.StringFixed(2))
	assert.Equal(t, "8.25", totals.Tax.StringFixed(2))
	assert.Equal(t, "113.24", totals.Total.StringFixed(2))
}

// TestRemoveDrainsAfterQuantityCalls never goes below zero
func TestRemoveDrainsAfterQuantityCalls(t *testing.T) {
	ctx := context.Background()

	for _, qty := range []int{1, 2, 5} {
		t.Run(fmt.Sprint(qty), func(t *testing.T) {
			c := openCart(t, storage.NewMemoryStore())
			require.NoError(t, c.Add(ctx, Item{ID: "gpu", Price: dec("10")}))
			require.NoError(t, c.SetQuantity(ctx, "gpu", qty))

			for i := 1; i < qty; i++ {
				require.NoError(t, c.Remove(ctx, "gpu"))
				item, ok := c.Get("gpu")
				require.True(t, ok)
				assert.Equal(t, qty-i, item.Quantity)
			}
			require.NoError(t, c.Remove(ctx, "gpu"))
			_, ok := c.Get("gpu")
			assert.False(t, ok)

			require.NoError(t, c.Remove(ctx, "gpu"))
			assert.Equal(t, 0, c.Len())
		})
	}
}

func TestSetQuantityClamps(t *testing.T) {
	ctx := context.Background()
	c := openCart(t, storage.NewMemoryStore())
	require.NoError(t, c.Add(ctx, Item{ID: "ram", Price: dec("44.99")}))

	tests := []struct {
		n    int
		want int
	}{
		{3, 3},
		{0, 1},
		{-4, 1},
		{12, 12},
	}
	for _, tt := range tests {
		require.NoError(t, c.SetQuantity(ctx, "ram", tt.n))
		item, _ := c.Get("ram")
		assert.Equal(t, tt.want, item.Quantity, "set %d", tt.n)
	}

	require.NoError(t, c.SetQuantity(ctx, "absent", 5))
	assert.Equal(t, 1, c.Len())
}

func TestAddRejectsEmptyID(t *testing.T) {
	c := openCart(t, storage.NewMemoryStore())
	err := c.Add(context.Background(), Item{Price: dec("1")})
	assert.True(t, errors.IsType(err, errors.TypeInput))
}

func TestItemsAndCount(t *testing.T) {
	ctx := context.Background()
	c := openCart(t, storage.NewMemoryStore())
	for _, id := range []string{"7", "3", "mon1", "3"} {
		require.NoError(t, c.Add(ctx, Item{ID: id, Price: dec("1")}))
	}

	var ids []string
	for _, it := range c.Items() {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []string{"3", "7", "mon1"}, ids)
	assert.Equal(t, 4, c.Count())

	// copies do not alias cart state
	items := c.Items()
	items[0].Quantity = 99
	item, _ := c.Get("3")
	assert.Equal(t, 2, item.Quantity)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	c := openCart(t, store)
	require.NoError(t, c.Add(ctx, Item{ID: "a", Price: dec("1")}))
	require.NoError(t, c.Clear(ctx))

	assert.Equal(t, 0, c.Len())
	raw, found, err := store.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "[]", raw)
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()
	placed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := openCart(t, storage.NewMemoryStore(), WithClock(func() time.Time { return placed }))

	_, err := c.Checkout()
	require.Error(t, err)
	var appErr *errors.Error
	require.ErrorAs(t, err, &appErr)
	assert.True(t, appErr.UserVisible())
	assert.Equal(t, "Your cart is empty", appErr.Message)

	require.NoError(t, c.Add(ctx, Item{ID: "1", Name: "Intel Core i9-13900K", Price: dec("599.99")}))
	order, err := c.Checkout()
	require.NoError(t, err)

	_, err = uuid.Parse(order.ID)
	assert.NoError(t, err)
	assert.Equal(t, placed, order.PlacedAt)
	assert.Len(t, order.Items, 1)
	assert.Equal(t, "669.99", order.Totals.Total.StringFixed(2))
	assert.Equal(t, 1, c.Len(), "checkout leaves the cart in place")
}

// TestPersistenceRoundTrip reopens a cart from the same store
func TestPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	c := openCart(t, store)
	require.NoError(t, c.Add(ctx, Item{
		ID:       "3",
		Name:     "NVIDIA RTX 4090",
		Price:    dec("1599.99"),
		Metadata: Metadata{Image: "images/products/gpu.jpg", Specs: "24GB GDDR6X"},
	}))
	require.NoError(t, c.Add(ctx, Item{ID: "3"}))
	require.NoError(t, c.Add(ctx, Item{ID: "18", Name: "Crucial P3 1TB NVMe", Price: dec("59.99")}))

	reopened := openCart(t, store)
	assert.Equal(t, c.Items(), reopened.Items())
	assert.Equal(t, c.Totals(), reopened.Totals())
}

func TestOpenDiscardsMalformedState(t *testing.T) {
	ctx := context.Background()

	for _, raw := range []string{"{broken", `{"id":"a"}`, `"cart"`, `42`} {
		t.Run(raw, func(t *testing.T) {
			store := storage.NewMemoryStore()
			require.NoError(t, store.Set(ctx, StorageKey, raw))

			c := openCart(t, store)
			assert.Equal(t, 0, c.Len())
		})
	}
}

func TestOpenMigratesLegacyShape(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	legacy := `[
		{"id": 1, "name": "Intel Core i9-13900K", "price": 599.99, "image": "images/products/processor.jpg", "quantity": 2},
		{"id": "mon1", "name": "Gaming Monitor", "price": 199.99, "specs": "1920x1080", "quantity": 0},
		{"id": 1, "name": "Intel Core i9-13900K", "price": 599.99, "quantity": 1},
		{"name": "no id", "price": 1},
		"junk"
	]`
	require.NoError(t, store.Set(ctx, StorageKey, legacy))

	c := openCart(t, store)
	require.Equal(t, 2, c.Len())

	cpu, ok := c.Get("1")
	require.True(t, ok)
	assert.Equal(t, 3, cpu.Quantity, "duplicate ids merge")
	assert.Equal(t, "599.99", cpu.UnitPrice.String())
	assert.Equal(t, "images/products/processor.jpg", cpu.Metadata.Image)

	mon, ok := c.Get("mon1")
	require.True(t, ok)
	assert.Equal(t, 1, mon.Quantity, "quantity clamped")
	assert.Equal(t, "1920x1080", mon.Metadata.Specs)

	raw, _, err := store.Get(ctx, StorageKey)
	require.NoError(t, err)
	first := gjson.Get(raw, "0")
	assert.Equal(t, "1", first.Get("id").String())
	assert.Equal(t, gjson.String, first.Get("id").Type)
	assert.Equal(t, "599.99", first.Get("unitPrice").String())
	assert.False(t, first.Get("price").Exists(), "rewritten in canonical shape")
}

func TestDecodeCanonicalNeedsNoRewrite(t *testing.T) {
	raw, err := Encode([]LineItem{
		{ID: "a", Name: "A", UnitPrice: dec("1.50"), Quantity: 2, Metadata: Metadata{Image: "a.jpg"}},
	})
	require.NoError(t, err)

	res, err := Decode(raw)
	require.NoError(t, err)
	assert.False(t, res.NeedsRewrite())
	require.Len(t, res.Items, 1)
	assert.Equal(t, "a.jpg", res.Items[0].Metadata.Image)
	assert.True(t, res.Items[0].UnitPrice.Equal(dec("1.5")))
}

func TestStorageFailureKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Store: storage.NewMemoryStore()}
	c := openCart(t, store)

	store.failSet = true
	err := c.Add(ctx, Item{ID: "a", Price: dec("5")})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeStorage))

	item, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, item.Quantity)
}

func TestOpenReportsStorageReadFailure(t *testing.T) {
	store := &flakyStore{Store: storage.NewMemoryStore(), failGet: true}
	_, err := Open(context.Background(), store)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeStorage))
}
