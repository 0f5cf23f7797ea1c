package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"storefront/adapters/storage"
)

type cartTestContext struct {
	store storage.Store
	cart  *Cart
	order *Order
	err   error
}

func (c *cartTestContext) reset() error {
	c.store = storage.NewMemoryStore()
	c.order = nil
	c.err = nil
	cart, err := Open(context.Background(), c.store)
	if err != nil {
		return err
	}
	c.cart = cart
	return nil
}

func (c *cartTestContext) anEmptyCart() error {
	if c.cart.Len() != 0 {
		return fmt.Errorf("expected empty cart, got %d lines", c.cart.Len())
	}
	return nil
}

func (c *cartTestContext) iAddProductNamedPriced(id, name, price string) error {
	p, err := decimal.NewFromString(price)
	if err != nil {
		return err
	}
	return c.cart.Add(context.Background(), Item{ID: id, Name: name, Price: p})
}

func (c *cartTestContext) productPricedIsInTheCartTimes(id, price string, times int) error {
	for range times {
		if err := c.iAddProductNamedPriced(id, "Product "+id, price); err != nil {
			return err
		}
	}
	return nil
}

func (c *cartTestContext) iRemoveProductTimes(id string, times int) error {
	for range times {
		if err := c.cart.Remove(context.Background(), id); err != nil {
			return err
		}
	}
	return nil
}

func (c *cartTestContext) iSetTheQuantityOfProductTo(id string, n int) error {
	return c.cart.SetQuantity(context.Background(), id, n)
}

func (c *cartTestContext) iCheckOut() error {
	c.order, c.err = c.cart.Checkout()
	return nil
}

func (c *cartTestContext) theCartIsReopened() error {
	cart, err := Open(context.Background(), c.store)
	if err != nil {
		return err
	}
	c.cart = cart
	return nil
}

func (c *cartTestContext) theCartHasLines(n int) error {
	if c.cart.Len() != n {
		return fmt.Errorf("expected %d lines, got %d", n, c.cart.Len())
	}
	return nil
}

func (c *cartTestContext) theCartIsEmpty() error {
	return c.theCartHasLines(0)
}

func (c *cartTestContext) productHasQuantity(id string, n int) error {
	item, ok := c.cart.Get(id)
	if !ok {
		return fmt.Errorf("product %q is not in the cart", id)
	}
	if item.Quantity != n {
		return fmt.Errorf("expected quantity %d, got %d", n, item.Quantity)
	}
	return nil
}

func amountIs(label string, got decimal.Decimal, want string) error {
	w, err := decimal.NewFromString(want)
	if err != nil {
		return err
	}
	if !got.Equal(w) {
		return fmt.Errorf("expected %s %s, got %s", label, w.StringFixed(2), got.StringFixed(2))
	}
	return nil
}

func (c *cartTestContext) theSubtotalIs(want string) error {
	return amountIs("subtotal", c.cart.Totals().Subtotal, want)
}

func (c *cartTestContext) theShippingIs(want string) error {
	return amountIs("shipping", c.cart.Totals().Shipping, want)
}

func (c *cartTestContext) theTaxIs(want string) error {
	return amountIs("tax", c.cart.Totals().Tax, want)
}

func (c *cartTestContext) theTotalIs(want string) error {
	return amountIs("total", c.cart.Totals().Total, want)
}

func (c *cartTestContext) checkoutFailsWith(message string) error {
	if c.err == nil {
		return errors.New("expected checkout to fail but it succeeded")
	}
	if !strings.Contains(c.err.Error(), message) {
		return fmt.Errorf("expected error message to contain %q, got %q", message, c.err.Error())
	}
	return nil
}

func (c *cartTestContext) anOrderTotallingIsIssued(want string) error {
	if c.err != nil {
		return fmt.Errorf("expected an order but got error: %v", c.err)
	}
	if c.order == nil || c.order.ID == "" {
		return errors.New("expected an order with an id")
	}
	return amountIs("order total", c.order.Totals.Total, want)
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &cartTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, tc.reset()
	})

	// Given steps
	ctx.Step(`^an empty cart$`, tc.anEmptyCart)
	ctx.Step(`^product "([^"]*)" priced (\d+\.\d+) is in the cart (\d+) times$`, tc.productPricedIsInTheCartTimes)

	// When steps
	ctx.Step(`^I add product "([^"]*)" named "([^"]*)" priced (\d+\.\d+)$`, tc.iAddProductNamedPriced)
	ctx.Step(`^I remove product "([^"]*)" (\d+) times$`, tc.iRemoveProductTimes)
	ctx.Step(`^I set the quantity of product "([^"]*)" to (-?\d+)$`, tc.iSetTheQuantityOfProductTo)
	ctx.Step(`^I check out$`, tc.iCheckOut)
	ctx.Step(`^the cart is reopened$`, tc.theCartIsReopened)

	// Then steps
	ctx.Step(`^the cart has (\d+) lines?$`, tc.theCartHasLines)
	ctx.Step(`^the cart is empty$`, tc.theCartIsEmpty)
	ctx.Step(`^product "([^"]*)" has quantity (\d+)$`, tc.productHasQuantity)
	ctx.Step(`^the subtotal is (\d+\.\d+)$`, tc.theSubtotalIs)
	ctx.Step(`^the shipping is (\d+\.\d+)$`, tc.theShippingIs)
	ctx.Step(`^the tax is (\d+\.\d+)$`, tc.theTaxIs)
	ctx.Step(`^the total is (\d+\.\d+)$`, tc.theTotalIs)
	ctx.Step(`^checkout fails with "([^"]*)"$`, tc.checkoutFailsWith)
	ctx.Step(`^an order totalling (\d+\.\d+) is issued$`, tc.anOrderTotallingIsIssued)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
