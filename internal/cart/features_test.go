package cart

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/cucumber/godog"
	"github.com/safar/go-storefront/internal/models"
	"github.com/shopspring/decimal"
)

type totalsTestContext struct {
	cfg    models.PricingConfig
	items  []models.LineItem
	totals models.CartTotals
	err    error
}

func (c *totalsTestContext) reset() {
	c.cfg = models.DefaultPricingConfig()
	c.items = nil
	c.totals = models.CartTotals{}
	c.err = nil
}

func (c *totalsTestContext) theDefaultPricingConfiguration() error {
	c.cfg = models.DefaultPricingConfig()
	return nil
}

func (c *totalsTestContext) aCartWithItems(table *godog.Table) error {
	for i, row := range table.Rows {
		if i == 0 {
			continue // header
		}
		price, err := decimal.NewFromString(row.Cells[1].Value)
		if err != nil {
			return fmt.Errorf("row %d price: %w", i, err)
		}
		qty, err := strconv.Atoi(row.Cells[2].Value)
		if err != nil {
			return fmt.Errorf("row %d quantity: %w", i, err)
		}
		c.items = append(c.items, models.LineItem{ID: row.Cells[0].Value, Price: price, Quantity: qty})
	}
	return nil
}

func (c *totalsTestContext) anEmptyCart() error {
	c.items = nil
	return nil
}

func (c *totalsTestContext) theTotalsAreComputed() error {
	c.totals, c.err = ComputeTotals(c.items, c.cfg)
	return nil
}

func (c *totalsTestContext) theQuantityOfIsChangedTo(id string, qty int) error {
	c.items, c.err = ApplyQuantityChange(c.items, id, qty, models.DefaultMaxQuantity)
	return c.err
}

func (c *totalsTestContext) theCartContainsItems(n int) error {
	if len(c.items) != n {
		return fmt.Errorf("expected %d items, got %d", n, len(c.items))
	}
	return nil
}

func expectAmount(name string, got decimal.Decimal, want string) error {
	w, err := decimal.NewFromString(want)
	if err != nil {
		return err
	}
	if !got.Equal(w) {
		return fmt.Errorf("expected %s %s, got %s", name, want, got)
	}
	return nil
}

func (c *totalsTestContext) field(name string) func(string) error {
	return func(want string) error {
		if c.err != nil {
			return fmt.Errorf("unexpected error: %w", c.err)
		}
		var got decimal.Decimal
		switch name {
		case "subtotal":
			got = c.totals.Subtotal
		case "shipping":
			got = c.totals.Shipping
		case "tax":
			got = c.totals.Tax
		case "total":
			got = c.totals.Total
		}
		return expectAmount(name, got, want)
	}
}

func (c *totalsTestContext) theComputationFailsForItem(index int) error {
	var lineErr *InvalidLineItemError
	if !errors.As(c.err, &lineErr) {
		return fmt.Errorf("expected InvalidLineItemError, got %v", c.err)
	}
	if lineErr.Index != index {
		return fmt.Errorf("expected failing index %d, got %d", index, lineErr.Index)
	}
	return nil
}

func initializeTotalsScenario(ctx *godog.ScenarioContext) {
	tc := &totalsTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^the default pricing configuration$`, tc.theDefaultPricingConfiguration)
	ctx.Step(`^a cart with items:$`, tc.aCartWithItems)
	ctx.Step(`^an empty cart$`, tc.anEmptyCart)
	ctx.Step(`^the totals are computed$`, tc.theTotalsAreComputed)
	ctx.Step(`^the quantity of "([^"]*)" is changed to (-?\d+)$`, tc.theQuantityOfIsChangedTo)
	ctx.Step(`^the cart contains (\d+) items?$`, tc.theCartContainsItems)
	ctx.Step(`^the subtotal is "([^"]*)"$`, tc.field("subtotal"))
	ctx.Step(`^the shipping is "([^"]*)"$`, tc.field("shipping"))
	ctx.Step(`^the tax is "([^"]*)"$`, tc.field("tax"))
	ctx.Step(`^the total is "([^"]*)"$`, tc.field("total"))
	ctx.Step(`^the computation fails for item (\d+)$`, tc.theComputationFailsForItem)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: initializeTotalsScenario,
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
