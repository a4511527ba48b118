// Package cart aggregates line items into display totals and applies cart
// edits. Every function is pure: inputs are never mutated and no state is
// kept between calls.
package cart

import (
	"fmt"

	"github.com/safar/go-storefront/internal/models"
	"github.com/shopspring/decimal"
)

func ValidateConfig(cfg models.PricingConfig) error {
	if cfg.TaxRate.IsNegative() || cfg.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: tax rate %s outside [0,1]", ErrInvalidPricingConfig, cfg.TaxRate)
	}
	if cfg.FreeShippingThreshold.IsNegative() {
		return fmt.Errorf("%w: negative free shipping threshold", ErrInvalidPricingConfig)
	}
	if cfg.FlatShippingFee.IsNegative() {
		return fmt.Errorf("%w: negative flat shipping fee", ErrInvalidPricingConfig)
	}
	return nil
}

// ComputeTotals sums items under cfg. Values are unrounded; callers round
// with CartTotals.Rounded at presentation time. An empty cart yields all-zero
// totals with no shipping charged.
func ComputeTotals(items []models.LineItem, cfg models.PricingConfig) (models.CartTotals, error) {
	if err := ValidateConfig(cfg); err != nil {
		return models.CartTotals{}, err
	}

	totals := models.CartTotals{
		Subtotal:              decimal.Zero,
		Savings:               decimal.Zero,
		Shipping:              decimal.Zero,
		Tax:                   decimal.Zero,
		Total:                 decimal.Zero,
		FreeShippingRemaining: decimal.Zero,
	}

	for i, item := range items {
		if err := checkAmounts(i, item); err != nil {
			return models.CartTotals{}, err
		}

		qty := decimal.NewFromInt(int64(item.Quantity))
		totals.Subtotal = totals.Subtotal.Add(item.Price.Mul(qty))
		totals.ItemCount += item.Quantity

		if item.OriginalPrice != nil && item.OriginalPrice.GreaterThan(item.Price) {
			totals.Savings = totals.Savings.Add(item.OriginalPrice.Sub(item.Price).Mul(qty))
		}
	}

	if len(items) == 0 {
		return totals, nil
	}

	if totals.Subtotal.LessThan(cfg.FreeShippingThreshold) {
		totals.Shipping = cfg.FlatShippingFee
		totals.FreeShippingRemaining = cfg.FreeShippingThreshold.Sub(totals.Subtotal)
	}

	totals.Tax = totals.Subtotal.Mul(cfg.TaxRate)
	totals.Total = totals.Subtotal.Add(totals.Shipping).Add(totals.Tax)

	return totals, nil
}

func checkAmounts(index int, item models.LineItem) error {
	switch {
	case item.Price.IsNegative():
		return &InvalidLineItemError{Index: index, ID: item.ID, Reason: "negative price"}
	case item.Quantity < 0:
		return &InvalidLineItemError{Index: index, ID: item.ID, Reason: "negative quantity"}
	case item.OriginalPrice != nil && item.OriginalPrice.IsNegative():
		return &InvalidLineItemError{Index: index, ID: item.ID, Reason: "negative original price"}
	}
	return nil
}

// ValidateItems checks the full line item invariant: unique non-empty ids,
// non-negative prices and quantities within [1, maxQuantity].
func ValidateItems(items []models.LineItem, maxQuantity int) error {
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		if item.ID == "" {
			return &InvalidLineItemError{Index: i, Reason: "missing id"}
		}
		if _, dup := seen[item.ID]; dup {
			return &InvalidLineItemError{Index: i, ID: item.ID, Reason: "duplicate id"}
		}
		seen[item.ID] = struct{}{}

		if err := checkAmounts(i, item); err != nil {
			return err
		}
		if item.Quantity < 1 {
			return &InvalidLineItemError{Index: i, ID: item.ID, Reason: "quantity below one"}
		}
		if item.Quantity > maxQuantity {
			return &QuantityOutOfRangeError{ID: item.ID, Quantity: item.Quantity, Max: maxQuantity}
		}
	}
	return nil
}
