package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/safar/go-storefront/internal/cart"
	"github.com/safar/go-storefront/internal/models"
	"github.com/safar/go-storefront/internal/storage"
)

// LoadCart returns the stored cart, empty when none exists. A cart that
// fails validation is reported as ErrCorruptCart.
func LoadCart(ctx context.Context, kv storage.KV, cartID string, maxQuantity int) ([]models.LineItem, error) {
	var items []models.LineItem
	if _, err := readJSON(ctx, kv, CartKey(cartID), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptCart, err)
	}

	if err := cart.ValidateItems(items, maxQuantity); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptCart, err)
	}

	if items == nil {
		items = []models.LineItem{}
	}
	return items, nil
}

// UpdateCart applies fn to the stored cart atomically and persists the
// result. A stored cart that fails to decode or validate is left as is and
// reported as ErrCorruptCart; callers decide whether to discard it.
func UpdateCart(ctx context.Context, kv storage.KV, cartID string, maxQuantity int, fn func([]models.LineItem) ([]models.LineItem, error)) ([]models.LineItem, error) {
	key := CartKey(cartID)

	var result []models.LineItem
	err := kv.Update(ctx, key, func(current []byte, found bool) ([]byte, error) {
		var items []models.LineItem
		if found {
			if err := json.Unmarshal(current, &items); err != nil {
				return nil, fmt.Errorf("%w: decode %s: %v", ErrCorruptCart, key, err)
			}
			if err := cart.ValidateItems(items, maxQuantity); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrCorruptCart, err)
			}
		}

		next, err := fn(items)
		if err != nil {
			return nil, err
		}
		if err := cart.ValidateItems(next, maxQuantity); err != nil {
			return nil, err
		}
		result = next

		if len(next) == 0 {
			return nil, nil
		}
		data, err := json.Marshal(next)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}

	if result == nil {
		result = []models.LineItem{}
	}
	return result, nil
}

func ClearCart(ctx context.Context, kv storage.KV, cartID string) error {
	if err := kv.Delete(ctx, CartKey(cartID)); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
