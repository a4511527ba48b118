// Package store holds the typed repositories of the storefront. Every record
// lives under a well-known key of a storage.KV as a JSON document.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/safar/go-storefront/internal/storage"
)

const (
	KeyAdminAuth       = "adminAuth"
	KeyAdminAuthExpiry = "adminAuthExpiry"
	KeyAdminOrders     = "adminOrders"
	KeyCatalogProducts = "catalogProducts"

	cartKeyPrefix   = "shoppingCart:"
	searchKeyPrefix = "recentSearches:"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrInvalidProduct     = errors.New("invalid product")
	ErrInvalidOrderStatus = errors.New("invalid order status")
	ErrCorruptCart        = errors.New("corrupt cart")
)

func CartKey(cartID string) string {
	return cartKeyPrefix + cartID
}

func SearchKey(cartID string) string {
	return searchKeyPrefix + cartID
}

// readJSON decodes key into dst and reports whether the key existed.
func readJSON(ctx context.Context, kv storage.KV, key string, dst interface{}) (bool, error) {
	data, err := kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func writeJSON(ctx context.Context, kv storage.KV, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return kv.Set(ctx, key, data)
}

// updateList runs fn over the JSON array stored at key. Returning an empty
// slice removes the key.
func updateList[T any](ctx context.Context, kv storage.KV, key string, fn func([]T) ([]T, error)) ([]T, error) {
	var result []T
	err := kv.Update(ctx, key, func(current []byte, found bool) ([]byte, error) {
		var list []T
		if found {
			if err := json.Unmarshal(current, &list); err != nil {
				return nil, fmt.Errorf("decode %s: %w", key, err)
			}
		}

		next, err := fn(list)
		if err != nil {
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
	return result, nil
}
