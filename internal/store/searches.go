package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/safar/go-storefront/internal/storage"
)

const MaxRecentSearches = 5

// PushRecentSearch moves query to the front of the recent searches list.
// Blank queries are ignored.
func PushRecentSearch(ctx context.Context, kv storage.KV, cartID, query string) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return ListRecentSearches(ctx, kv, cartID)
	}

	searches, err := updateList(ctx, kv, SearchKey(cartID), func(current []string) ([]string, error) {
		next := make([]string, 0, MaxRecentSearches)
		next = append(next, query)
		for _, s := range current {
			if len(next) == MaxRecentSearches {
				break
			}
			if s != query {
				next = append(next, s)
			}
		}
		return next, nil
	})
	if err != nil {
		return nil, fmt.Errorf("push recent search: %w", err)
	}
	return searches, nil
}

func ListRecentSearches(ctx context.Context, kv storage.KV, cartID string) ([]string, error) {
	searches := []string{}
	if _, err := readJSON(ctx, kv, SearchKey(cartID), &searches); err != nil {
		return nil, fmt.Errorf("list recent searches: %w", err)
	}
	if len(searches) > MaxRecentSearches {
		searches = searches[:MaxRecentSearches]
	}
	return searches, nil
}

func ClearRecentSearches(ctx context.Context, kv storage.KV, cartID string) error {
	if err := kv.Delete(ctx, SearchKey(cartID)); err != nil {
		return fmt.Errorf("clear recent searches: %w", err)
	}
	return nil
}
