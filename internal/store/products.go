package store

import (
	"context"
	"fmt"

	"github.com/safar/go-storefront/internal/catalog"
	"github.com/safar/go-storefront/internal/models"
	"github.com/safar/go-storefront/internal/storage"
)

// ReplaceProducts swaps the whole catalog for products.
func ReplaceProducts(ctx context.Context, kv storage.KV, products []models.Product) error {
	seen := make(map[string]struct{}, len(products))
	for i, p := range products {
		if p.ID == "" {
			return fmt.Errorf("%w: product %d: missing id", ErrInvalidProduct, i)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: product %s: duplicate id", ErrInvalidProduct, p.ID)
		}
		seen[p.ID] = struct{}{}
		if p.Price.IsNegative() {
			return fmt.Errorf("%w: product %s: negative price", ErrInvalidProduct, p.ID)
		}
	}

	if products == nil {
		products = []models.Product{}
	}
	if err := writeJSON(ctx, kv, KeyCatalogProducts, products); err != nil {
		return fmt.Errorf("replace products: %w", err)
	}
	return nil
}

func loadProducts(ctx context.Context, kv storage.KV) ([]models.Product, error) {
	var products []models.Product
	if _, err := readJSON(ctx, kv, KeyCatalogProducts, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func GetProduct(ctx context.Context, kv storage.KV, id string) (*models.Product, error) {
	products, err := loadProducts(ctx, kv)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}
	return nil, ErrProductNotFound
}

func ListProducts(ctx context.Context, kv storage.KV, filter catalog.Filter, page, pageSize int) (*OffsetPage, error) {
	all, err := loadProducts(ctx, kv)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	matched, err := catalog.Apply(all, filter)
	if err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	total := int64(len(matched))
	offset := (page - 1) * pageSize
	products := []models.Product{}
	if offset < len(matched) {
		end := offset + pageSize
		if end > len(matched) {
			end = len(matched)
		}
		products = matched[offset:end]
	}

	return &OffsetPage{
		Items:      products,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}
