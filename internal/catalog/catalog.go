// Package catalog filters and orders product listings.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/safar/go-storefront/internal/models"
	"github.com/shopspring/decimal"
)

const (
	SortRelevance = "relevance"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortRating    = "rating"
	SortNewest    = "newest"
)

var ErrUnknownSort = errors.New("unknown sort order")

// Filter is a conjunction; zero-valued fields do not constrain the result.
type Filter struct {
	Search       string
	Category     string
	Brand        string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	MinRating    float64
	InStock      bool
	FreeShipping bool
	Sort         string
}

func (f Filter) matches(p models.Product) bool {
	if f.Search != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(f.Search)) {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Brand != "" && p.Brand != f.Brand {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.MinRating > 0 && p.Rating < f.MinRating {
		return false
	}
	if f.InStock && !p.InStock {
		return false
	}
	if f.FreeShipping && !p.FreeShipping {
		return false
	}
	return true
}

// Apply returns the products matching f in the requested order. The input
// slice is left untouched.
func Apply(products []models.Product, f Filter) ([]models.Product, error) {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if f.matches(p) {
			out = append(out, p)
		}
	}

	switch f.Sort {
	case "", SortRelevance:
	case SortPriceLow:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) })
	case SortPriceHigh:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.GreaterThan(out[j].Price) })
	case SortRating:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	case SortNewest:
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSort, f.Sort)
	}

	return out, nil
}
