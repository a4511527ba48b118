package cart

import (
	"github.com/safar/go-storefront/internal/models"
)

// ApplyQuantityChange sets the quantity of itemID. A quantity below one
// removes the item; a quantity above maxQuantity is rejected rather than
// clamped.
func ApplyQuantityChange(items []models.LineItem, itemID string, newQuantity, maxQuantity int) ([]models.LineItem, error) {
	idx := indexOf(items, itemID)
	if idx < 0 {
		return nil, ErrItemNotFound
	}

	if newQuantity < 1 {
		return RemoveItems(items, itemID), nil
	}

	if newQuantity > maxQuantity {
		return nil, &QuantityOutOfRangeError{ID: itemID, Quantity: newQuantity, Max: maxQuantity}
	}

	out := clone(items)
	out[idx].Quantity = newQuantity
	return out, nil
}

// AddItem merges item into items. An existing line has its quantity
// increased; a new line is appended with quantity one when none is given.
func AddItem(items []models.LineItem, item models.LineItem, maxQuantity int) ([]models.LineItem, error) {
	if item.ID == "" {
		return nil, &InvalidLineItemError{Index: len(items), Reason: "missing id"}
	}
	if item.Quantity == 0 {
		item.Quantity = 1
	}
	if err := checkAmounts(len(items), item); err != nil {
		return nil, err
	}

	if idx := indexOf(items, item.ID); idx >= 0 {
		merged := items[idx].Quantity + item.Quantity
		if merged > maxQuantity {
			return nil, &QuantityOutOfRangeError{ID: item.ID, Quantity: merged, Max: maxQuantity}
		}
		out := clone(items)
		out[idx].Quantity = merged
		return out, nil
	}

	if item.Quantity > maxQuantity {
		return nil, &QuantityOutOfRangeError{ID: item.ID, Quantity: item.Quantity, Max: maxQuantity}
	}
	return append(clone(items), item), nil
}

// RemoveItems drops every line whose id is in ids. Unknown ids are ignored.
func RemoveItems(items []models.LineItem, ids ...string) []models.LineItem {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	out := make([]models.LineItem, 0, len(items))
	for _, item := range items {
		if _, ok := drop[item.ID]; !ok {
			out = append(out, item)
		}
	}
	return out
}

func indexOf(items []models.LineItem, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func clone(items []models.LineItem) []models.LineItem {
	out := make([]models.LineItem, len(items))
	copy(out, items)
	return out
}
