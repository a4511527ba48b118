package cart

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidLineItem      = errors.New("invalid line item")
	ErrQuantityOutOfRange   = errors.New("quantity out of range")
	ErrItemNotFound         = errors.New("item not in cart")
	ErrInvalidPricingConfig = errors.New("invalid pricing config")
)

// InvalidLineItemError identifies the offending item by its position in the
// input slice.
type InvalidLineItemError struct {
	Index  int
	ID     string
	Reason string
}

func (e *InvalidLineItemError) Error() string {
	return fmt.Sprintf("invalid line item %d (%s): %s", e.Index, e.ID, e.Reason)
}

func (e *InvalidLineItemError) Is(target error) bool {
	return target == ErrInvalidLineItem
}

type QuantityOutOfRangeError struct {
	ID       string
	Quantity int
	Max      int
}

func (e *QuantityOutOfRangeError) Error() string {
	return fmt.Sprintf("quantity %d for item %s exceeds maximum %d", e.Quantity, e.ID, e.Max)
}

func (e *QuantityOutOfRangeError) Is(target error) bool {
	return target == ErrQuantityOutOfRange
}
