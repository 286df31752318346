// internal/domain/cart/validator.go
package cart

import "fmt"

// Validate checks a cart's line items before checkout. An empty cart
// fails, as does any item whose quantity exceeds its stock snapshot.
// It is consulted both at checkout entry and again before submission,
// since stock snapshots may go stale between add-time and
// checkout-time.
func Validate(items []LineItem) Validation {
	errors := []string{}

	if len(items) == 0 {
		errors = append(errors, "Cart is empty")
	}

	for _, item := range items {
		if item.Quantity > item.StockLimit {
			errors = append(errors, fmt.Sprintf("%s: Only %d items available", item.Name, item.StockLimit))
		}
	}

	return Validation{
		Valid:  len(errors) == 0,
		Errors: errors,
	}
}
