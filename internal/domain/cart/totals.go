// internal/domain/cart/totals.go
package cart

// DeliveryPolicy is the delivery-fee rule applied to cart totals.
// Subtotals at or above FreeThreshold ship free; everything below
// pays the flat Fee.
type DeliveryPolicy struct {
	FreeThreshold int64
	Fee           int64
}

// CalculateTotals derives totals from a list of line items. It is a
// pure function with no caching; callers recompute on every read so
// totals can never diverge from the cart.
func CalculateTotals(items []LineItem, policy DeliveryPolicy) Totals {
	var totals Totals

	for _, item := range items {
		totals.Subtotal += item.LineTotal()
		totals.ItemCount += item.Quantity
	}

	if totals.Subtotal < policy.FreeThreshold {
		totals.DeliveryFee = policy.Fee
	}
	totals.Total = totals.Subtotal + totals.DeliveryFee

	return totals
}
