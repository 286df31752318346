// internal/domain/cart/entity.go
package cart

import "fmt"

// LineItem represents one product's presence in a cart. StockLimit is
// a snapshot of the product's remaining stock taken at the time of the
// last add or update; Quantity never exceeds it.
type LineItem struct {
	ProductID            uint   `json:"product_id"`
	Name                 string `json:"name"`
	UnitPrice            int64  `json:"unit_price"` // Whole rupees
	ImageURL             string `json:"image_url"`
	Unit                 string `json:"unit"`
	Quantity             int    `json:"quantity"`
	StockLimit           int    `json:"stock_limit"`
	RequiresPrescription bool   `json:"requires_prescription"`
}

// LineTotal returns the line's contribution to the subtotal
func (li *LineItem) LineTotal() int64 {
	return li.UnitPrice * int64(li.Quantity)
}

// Rejection reasons for cart mutations
const (
	ReasonStockExceeded = "stock_exceeded"
)

// Result is the outcome of a cart mutation. Mutations never fail with
// an error; a rejected mutation leaves the cart unchanged and reports
// the stock ceiling the caller ran into.
type Result struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// Message returns a human-readable description of a rejection
func (r Result) Message() string {
	if r.OK {
		return ""
	}
	return fmt.Sprintf("Only %d items available in stock", r.Limit)
}

func accepted() Result {
	return Result{OK: true}
}

func stockExceeded(limit int) Result {
	return Result{OK: false, Reason: ReasonStockExceeded, Limit: limit}
}

// Totals represents derived cart totals. They are recomputed from the
// line items on every read and never stored.
type Totals struct {
	Subtotal    int64 `json:"subtotal"`
	DeliveryFee int64 `json:"delivery_fee"`
	Total       int64 `json:"total"`
	ItemCount   int   `json:"item_count"` // Sum of quantities, not distinct products
}

// Validation is the result of checking a cart before checkout
type Validation struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}
