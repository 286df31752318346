// internal/domain/cart/engine.go
package cart

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/your-org/pharmacy-backend/internal/domain/catalog"
)

// Engine is the authoritative in-memory cart for one owner. Insertion
// order of line items is preserved for display. Every mutation is
// total: it either applies and writes through to storage, or rejects
// with a Result carrying the stock ceiling, leaving the cart
// untouched. The invariant quantity <= stockLimit holds for every
// item the engine stores or returns.
type Engine struct {
	mu      sync.Mutex
	owner   string
	items   []LineItem
	policy  DeliveryPolicy
	storage Storage
	logger  *logrus.Logger
}

func newEngine(owner string, items []LineItem, policy DeliveryPolicy, storage Storage, logger *logrus.Logger) *Engine {
	return &Engine{
		owner:   owner,
		items:   items,
		policy:  policy,
		storage: storage,
		logger:  logger,
	}
}

// Add puts quantity units of a product into the cart, merging with an
// existing line for the same product. A request that would push the
// line past the product's current stock is rejected and the cart is
// left unchanged. On success the line's stock snapshot, price, name
// and image are refreshed from the product.
func (e *Engine) Add(product *catalog.Product, quantity int) Result {
	if quantity < 1 {
		quantity = 1
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.items {
		if e.items[i].ProductID != product.ID {
			continue
		}

		newQuantity := e.items[i].Quantity + quantity
		if newQuantity > product.Stock {
			return stockExceeded(product.Stock)
		}

		e.items[i].Quantity = newQuantity
		e.items[i].StockLimit = product.Stock
		e.items[i].Name = product.Name
		e.items[i].UnitPrice = product.Price
		e.items[i].ImageURL = product.ImageURL
		e.items[i].Unit = product.Unit
		e.items[i].RequiresPrescription = product.RequiresPrescription
		e.persistLocked()
		return accepted()
	}

	if quantity > product.Stock {
		return stockExceeded(product.Stock)
	}

	e.items = append(e.items, LineItem{
		ProductID:            product.ID,
		Name:                 product.Name,
		UnitPrice:            product.Price,
		ImageURL:             product.ImageURL,
		Unit:                 product.Unit,
		Quantity:             quantity,
		StockLimit:           product.Stock,
		RequiresPrescription: product.RequiresPrescription,
	})
	e.persistLocked()
	return accepted()
}

// UpdateQuantity replaces a line's quantity. A quantity of zero or
// less removes the line. A quantity above the line's stock snapshot
// is rejected and the line keeps its prior quantity. Updating an
// absent product is a no-op.
func (e *Engine) UpdateQuantity(productID uint, quantity int) Result {
	if quantity <= 0 {
		return e.Remove(productID)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.items {
		if e.items[i].ProductID != productID {
			continue
		}

		if quantity > e.items[i].StockLimit {
			return stockExceeded(e.items[i].StockLimit)
		}

		e.items[i].Quantity = quantity
		e.persistLocked()
		return accepted()
	}

	return accepted()
}

// Remove deletes a line from the cart. Removing an absent product is
// a no-op, not an error.
func (e *Engine) Remove(productID uint) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.items {
		if e.items[i].ProductID == productID {
			e.items = append(e.items[:i], e.items[i+1:]...)
			e.persistLocked()
			break
		}
	}

	return accepted()
}

// Clear empties the cart unconditionally
func (e *Engine) Clear() Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.items = nil
	e.persistLocked()
	return accepted()
}

// Items returns a copy of the current line items in insertion order
func (e *Engine) Items() []LineItem {
	e.mu.Lock()
	defer e.mu.Unlock()

	items := make([]LineItem, len(e.items))
	copy(items, e.items)
	return items
}

// Totals derives the current totals from the line items
func (e *Engine) Totals() Totals {
	return CalculateTotals(e.Items(), e.policy)
}

// Validate checks the current cart for checkout eligibility
func (e *Engine) Validate() Validation {
	return Validate(e.Items())
}

// HasPrescriptionItems reports whether any line requires a
// prescription upload at checkout
func (e *Engine) HasPrescriptionItems() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, item := range e.items {
		if item.RequiresPrescription {
			return true
		}
	}
	return false
}

// persistLocked writes the cart through to storage. Persistence is
// fire-and-forget from the mutation's perspective: a write failure is
// logged but never fails the mutation.
func (e *Engine) persistLocked() {
	items := make([]LineItem, len(e.items))
	copy(items, e.items)

	if err := e.storage.Save(context.Background(), e.owner, items); err != nil {
		e.logger.WithField("owner", e.owner).WithError(err).Error("Failed to persist cart")
	}
}
