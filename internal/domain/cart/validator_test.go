// internal/domain/cart/validator_test.go
package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmptyCart(t *testing.T) {
	validation := Validate(nil)

	assert.False(t, validation.Valid)
	require.Len(t, validation.Errors, 1)
	assert.Equal(t, "Cart is empty", validation.Errors[0])
}

func TestValidateHappyPath(t *testing.T) {
	items := []LineItem{
		{ProductID: 1, Name: "Paracetamol 500mg", Quantity: 2, StockLimit: 10},
		{ProductID: 2, Name: "Cetirizine 10mg", Quantity: 1, StockLimit: 5},
	}

	validation := Validate(items)
	assert.True(t, validation.Valid)
	assert.Empty(t, validation.Errors)
}

func TestValidateReportsEveryOverStockLine(t *testing.T) {
	items := []LineItem{
		{ProductID: 1, Name: "Paracetamol 500mg", Quantity: 12, StockLimit: 10},
		{ProductID: 2, Name: "Cetirizine 10mg", Quantity: 1, StockLimit: 5},
		{ProductID: 3, Name: "Ibuprofen 400mg", Quantity: 4, StockLimit: 3},
	}

	validation := Validate(items)
	assert.False(t, validation.Valid)
	require.Len(t, validation.Errors, 2)
	assert.Equal(t, "Paracetamol 500mg: Only 10 items available", validation.Errors[0])
	assert.Equal(t, "Ibuprofen 400mg: Only 3 items available", validation.Errors[1])
}

func TestValidateQuantityAtStockLimitIsValid(t *testing.T) {
	items := []LineItem{
		{ProductID: 1, Name: "Paracetamol 500mg", Quantity: 10, StockLimit: 10},
	}

	validation := Validate(items)
	assert.True(t, validation.Valid)
}
