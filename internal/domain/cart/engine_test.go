// internal/domain/cart/engine_test.go
package cart

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/pharmacy-backend/internal/domain/catalog"
)

// memoryStorage is an in-memory Storage for tests
type memoryStorage struct {
	mu    sync.Mutex
	carts map[string][]LineItem
	saves int
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{carts: make(map[string][]LineItem)}
}

func (m *memoryStorage) Load(_ context.Context, owner string) ([]LineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make([]LineItem, len(m.carts[owner]))
	copy(items, m.carts[owner])
	return items, nil
}

func (m *memoryStorage) Save(_ context.Context, owner string, items []LineItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[owner] = items
	m.saves++
	return nil
}

func (m *memoryStorage) Delete(_ context.Context, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, owner)
	return nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testPolicy() DeliveryPolicy {
	return DeliveryPolicy{FreeThreshold: 500, Fee: 50}
}

func testProduct(id uint, name string, price int64, stock int) *catalog.Product {
	return &catalog.Product{
		ID:       id,
		Name:     name,
		Price:    price,
		Stock:    stock,
		Unit:     "strip",
		IsActive: true,
	}
}

func newTestEngine(t *testing.T) (*Engine, *memoryStorage) {
	t.Helper()
	storage := newMemoryStorage()
	service := NewServiceWithStorage(storage, testPolicy(), testLogger())
	engine, err := service.Engine(context.Background(), "user:1")
	require.NoError(t, err)
	return engine, storage
}

func TestEngineAddNewItem(t *testing.T) {
	engine, _ := newTestEngine(t)

	result := engine.Add(testProduct(1, "Paracetamol 500mg", 25, 10), 2)
	assert.True(t, result.OK)

	items := engine.Items()
	require.Len(t, items, 1)
	assert.Equal(t, uint(1), items[0].ProductID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 10, items[0].StockLimit)
}

func TestEngineAddMergesExistingLine(t *testing.T) {
	engine, _ := newTestEngine(t)
	product := testProduct(1, "Paracetamol 500mg", 25, 10)

	engine.Add(product, 2)
	result := engine.Add(product, 3)
	assert.True(t, result.OK)

	items := engine.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestEngineAddRejectsOverStock(t *testing.T) {
	engine, _ := newTestEngine(t)
	product := testProduct(1, "Ibuprofen 400mg", 45, 5)

	result := engine.Add(product, 3)
	require.True(t, result.OK)

	// 3 + 3 would exceed the 5 in stock
	result = engine.Add(product, 3)
	assert.False(t, result.OK)
	assert.Equal(t, ReasonStockExceeded, result.Reason)
	assert.Equal(t, 5, result.Limit)
	assert.Equal(t, "Only 5 items available in stock", result.Message())

	// Rejection leaves the cart untouched
	items := engine.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestEngineAddRejectsNewLineOverStock(t *testing.T) {
	engine, _ := newTestEngine(t)

	result := engine.Add(testProduct(1, "Thermometer", 250, 2), 3)
	assert.False(t, result.OK)
	assert.Equal(t, 2, result.Limit)
	assert.Empty(t, engine.Items())
}

func TestEngineAddClampsQuantityToOne(t *testing.T) {
	engine, _ := newTestEngine(t)

	result := engine.Add(testProduct(1, "ORS Sachets", 60, 10), 0)
	assert.True(t, result.OK)

	items := engine.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestEngineAddRefreshesSnapshot(t *testing.T) {
	engine, _ := newTestEngine(t)

	engine.Add(testProduct(1, "Vitamin C", 180, 10), 1)

	// Price and stock changed since the first add
	updated := testProduct(1, "Vitamin C 1000mg", 200, 8)
	result := engine.Add(updated, 1)
	require.True(t, result.OK)

	items := engine.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Vitamin C 1000mg", items[0].Name)
	assert.Equal(t, int64(200), items[0].UnitPrice)
	assert.Equal(t, 8, items[0].StockLimit)
}

func TestEngineUpdateQuantity(t *testing.T) {
	engine, _ := newTestEngine(t)
	engine.Add(testProduct(1, "Paracetamol 500mg", 25, 10), 2)

	result := engine.UpdateQuantity(1, 7)
	assert.True(t, result.OK)
	assert.Equal(t, 7, engine.Items()[0].Quantity)
}

func TestEngineUpdateQuantityRejectsOverStock(t *testing.T) {
	engine, _ := newTestEngine(t)
	engine.Add(testProduct(1, "Paracetamol 500mg", 25, 10), 2)

	result := engine.UpdateQuantity(1, 11)
	assert.False(t, result.OK)
	assert.Equal(t, 10, result.Limit)
	assert.Equal(t, 2, engine.Items()[0].Quantity)
}

func TestEngineUpdateQuantityZeroRemovesLine(t *testing.T) {
	engine, _ := newTestEngine(t)
	engine.Add(testProduct(1, "Paracetamol 500mg", 25, 10), 2)

	result := engine.UpdateQuantity(1, 0)
	assert.True(t, result.OK)
	assert.Empty(t, engine.Items())
}

func TestEngineUpdateQuantityAbsentProductIsNoop(t *testing.T) {
	engine, _ := newTestEngine(t)

	result := engine.UpdateQuantity(99, 3)
	assert.True(t, result.OK)
	assert.Empty(t, engine.Items())
}

func TestEngineRemoveAbsentProductIsNoop(t *testing.T) {
	engine, _ := newTestEngine(t)
	engine.Add(testProduct(1, "Paracetamol 500mg", 25, 10), 2)

	result := engine.Remove(99)
	assert.True(t, result.OK)
	assert.Len(t, engine.Items(), 1)
}

func TestEngineClear(t *testing.T) {
	engine, _ := newTestEngine(t)
	engine.Add(testProduct(1, "Paracetamol 500mg", 25, 10), 2)
	engine.Add(testProduct(2, "Cetirizine 10mg", 35, 10), 1)

	engine.Clear()
	assert.Empty(t, engine.Items())
}

func TestEngineWritesThroughToStorage(t *testing.T) {
	engine, storage := newTestEngine(t)

	engine.Add(testProduct(1, "Paracetamol 500mg", 25, 10), 2)
	engine.UpdateQuantity(1, 4)
	engine.Remove(1)

	assert.Equal(t, 3, storage.saves)

	stored, err := storage.Load(context.Background(), "user:1")
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestEnginePreservesInsertionOrder(t *testing.T) {
	engine, _ := newTestEngine(t)

	engine.Add(testProduct(3, "C", 10, 10), 1)
	engine.Add(testProduct(1, "A", 10, 10), 1)
	engine.Add(testProduct(2, "B", 10, 10), 1)
	engine.Add(testProduct(1, "A", 10, 10), 1) // merge does not reorder

	items := engine.Items()
	require.Len(t, items, 3)
	assert.Equal(t, uint(3), items[0].ProductID)
	assert.Equal(t, uint(1), items[1].ProductID)
	assert.Equal(t, uint(2), items[2].ProductID)
}

func TestEngineHasPrescriptionItems(t *testing.T) {
	engine, _ := newTestEngine(t)

	engine.Add(testProduct(1, "Paracetamol 500mg", 25, 10), 1)
	assert.False(t, engine.HasPrescriptionItems())

	antibiotic := testProduct(2, "Amoxicillin 500mg", 95, 10)
	antibiotic.RequiresPrescription = true
	engine.Add(antibiotic, 1)
	assert.True(t, engine.HasPrescriptionItems())
}

func TestServiceRehydratesFromStorage(t *testing.T) {
	storage := newMemoryStorage()
	storage.carts["user:7"] = []LineItem{
		{ProductID: 1, Name: "Paracetamol 500mg", UnitPrice: 25, Quantity: 2, StockLimit: 10},
	}

	service := NewServiceWithStorage(storage, testPolicy(), testLogger())
	engine, err := service.Engine(context.Background(), "user:7")
	require.NoError(t, err)

	items := engine.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestServiceReturnsSameEngine(t *testing.T) {
	service := NewServiceWithStorage(newMemoryStorage(), testPolicy(), testLogger())

	first, err := service.Engine(context.Background(), "user:1")
	require.NoError(t, err)
	second, err := service.Engine(context.Background(), "user:1")
	require.NoError(t, err)
	assert.Same(t, first, second)

	other, err := service.Engine(context.Background(), "session:abc")
	require.NoError(t, err)
	assert.NotSame(t, first, other)
}
