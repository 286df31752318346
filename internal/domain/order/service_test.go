// internal/domain/order/service_test.go
package order

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/pharmacy-backend/internal/config"
	"github.com/your-org/pharmacy-backend/internal/domain/catalog"
	"github.com/your-org/pharmacy-backend/internal/domain/checkout"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Shared-cache in-memory database, unique per test
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&catalog.Product{}, &Order{}, &OrderItem{}, &OrderStatusHistory{}))
	return db
}

func testService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := testDB(t)
	cfg := &config.Config{
		Cart: config.CartConfig{FreeDeliveryThreshold: 500, DeliveryFee: 50},
	}
	return NewService(db, cfg, testLogger()), db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price int64, stock int) *catalog.Product {
	t.Helper()
	product := &catalog.Product{
		Name:     name,
		Slug:     strings.ToLower(strings.ReplaceAll(name, " ", "-")),
		Price:    price,
		Stock:    stock,
		IsActive: true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func placeRequest(lines ...checkout.OrderLine) *checkout.PlaceOrderRequest {
	return &checkout.PlaceOrderRequest{
		Items: lines,
		DeliveryAddress: checkout.DeliveryAddress{
			Street: "12 Mall Road",
			City:   "Lahore",
			Area:   "Gulberg",
		},
		PaymentMethod: checkout.PaymentCashOnDelivery,
	}
}

func TestPlaceOrderDecrementsStock(t *testing.T) {
	service, db := testService(t)
	product := seedProduct(t, db, "Paracetamol 500mg", 25, 10)

	placed, err := service.PlaceOrder(context.Background(), 1, placeRequest(checkout.OrderLine{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		Quantity:  3,
	}))
	require.NoError(t, err)
	assert.NotZero(t, placed.OrderID)
	assert.Regexp(t, `^ORD-\d{8}-\d{5}$`, placed.OrderNumber)

	var reloaded catalog.Product
	require.NoError(t, db.First(&reloaded, product.ID).Error)
	assert.Equal(t, 7, reloaded.Stock)
}

func TestPlaceOrderComputesTotalsWithDeliveryFee(t *testing.T) {
	service, db := testService(t)
	product := seedProduct(t, db, "Cetirizine 10mg", 35, 20)

	placed, err := service.PlaceOrder(context.Background(), 1, placeRequest(checkout.OrderLine{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: 35,
		Quantity:  2,
	}))
	require.NoError(t, err)

	order, err := service.GetOrder(1, placed.OrderID)
	require.NoError(t, err)
	assert.Equal(t, int64(70), order.SubtotalAmount)
	assert.Equal(t, int64(50), order.DeliveryFee)
	assert.Equal(t, int64(120), order.TotalAmount)
	assert.Equal(t, OrderStatusPending, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(70), order.Items[0].TotalPrice)
}

func TestPlaceOrderFreeDeliveryAtThreshold(t *testing.T) {
	service, db := testService(t)
	product := seedProduct(t, db, "Vitamin C 1000mg", 250, 20)

	placed, err := service.PlaceOrder(context.Background(), 1, placeRequest(checkout.OrderLine{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: 250,
		Quantity:  2,
	}))
	require.NoError(t, err)

	order, err := service.GetOrder(1, placed.OrderID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), order.SubtotalAmount)
	assert.Equal(t, int64(0), order.DeliveryFee)
	assert.Equal(t, int64(500), order.TotalAmount)
}

func TestPlaceOrderInsufficientStockRollsBack(t *testing.T) {
	service, db := testService(t)
	covered := seedProduct(t, db, "Paracetamol 500mg", 25, 10)
	scarce := seedProduct(t, db, "Ibuprofen 400mg", 45, 1)

	_, err := service.PlaceOrder(context.Background(), 1, placeRequest(
		checkout.OrderLine{ProductID: covered.ID, Name: covered.Name, UnitPrice: 25, Quantity: 2},
		checkout.OrderLine{ProductID: scarce.ID, Name: scarce.Name, UnitPrice: 45, Quantity: 3},
	))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient stock for Ibuprofen 400mg")

	// The whole transaction rolled back, including the covered line
	var reloaded catalog.Product
	require.NoError(t, db.First(&reloaded, covered.ID).Error)
	assert.Equal(t, 10, reloaded.Stock)

	var count int64
	require.NoError(t, db.Model(&Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPlaceOrderRejectsEmptyRequest(t *testing.T) {
	service, _ := testService(t)

	_, err := service.PlaceOrder(context.Background(), 1, placeRequest())
	assert.Error(t, err)
}

func TestGetOrderScopedToUser(t *testing.T) {
	service, db := testService(t)
	product := seedProduct(t, db, "ORS Sachets", 60, 50)

	placed, err := service.PlaceOrder(context.Background(), 1, placeRequest(checkout.OrderLine{
		ProductID: product.ID, Name: product.Name, UnitPrice: 60, Quantity: 1,
	}))
	require.NoError(t, err)

	_, err = service.GetOrder(2, placed.OrderID)
	assert.Error(t, err)
}

func TestGetOrdersPagination(t *testing.T) {
	service, db := testService(t)
	product := seedProduct(t, db, "Hand Sanitizer", 150, 100)

	for i := 0; i < 5; i++ {
		_, err := service.PlaceOrder(context.Background(), 1, placeRequest(checkout.OrderLine{
			ProductID: product.ID, Name: product.Name, UnitPrice: 150, Quantity: 1,
		}))
		require.NoError(t, err)
	}

	response, err := service.GetOrders(1, &OrderListRequest{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, response.Orders, 2)
	assert.Equal(t, int64(5), response.Pagination.Total)
	assert.Equal(t, 3, response.Pagination.TotalPages)
}

func TestCancelOrderRestoresStock(t *testing.T) {
	service, db := testService(t)
	product := seedProduct(t, db, "Cough Syrup 100ml", 75, 10)

	placed, err := service.PlaceOrder(context.Background(), 1, placeRequest(checkout.OrderLine{
		ProductID: product.ID, Name: product.Name, UnitPrice: 75, Quantity: 4,
	}))
	require.NoError(t, err)

	require.NoError(t, service.CancelOrder(1, placed.OrderID))

	var reloaded catalog.Product
	require.NoError(t, db.First(&reloaded, product.ID).Error)
	assert.Equal(t, 10, reloaded.Stock)

	order, err := service.GetOrder(1, placed.OrderID)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusCancelled, order.Status)
}

func TestCancelOrderRefusedAfterDelivery(t *testing.T) {
	service, db := testService(t)
	product := seedProduct(t, db, "Adhesive Bandages", 85, 10)

	placed, err := service.PlaceOrder(context.Background(), 1, placeRequest(checkout.OrderLine{
		ProductID: product.ID, Name: product.Name, UnitPrice: 85, Quantity: 1,
	}))
	require.NoError(t, err)

	_, err = service.AdminUpdateStatus(placed.OrderID, &UpdateStatusRequest{
		Status:  OrderStatusDelivered,
		Comment: "Left at reception",
	}, 99)
	require.NoError(t, err)

	err = service.CancelOrder(1, placed.OrderID)
	assert.Error(t, err)
}

func TestAdminUpdateStatus(t *testing.T) {
	service, db := testService(t)
	product := seedProduct(t, db, "Digital Thermometer", 250, 5)

	placed, err := service.PlaceOrder(context.Background(), 1, placeRequest(checkout.OrderLine{
		ProductID: product.ID, Name: product.Name, UnitPrice: 250, Quantity: 1,
	}))
	require.NoError(t, err)

	_, err = service.AdminUpdateStatus(placed.OrderID, &UpdateStatusRequest{Status: "teleported"}, 99)
	assert.Error(t, err)

	updated, err := service.AdminUpdateStatus(placed.OrderID, &UpdateStatusRequest{
		Status: OrderStatusDelivered,
	}, 99)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusDelivered, updated.Status)

	order, err := service.GetOrder(1, placed.OrderID)
	require.NoError(t, err)
	assert.NotNil(t, order.DeliveredAt)
	require.Len(t, order.StatusHistory, 2)
	assert.Equal(t, OrderStatusPending, order.StatusHistory[0].Status)
	assert.Equal(t, OrderStatusDelivered, order.StatusHistory[1].Status)
}

func TestAdminGetOrdersStatusFilter(t *testing.T) {
	service, db := testService(t)
	product := seedProduct(t, db, "ORS Sachets", 60, 50)

	first, err := service.PlaceOrder(context.Background(), 1, placeRequest(checkout.OrderLine{
		ProductID: product.ID, Name: product.Name, UnitPrice: 60, Quantity: 1,
	}))
	require.NoError(t, err)
	_, err = service.PlaceOrder(context.Background(), 2, placeRequest(checkout.OrderLine{
		ProductID: product.ID, Name: product.Name, UnitPrice: 60, Quantity: 1,
	}))
	require.NoError(t, err)

	require.NoError(t, service.CancelOrder(1, first.OrderID))

	response, err := service.AdminGetOrders(&OrderListRequest{Status: OrderStatusCancelled})
	require.NoError(t, err)
	require.Len(t, response.Orders, 1)
	assert.Equal(t, first.OrderID, response.Orders[0].ID)
}
