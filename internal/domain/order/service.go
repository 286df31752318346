// internal/domain/order/service.go
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/pharmacy-backend/internal/config"
	"github.com/your-org/pharmacy-backend/internal/domain/cart"
	"github.com/your-org/pharmacy-backend/internal/domain/catalog"
	"github.com/your-org/pharmacy-backend/internal/domain/checkout"
	"gorm.io/gorm"
)

// Service handles order business logic. It implements
// checkout.OrderPlacer.
type Service struct {
	db     *gorm.DB
	policy cart.DeliveryPolicy
	logger *logrus.Logger
}

// NewService creates a new order service
func NewService(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		db: db,
		policy: cart.DeliveryPolicy{
			FreeThreshold: cfg.Cart.FreeDeliveryThreshold,
			Fee:           cfg.Cart.DeliveryFee,
		},
		logger: logger,
	}
}

// OrderListRequest represents order list query parameters
type OrderListRequest struct {
	Page   int         `form:"page,default=1"`
	Limit  int         `form:"limit,default=20"`
	Status OrderStatus `form:"status"`
}

// OrderListResponse represents orders with pagination
type OrderListResponse struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// UpdateStatusRequest represents an admin status change
type UpdateStatusRequest struct {
	Status  OrderStatus `json:"status" binding:"required"`
	Comment string      `json:"comment"`
}

// PlaceOrder creates an order from an assembled checkout request. The
// stock of every product is decremented in the same transaction; any
// line that cannot be covered aborts the whole order.
func (s *Service) PlaceOrder(ctx context.Context, userID uint, req *checkout.PlaceOrderRequest) (*checkout.PlacedOrder, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("order has no items")
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var subtotal int64
	for _, line := range req.Items {
		result := tx.Model(&catalog.Product{}).
			Where("id = ? AND is_active = ? AND stock >= ?", line.ProductID, true, line.Quantity).
			UpdateColumn("stock", gorm.Expr("stock - ?", line.Quantity))
		if result.Error != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to reserve stock: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			tx.Rollback()
			return nil, fmt.Errorf("insufficient stock for %s", line.Name)
		}
		subtotal += line.UnitPrice * int64(line.Quantity)
	}

	deliveryFee := int64(0)
	if subtotal < s.policy.FreeThreshold {
		deliveryFee = s.policy.Fee
	}

	order := Order{
		UserID:              userID,
		Status:              OrderStatusPending,
		SubtotalAmount:      subtotal,
		DeliveryFee:         deliveryFee,
		TotalAmount:         subtotal + deliveryFee,
		DeliveryAddress:     req.DeliveryAddress,
		PaymentMethod:       req.PaymentMethod,
		SpecialInstructions: req.SpecialInstructions,
		PrescriptionFile:    req.PrescriptionFile,
	}

	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	order.OrderNumber = order.GenerateOrderNumber()
	if err := tx.Model(&order).Update("order_number", order.OrderNumber).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to set order number: %w", err)
	}

	for _, line := range req.Items {
		item := OrderItem{
			OrderID:    order.ID,
			ProductID:  line.ProductID,
			Name:       line.Name,
			UnitPrice:  line.UnitPrice,
			Quantity:   line.Quantity,
			TotalPrice: line.UnitPrice * int64(line.Quantity),
		}
		if err := tx.Create(&item).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}
	}

	history := OrderStatusHistory{
		OrderID:   order.ID,
		Status:    OrderStatusPending,
		Comment:   "Order placed",
		CreatedBy: userID,
	}
	if err := tx.Create(&history).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create status history: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit order transaction: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":      userID,
		"order_number": order.OrderNumber,
		"total_amount": order.TotalAmount,
	}).Info("Order created")

	return &checkout.PlacedOrder{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
	}, nil
}

// GetOrders retrieves a user's orders, newest first
func (s *Service) GetOrders(userID uint, req *OrderListRequest) (*OrderListResponse, error) {
	return s.listOrders(req, s.db.Model(&Order{}).Where("user_id = ?", userID))
}

// AdminGetOrders retrieves all orders with optional status filter
func (s *Service) AdminGetOrders(req *OrderListRequest) (*OrderListResponse, error) {
	return s.listOrders(req, s.db.Model(&Order{}))
}

func (s *Service) listOrders(req *OrderListRequest, query *gorm.DB) (*OrderListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []Order
	offset := (req.Page - 1) * req.Limit
	err := query.Preload("Items").
		Order("created_at DESC").
		Offset(offset).Limit(req.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))

	return &OrderListResponse{
		Orders: orders,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// GetOrder retrieves one of the user's orders with items and history
func (s *Service) GetOrder(userID, orderID uint) (*Order, error) {
	var order Order
	err := s.db.Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("order not found")
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

// CancelOrder cancels a pending order and restores product stock
func (s *Service) CancelOrder(userID, orderID uint) error {
	tx := s.db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	var order Order
	if err := tx.Preload("Items").Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error; err != nil {
		tx.Rollback()
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("order not found")
		}
		return fmt.Errorf("failed to get order: %w", err)
	}

	if !order.CanBeCancelled() {
		tx.Rollback()
		return fmt.Errorf("order can no longer be cancelled")
	}

	for _, item := range order.Items {
		err := tx.Model(&catalog.Product{}).
			Where("id = ?", item.ProductID).
			UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to restore stock: %w", err)
		}
	}

	if err := tx.Model(&order).Update("status", OrderStatusCancelled).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to cancel order: %w", err)
	}

	history := OrderStatusHistory{
		OrderID:   order.ID,
		Status:    OrderStatusCancelled,
		Comment:   "Cancelled by customer",
		CreatedBy: userID,
	}
	if err := tx.Create(&history).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to create status history: %w", err)
	}

	return tx.Commit().Error
}

// AdminUpdateStatus moves an order to a new status (admin)
func (s *Service) AdminUpdateStatus(orderID uint, req *UpdateStatusRequest, adminID uint) (*Order, error) {
	if !req.Status.IsValid() {
		return nil, fmt.Errorf("invalid order status: %s", req.Status)
	}

	var order Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("order not found")
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	updates := map[string]interface{}{"status": req.Status}
	if req.Status == OrderStatusDelivered {
		now := time.Now().UTC()
		updates["delivered_at"] = &now
	}

	if err := s.db.Model(&order).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	history := OrderStatusHistory{
		OrderID:   order.ID,
		Status:    req.Status,
		Comment:   req.Comment,
		CreatedBy: adminID,
	}
	if err := s.db.Create(&history).Error; err != nil {
		return nil, fmt.Errorf("failed to create status history: %w", err)
	}

	return &order, nil
}
