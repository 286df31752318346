// internal/domain/order/entity.go
package order

import (
	"fmt"
	"time"

	"github.com/your-org/pharmacy-backend/internal/domain/checkout"
	"gorm.io/gorm"
)

// OrderStatus represents the order status
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// IsValid reports whether the status is one of the known states
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusOutForDelivery,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Order represents a placed pharmacy order
type Order struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	OrderNumber string      `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	UserID      uint        `gorm:"not null;index" json:"user_id"`
	Status      OrderStatus `gorm:"not null;default:'pending'" json:"status"`

	// Financial information, whole rupees
	SubtotalAmount int64 `gorm:"not null" json:"subtotal_amount"`
	DeliveryFee    int64 `gorm:"default:0" json:"delivery_fee"`
	TotalAmount    int64 `gorm:"not null" json:"total_amount"`

	// Delivery
	DeliveryAddress     checkout.DeliveryAddress `gorm:"embedded;embeddedPrefix:delivery_" json:"delivery_address"`
	PaymentMethod       string                   `gorm:"not null;size:50" json:"payment_method"`
	SpecialInstructions string                   `gorm:"type:text" json:"special_instructions"`
	PrescriptionFile    string                   `gorm:"size:500" json:"prescription_file,omitempty"`

	// Timestamps
	DeliveredAt *time.Time     `json:"delivered_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Items         []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"status_history,omitempty"`
}

// OrderItem represents one line of an order
type OrderItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OrderID    uint      `gorm:"not null;index" json:"order_id"`
	ProductID  uint      `gorm:"not null;index" json:"product_id"`
	Name       string    `gorm:"not null;size:255" json:"name"`
	UnitPrice  int64     `gorm:"not null" json:"unit_price"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	TotalPrice int64     `gorm:"not null" json:"total_price"` // Quantity * UnitPrice
	CreatedAt  time.Time `json:"created_at"`
}

// OrderStatusHistory tracks order status changes
type OrderStatusHistory struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	OrderID   uint        `gorm:"not null;index" json:"order_id"`
	Status    OrderStatus `gorm:"not null" json:"status"`
	Comment   string      `gorm:"type:text" json:"comment"`
	CreatedBy uint        `gorm:"index" json:"created_by"`
	CreatedAt time.Time   `json:"created_at"`
}

// TableName overrides
func (Order) TableName() string              { return "orders" }
func (OrderItem) TableName() string          { return "order_items" }
func (OrderStatusHistory) TableName() string { return "order_status_history" }

// GenerateOrderNumber builds the order number once the ID is known.
// Format: ORD-YYYYMMDD-XXXXX
func (o *Order) GenerateOrderNumber() string {
	return fmt.Sprintf("ORD-%s-%05d", o.CreatedAt.Format("20060102"), o.ID)
}

// CanBeCancelled checks if order can still be cancelled by the customer
func (o *Order) CanBeCancelled() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusConfirmed
}
