package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusCompleted  OrderStatus = "Completed"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

var orderStatuses = []OrderStatus{
	OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusCompleted, OrderStatusCancelled,
}

// ParseOrderStatus accepts any casing of a known status.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	for _, st := range orderStatuses {
		if strings.EqualFold(string(st), s) {
			return st, true
		}
	}
	return "", false
}

// Order is a finalized selection. TotalPrice is the server-side price at the
// time the order was placed and never recomputed.
type Order struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Status        OrderStatus     `gorm:"type:varchar(30);index" json:"status"`
	ProductID     int64           `gorm:"index" json:"product_id"`
	CustomerID    *uuid.UUID      `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	CustomerName  string          `gorm:"size:140" json:"customer_name"`
	CustomerEmail string          `gorm:"size:140" json:"customer_email"`
	OptionIDs     []int64         `gorm:"column:selected_part_option_ids;type:jsonb;serializer:json" json:"selected_part_option_ids"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(12,2)" json:"total_price"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
