package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type OrderItem struct {
	ProductID string `json:"productId,omitempty"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
}

type TimelineEntry struct {
	Status      OrderStatus `json:"status"`
	Timestamp   time.Time   `json:"timestamp"`
	Description string      `json:"description"`
}

// Order is the unit the lifecycle operates on. Timeline is append-only;
// Version is stamped by the repository on every write.
type Order struct {
	ID               string          `json:"id"`
	Customer         Customer        `json:"customer"`
	Items            []OrderItem     `json:"items"`
	Subtotal         int64           `json:"subtotal"`
	DeliveryFee      int64           `json:"deliveryFee"`
	Total            int64           `json:"total"`
	Status           OrderStatus     `json:"status"`
	PaymentReference string          `json:"paymentReference,omitempty"`
	PaymentStatus    PaymentStatus   `json:"paymentStatus"`
	PaymentVerified  bool            `json:"paymentVerified"`
	TrackingNumber   string          `json:"trackingNumber,omitempty"`
	Timeline         []TimelineEntry `json:"timeline"`
	Version          int64           `json:"version"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

func (o *Order) AppendTimeline(status OrderStatus, description string) {
	o.Timeline = append(o.Timeline, TimelineEntry{
		Status:      status,
		Timestamp:   time.Now().UTC(),
		Description: description,
	})
}

// NewOrderID mints a time-derived id with a random suffix so concurrent
// submissions in the same millisecond cannot collide.
func NewOrderID() string {
	b := make([]byte, 3)
	_, _ = rand.Read(b)
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), hex.EncodeToString(b))
}
