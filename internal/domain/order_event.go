package domain

import "time"

type OrderCreatedEvent struct {
	OrderID       string    `json:"orderId"`
	CustomerEmail string    `json:"customerEmail"`
	Total         int64     `json:"total"`
	ItemCount     int       `json:"itemCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

type OrderStatusChangedEvent struct {
	OrderID   string      `json:"orderId"`
	From      OrderStatus `json:"from"`
	To        OrderStatus `json:"to"`
	ChangedAt time.Time   `json:"changedAt"`
}

type PaymentConfirmedEvent struct {
	OrderID          string    `json:"orderId"`
	PaymentReference string    `json:"paymentReference"`
	Amount           int64     `json:"amount"`
	ConfirmedAt      time.Time `json:"confirmedAt"`
}
