package domain

import "time"

type NotificationKind string

const (
	KindAdminNewOrder        NotificationKind = "admin_new_order"
	KindCustomerConfirmation NotificationKind = "customer_confirmation"
	KindShipped              NotificationKind = "shipped"
	KindDelivered            NotificationKind = "delivered"
	KindStatusUpdate         NotificationKind = "status_update"
	KindInquiry              NotificationKind = "inquiry"
)

// NotificationLogEntry is one row per dispatch call (not per recipient).
type NotificationLogEntry struct {
	ID            string    `json:"id" gorm:"primaryKey;size:36"`
	Type          string    `json:"type" gorm:"size:32;index"`
	OrderID       string    `json:"orderId,omitempty" gorm:"size:64;index"`
	CustomerEmail string    `json:"customerEmail,omitempty" gorm:"size:255"`
	Subject       string    `json:"subject" gorm:"size:255"`
	Content       string    `json:"content" gorm:"type:text"`
	Read          bool      `json:"read" gorm:"default:false"`
	CreatedAt     time.Time `json:"createdAt" gorm:"index"`
}

func (NotificationLogEntry) TableName() string {
	return "notification_log"
}

type OutboxStatus string

const (
	OutboxPending OutboxStatus = "pending"
	OutboxSent    OutboxStatus = "sent"
	OutboxFailed  OutboxStatus = "failed"
)

// EmailOutboxEntry records an intent to send durably before delivery is
// attempted, so a crash between dispatch and delivery loses nothing.
type EmailOutboxEntry struct {
	ID            string       `json:"id" gorm:"primaryKey;size:36"`
	Recipient     string       `json:"recipient" gorm:"size:255"`
	Subject       string       `json:"subject" gorm:"size:255"`
	HTML          string       `json:"html" gorm:"type:text"`
	Text          string       `json:"text" gorm:"type:text"`
	Attempts      int          `json:"attempts"`
	Status        OutboxStatus `json:"status" gorm:"size:16;index;default:'pending'"`
	LastError     string       `json:"lastError,omitempty" gorm:"size:512"`
	NextAttemptAt time.Time    `json:"nextAttemptAt" gorm:"index"`
	CreatedAt     time.Time    `json:"createdAt"`
	SentAt        *time.Time   `json:"sentAt,omitempty"`
}

func (EmailOutboxEntry) TableName() string {
	return "email_outbox"
}
