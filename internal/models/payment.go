package models

import "time"

// Payment tracks one gateway order. SubscriptionID is back-filled after the
// subscription is created on verification, since the order always exists
// first.
type Payment struct {
	BaseModel
	SubjectID   string      `gorm:"not null;index" json:"subject_id"`
	SubjectType SubjectType `gorm:"type:varchar(20);not null" json:"subject_type"`

	SubscriptionID *string `gorm:"type:uuid;index" json:"subscription_id,omitempty"`

	Amount        float64 `gorm:"not null" json:"amount"`
	Currency      string  `gorm:"default:'INR'" json:"currency"`
	PaymentMethod string  `gorm:"not null" json:"payment_method"`

	GatewayOrderID   string `gorm:"uniqueIndex;not null" json:"gateway_order_id"`
	GatewayPaymentID string `gorm:"index" json:"gateway_payment_id"`

	Status      PaymentStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}
