// internal/model/delivery.go
package model

import "time"

// DeliveryStatus represents the outcome of one send attempt.
type DeliveryStatus string

const (
	DeliverySent   DeliveryStatus = "sent"
	DeliveryFailed DeliveryStatus = "failed"
)

// Delivery is the per-recipient outcome row written by a dispatch run.
type Delivery struct {
	ID          int            `db:"id" json:"id"`
	CampaignID  int            `db:"campaign_id" json:"campaign_id"`
	RecipientID int            `db:"recipient_id" json:"recipient_id"`
	Email       string         `db:"email" json:"email"`
	Status      DeliveryStatus `db:"status" json:"status"`
	LastError   string         `db:"last_error" json:"last_error,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}
