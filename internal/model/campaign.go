// internal/model/campaign.go
package model

import "time"

// CampaignStatus enumerates the campaign lifecycle.
type CampaignStatus string

const (
	StatusPending    CampaignStatus = "pending"
	StatusProcessing CampaignStatus = "processing"
	StatusReady      CampaignStatus = "ready"
	StatusSent       CampaignStatus = "sent"
	StatusSendFailed CampaignStatus = "send_failed"
)

// Dispatchable reports whether a dispatch run may start from this status.
// send_failed is included so an operator can retry a failed campaign.
func (s CampaignStatus) Dispatchable() bool {
	return s == StatusReady || s == StatusSendFailed
}

type Campaign struct {
	ID        int            `db:"id" json:"id"`
	Title     string         `db:"title" json:"title"`
	Message   string         `db:"message" json:"message"`
	Status    CampaignStatus `db:"status" json:"status"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt *time.Time     `db:"updated_at" json:"updated_at,omitempty"`
}
