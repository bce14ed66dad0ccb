package repository

import (
	"database/sql"

	appErrors "github.com/unclebandit/campaign-manager-backend/internal/errors"
	"github.com/unclebandit/campaign-manager-backend/internal/model"
)

// DeliveryRepositoryInterface records per-recipient dispatch outcomes so a
// failed campaign exposes exactly which recipients failed.
type DeliveryRepositoryInterface interface {
	Record(campaignID, recipientID int, email string, status model.DeliveryStatus, lastError string) error
	ListFailed(campaignID int) ([]model.Delivery, error)
	Stats(campaignID int) (map[string]int, error)
}

type DeliveryRepository struct {
	DB *sql.DB
}

// Record upserts the outcome row for one (campaign, recipient) pair. A retry
// run overwrites the previous outcome.
func (r *DeliveryRepository) Record(campaignID, recipientID int, email string, status model.DeliveryStatus, lastError string) error {
	query := `
        INSERT INTO deliveries (campaign_id, recipient_id, email, status, last_error, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
        ON CONFLICT (campaign_id, recipient_id)
        DO UPDATE SET status=EXCLUDED.status, last_error=EXCLUDED.last_error, updated_at=NOW()
    `
	if _, err := r.DB.Exec(query, campaignID, recipientID, email, status, lastError); err != nil {
		return appErrors.NewTransientStore("record delivery", err)
	}
	return nil
}

func (r *DeliveryRepository) ListFailed(campaignID int) ([]model.Delivery, error) {
	query := `
        SELECT id, campaign_id, recipient_id, email, status, last_error, created_at, updated_at
        FROM deliveries
        WHERE campaign_id=$1 AND status=$2
        ORDER BY id
    `
	rows, err := r.DB.Query(query, campaignID, model.DeliveryFailed)
	if err != nil {
		return nil, appErrors.NewTransientStore("list failed deliveries", err)
	}
	defer rows.Close()

	deliveries := []model.Delivery{}
	for rows.Next() {
		var d model.Delivery
		if err := rows.Scan(&d.ID, &d.CampaignID, &d.RecipientID, &d.Email, &d.Status, &d.LastError, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, appErrors.NewTransientStore("list failed deliveries", err)
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}

func (r *DeliveryRepository) Stats(campaignID int) (map[string]int, error) {
	query := `SELECT status, COUNT(*) FROM deliveries WHERE campaign_id=$1 GROUP BY status`
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, appErrors.NewTransientStore("delivery stats", err)
	}
	defer rows.Close()

	stats := map[string]int{"sent": 0, "failed": 0}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, appErrors.NewTransientStore("delivery stats", err)
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

var _ DeliveryRepositoryInterface = (*DeliveryRepository)(nil)
