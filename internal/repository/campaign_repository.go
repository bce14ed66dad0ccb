package repository

import (
	"database/sql"
	"fmt"
	"time"

	appErrors "github.com/unclebandit/campaign-manager-backend/internal/errors"
	"github.com/unclebandit/campaign-manager-backend/internal/model"
)

type CampaignRepositoryInterface interface {
	// Campaign CRUD
	Create(c *model.Campaign) error
	GetByID(id int) (*model.Campaign, error)
	ListCampaigns(offset, limit int, status string) ([]*model.Campaign, int, error)
	UpdateStatus(campaignID int, status model.CampaignStatus) error

	// Campaign-recipient associations
	Link(campaignID, recipientID int) error
	ListEligible(campaignID int) ([]model.Recipient, error)
	ListLinked(campaignID int) ([]model.Recipient, error)
}

type CampaignRepository struct {
	DB *sql.DB
}

// ====================== Campaign CRUD ======================

func (r *CampaignRepository) Create(c *model.Campaign) error {
	c.CreatedAt = time.Now()
	if c.Status == "" {
		c.Status = model.StatusPending
	}
	query := `
        INSERT INTO campaigns (title, message, status, created_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `
	err := r.DB.QueryRow(query, c.Title, c.Message, c.Status, c.CreatedAt).Scan(&c.ID)
	if err != nil {
		return appErrors.NewTransientStore("create campaign", err)
	}
	return nil
}

func (r *CampaignRepository) GetByID(id int) (*model.Campaign, error) {
	query := `
        SELECT id, title, message, status, created_at, updated_at
        FROM campaigns WHERE id=$1
    `
	var c model.Campaign
	err := r.DB.QueryRow(query, id).Scan(&c.ID, &c.Title, &c.Message, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, appErrors.NewTransientStore("get campaign", err)
	}
	return &c, nil
}

func (r *CampaignRepository) ListCampaigns(offset, limit int, status string) ([]*model.Campaign, int, error) {
	campaigns := []*model.Campaign{}
	query := `SELECT id, title, message, status, created_at, updated_at FROM campaigns WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if status != "" {
		query += fmt.Sprintf(" AND status=$%d", argPos)
		args = append(args, status)
		argPos++
	}

	query += fmt.Sprintf(" ORDER BY id DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, 0, appErrors.NewTransientStore("list campaigns", err)
	}
	defer rows.Close()

	for rows.Next() {
		c := &model.Campaign{}
		if err := rows.Scan(&c.ID, &c.Title, &c.Message, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, appErrors.NewTransientStore("list campaigns", err)
		}
		campaigns = append(campaigns, c)
	}

	countQuery := `SELECT COUNT(*) FROM campaigns WHERE 1=1`
	argsCount := []interface{}{}
	if status != "" {
		countQuery += " AND status=$1"
		argsCount = append(argsCount, status)
	}

	var total int
	if err := r.DB.QueryRow(countQuery, argsCount...).Scan(&total); err != nil {
		return nil, 0, appErrors.NewTransientStore("count campaigns", err)
	}

	return campaigns, total, nil
}

func (r *CampaignRepository) UpdateStatus(campaignID int, status model.CampaignStatus) error {
	query := `UPDATE campaigns SET status=$1, updated_at=$2 WHERE id=$3`
	res, err := r.DB.Exec(query, status, time.Now(), campaignID)
	if err != nil {
		return appErrors.NewTransientStore("update campaign status", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.NewCampaignNotFound(campaignID)
	}
	return nil
}

// ====================== Associations ======================

// Link inserts a campaign-recipient association. Re-linking an existing pair
// is a no-op, which makes the linking job safe to re-run.
func (r *CampaignRepository) Link(campaignID, recipientID int) error {
	query := `
        INSERT INTO campaign_recipients (campaign_id, recipient_id)
        VALUES ($1, $2)
        ON CONFLICT (campaign_id, recipient_id) DO NOTHING
    `
	if _, err := r.DB.Exec(query, campaignID, recipientID); err != nil {
		return appErrors.NewTransientStore("link recipient", err)
	}
	return nil
}

// ListEligible returns linked recipients excluding opted-out ones.
func (r *CampaignRepository) ListEligible(campaignID int) ([]model.Recipient, error) {
	return r.listAssociated(campaignID, true)
}

func (r *CampaignRepository) ListLinked(campaignID int) ([]model.Recipient, error) {
	return r.listAssociated(campaignID, false)
}

func (r *CampaignRepository) listAssociated(campaignID int, eligibleOnly bool) ([]model.Recipient, error) {
	query := `
        SELECT r.id, r.email, r.name, r.group_id, r.opt_out, r.opt_out_reason, r.created_at, r.updated_at
        FROM recipients r
        JOIN campaign_recipients cr ON cr.recipient_id = r.id
        WHERE cr.campaign_id = $1
    `
	if eligibleOnly {
		query += ` AND r.opt_out = false`
	}
	query += ` ORDER BY r.id`

	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, appErrors.NewTransientStore("list campaign recipients", err)
	}
	defer rows.Close()

	recipients := []model.Recipient{}
	for rows.Next() {
		var rec model.Recipient
		if err := rows.Scan(&rec.ID, &rec.Email, &rec.Name, &rec.GroupID, &rec.OptOut, &rec.OptOutReason, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, appErrors.NewTransientStore("list campaign recipients", err)
		}
		recipients = append(recipients, rec)
	}
	return recipients, rows.Err()
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
