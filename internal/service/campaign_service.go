// internal/service/campaign_service.go
package service

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/unclebandit/campaign-manager-backend/internal/model"
	"github.com/unclebandit/campaign-manager-backend/internal/queue"
	"github.com/unclebandit/campaign-manager-backend/internal/repository"
)

// CampaignService is the request-layer facade: campaign CRUD plus job
// submission. The expensive work happens in LinkingService/DispatchService
// behind the queue.
type CampaignService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	DeliveryRepo repository.DeliveryRepositoryInterface
	Queue        queue.Queue
	Log          zerolog.Logger
}

type CampaignDetails struct {
	ID        int                  `json:"id"`
	Title     string               `json:"title"`
	Message   string               `json:"message"`
	Status    model.CampaignStatus `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt *time.Time           `json:"updated_at,omitempty"`
	Stats     map[string]int       `json:"stats"`
}

// CreateCampaign persists a pending campaign and enqueues the linking job.
// The recipient list is handed to the job untouched; normalization and
// dedup happen off the request path.
func (s *CampaignService) CreateCampaign(title, message string, recipients []string) (*model.Campaign, error) {
	c := &model.Campaign{
		Title:   title,
		Message: message,
		Status:  model.StatusPending,
	}
	if err := s.CampaignRepo.Create(c); err != nil {
		return nil, err
	}

	if err := s.Queue.Publish(queue.Job{
		Kind:       queue.KindLink,
		CampaignID: c.ID,
		Emails:     recipients,
	}); err != nil {
		return nil, err
	}

	s.Log.Info().Int("campaign_id", c.ID).Int("recipients", len(recipients)).
		Msg("campaign created, linking queued")
	return c, nil
}

// SubmitLinking enqueues a linking job for additional recipients on an
// existing campaign. Fire-and-forget: the job reports a missing campaign
// itself.
func (s *CampaignService) SubmitLinking(campaignID int, recipients []string) error {
	if err := s.Queue.Publish(queue.Job{
		Kind:       queue.KindLink,
		CampaignID: campaignID,
		Emails:     recipients,
	}); err != nil {
		return err
	}

	s.Log.Info().Int("campaign_id", campaignID).Int("recipients", len(recipients)).
		Msg("linking queued")
	return nil
}

// SubmitDispatch enqueues the dispatch job. It fails synchronously only if
// the campaign does not exist; the status gate is enforced by the job itself
// so a still-running linking job can finish first.
func (s *CampaignService) SubmitDispatch(campaignID int) error {
	if _, err := s.CampaignRepo.GetByID(campaignID); err != nil {
		return err
	}
	if err := s.Queue.Publish(queue.Job{Kind: queue.KindDispatch, CampaignID: campaignID}); err != nil {
		return err
	}

	s.Log.Info().Int("campaign_id", campaignID).Msg("dispatch queued")
	return nil
}

// ListCampaigns fetches campaigns with pagination.
func (s *CampaignService) ListCampaigns(page, pageSize int, status string) ([]model.Campaign, map[string]int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	ptrs, total, err := s.CampaignRepo.ListCampaigns(offset, pageSize, status)
	if err != nil {
		return nil, nil, err
	}

	campaigns := make([]model.Campaign, len(ptrs))
	for i, c := range ptrs {
		campaigns[i] = *c
	}

	totalPages := (total + pageSize - 1) / pageSize
	pagination := map[string]int{
		"page":        page,
		"page_size":   pageSize,
		"total_count": total,
		"total_pages": totalPages,
	}

	return campaigns, pagination, nil
}

// GetCampaignDetailsWithStats returns a campaign plus its per-recipient
// delivery counts.
func (s *CampaignService) GetCampaignDetailsWithStats(campaignID int) (*CampaignDetails, error) {
	campaign, err := s.CampaignRepo.GetByID(campaignID)
	if err != nil {
		return nil, err
	}

	stats, err := s.DeliveryRepo.Stats(campaignID)
	if err != nil {
		return nil, err
	}

	linked, err := s.CampaignRepo.ListLinked(campaignID)
	if err != nil {
		return nil, err
	}
	stats["linked"] = len(linked)

	return &CampaignDetails{
		ID:        campaign.ID,
		Title:     campaign.Title,
		Message:   campaign.Message,
		Status:    campaign.Status,
		CreatedAt: campaign.CreatedAt,
		UpdatedAt: campaign.UpdatedAt,
		Stats:     stats,
	}, nil
}

// ListFailures returns the per-recipient failure list for a campaign.
func (s *CampaignService) ListFailures(campaignID int) ([]model.Delivery, error) {
	if _, err := s.CampaignRepo.GetByID(campaignID); err != nil {
		return nil, err
	}
	return s.DeliveryRepo.ListFailed(campaignID)
}
