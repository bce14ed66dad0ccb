// internal/service/dispatch_service.go
package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	appErrors "github.com/unclebandit/campaign-manager-backend/internal/errors"
	"github.com/unclebandit/campaign-manager-backend/internal/model"
	"github.com/unclebandit/campaign-manager-backend/internal/notify"
	"github.com/unclebandit/campaign-manager-backend/internal/repository"
)

// DispatchService is the background job that fans campaign content out to
// every eligible recipient. The status gate (ready/send_failed only) is what
// prevents a dispatch from observing a mid-ingestion association set.
type DispatchService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	DeliveryRepo repository.DeliveryRepositoryInterface
	Notifiers    *notify.Registry
	Channel      string

	// Concurrency caps simultaneous notifier calls per run; SendTimeout
	// bounds each call, a timeout counts as that recipient's failure.
	Concurrency int
	SendTimeout time.Duration

	Log zerolog.Logger
}

// DispatchResult summarizes one dispatch run.
type DispatchResult struct {
	CampaignID int                     `json:"campaign_id"`
	Attempted  int                     `json:"attempted"`
	Sent       int                     `json:"sent"`
	Status     model.CampaignStatus    `json:"status"`
	Failures   []appErrors.SendFailure `json:"failures,omitempty"`
}

type sendOutcome struct {
	recipient model.Recipient
	err       error
}

// Run executes one dispatch job. The campaign status is written exactly
// once, after every send for this run has completed. Partial failure is
// campaign-level failure: any failed recipient yields send_failed and an
// ErrSendFailed carrying the failure list.
func (s *DispatchService) Run(ctx context.Context, campaignID int) (*DispatchResult, error) {
	campaign, err := s.CampaignRepo.GetByID(campaignID)
	if err != nil {
		return nil, err
	}
	if !campaign.Status.Dispatchable() {
		return nil, appErrors.NewInvalidStateTransition(campaignID, string(campaign.Status))
	}

	notifier, err := s.Notifiers.Get(s.Channel)
	if err != nil {
		return nil, err
	}

	recipients, err := s.CampaignRepo.ListEligible(campaignID)
	if err != nil {
		return nil, err
	}

	outcomes := s.fanOut(ctx, notifier, campaign, recipients)

	result := &DispatchResult{CampaignID: campaignID, Attempted: len(recipients)}
	for _, o := range outcomes {
		status := model.DeliverySent
		lastError := ""
		if o.err != nil {
			status = model.DeliveryFailed
			lastError = o.err.Error()
			result.Failures = append(result.Failures, appErrors.SendFailure{
				Email:  o.recipient.Email,
				Reason: lastError,
			})
		} else {
			result.Sent++
		}

		// Outcome rows are observability, not correctness: a failed write
		// must not flip the campaign outcome.
		if recErr := s.DeliveryRepo.Record(campaignID, o.recipient.ID, o.recipient.Email, status, lastError); recErr != nil {
			s.Log.Warn().Err(recErr).Int("campaign_id", campaignID).
				Str("email", o.recipient.Email).Msg("failed to record delivery")
		}
	}

	// Zero eligible recipients is a trivially successful send.
	result.Status = model.StatusSent
	if len(result.Failures) > 0 {
		result.Status = model.StatusSendFailed
	}

	if err := s.CampaignRepo.UpdateStatus(campaignID, result.Status); err != nil {
		return nil, err
	}

	s.Log.Info().Int("campaign_id", campaignID).
		Int("attempted", result.Attempted).Int("sent", result.Sent).
		Int("failed", len(result.Failures)).Str("status", string(result.Status)).
		Msg("dispatch complete")

	if len(result.Failures) > 0 {
		return result, &appErrors.ErrSendFailed{CampaignID: campaignID, Failures: result.Failures}
	}
	return result, nil
}

// fanOut sends to all recipients over a bounded worker pool and collects
// per-recipient outcomes. No ordering is guaranteed across recipients.
func (s *DispatchService) fanOut(ctx context.Context, notifier notify.Notifier, campaign *model.Campaign, recipients []model.Recipient) []sendOutcome {
	workers := s.Concurrency
	if workers <= 0 {
		workers = 10
	}
	if workers > len(recipients) {
		workers = len(recipients)
	}

	jobs := make(chan model.Recipient)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		outcomes []sendOutcome
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range jobs {
				err := s.send(ctx, notifier, campaign, rec)
				mu.Lock()
				outcomes = append(outcomes, sendOutcome{recipient: rec, err: err})
				mu.Unlock()
			}
		}()
	}

	for _, rec := range recipients {
		jobs <- rec
	}
	close(jobs)
	wg.Wait()

	return outcomes
}

func (s *DispatchService) send(ctx context.Context, notifier notify.Notifier, campaign *model.Campaign, rec model.Recipient) error {
	timeout := s.SendTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	sendCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return notifier.Send(sendCtx, campaign.Title, campaign.Message, rec.Email)
}
