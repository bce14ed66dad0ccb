// internal/service/linking_service.go
package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/unclebandit/campaign-manager-backend/internal/model"
	"github.com/unclebandit/campaign-manager-backend/internal/repository"
)

// LinkingService is the background job that turns a raw email list into
// deduplicated recipient rows linked to a campaign. It is idempotent: every
// write is an upsert by natural key, so re-running after a partial failure
// converges on the same end state.
type LinkingService struct {
	CampaignRepo  repository.CampaignRepositoryInterface
	RecipientRepo repository.RecipientRepositoryInterface
	Log           zerolog.Logger
}

// NormalizeEmail canonicalizes a raw address: trim whitespace, lowercase.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// DedupEmails normalizes a batch and drops empties and in-batch duplicates,
// keeping first-occurrence order.
func DedupEmails(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		email := NormalizeEmail(r)
		if email == "" || seen[email] {
			continue
		}
		seen[email] = true
		out = append(out, email)
	}
	return out
}

// ParseRecipients accepts either a comma-separated string or an already
// split list and returns the raw address list.
func ParseRecipients(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Run executes one linking job. Status transitions: processing at start,
// ready only after every association insert has completed; the dispatch gate
// relies on that ordering.
func (s *LinkingService) Run(ctx context.Context, campaignID int, rawEmails []string) error {
	if _, err := s.CampaignRepo.GetByID(campaignID); err != nil {
		return err
	}

	if err := s.CampaignRepo.UpdateStatus(campaignID, model.StatusProcessing); err != nil {
		return err
	}

	emails := DedupEmails(rawEmails)
	for _, email := range emails {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Never touches opt-out, name or group on a known recipient.
		rec, err := s.RecipientRepo.Upsert(email, nil)
		if err != nil {
			return err
		}
		if err := s.CampaignRepo.Link(campaignID, rec.ID); err != nil {
			return err
		}
	}

	if err := s.CampaignRepo.UpdateStatus(campaignID, model.StatusReady); err != nil {
		return err
	}

	s.Log.Info().Int("campaign_id", campaignID).
		Int("raw", len(rawEmails)).Int("linked", len(emails)).
		Msg("linking complete")
	return nil
}
