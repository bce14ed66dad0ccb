// internal/service/recipient_service.go
package service

import (
	"github.com/rs/zerolog"

	"github.com/unclebandit/campaign-manager-backend/internal/model"
	"github.com/unclebandit/campaign-manager-backend/internal/repository"
)

// RecipientService handles recipient and group CRUD: opt-out compliance and
// group membership. Addresses are normalized before any store access so the
// one-row-per-email invariant holds regardless of entry point.
type RecipientService struct {
	RecipientRepo repository.RecipientRepositoryInterface
	GroupRepo     repository.GroupRepositoryInterface
	Log           zerolog.Logger
}

// GetOrCreate upserts a recipient by normalized email. Existing rows keep
// their fields.
func (s *RecipientService) GetOrCreate(email string, name *string) (*model.Recipient, error) {
	return s.RecipientRepo.Upsert(NormalizeEmail(email), name)
}

// OptOut suppresses all future delivery to the recipient. Unknown emails are
// a NotFound error, not an implicit create.
func (s *RecipientService) OptOut(email string, reason *string) (*model.Recipient, error) {
	rec, err := s.RecipientRepo.SetOptOut(NormalizeEmail(email), true, reason)
	if err != nil {
		return nil, err
	}
	s.Log.Info().Str("email", rec.Email).Msg("recipient opted out")
	return rec, nil
}

func (s *RecipientService) OptIn(email string) (*model.Recipient, error) {
	rec, err := s.RecipientRepo.SetOptOut(NormalizeEmail(email), false, nil)
	if err != nil {
		return nil, err
	}
	s.Log.Info().Str("email", rec.Email).Msg("recipient opted in")
	return rec, nil
}

// UpdateRecipient patches name, group or opt-out. A group reference is
// validated before assignment.
func (s *RecipientService) UpdateRecipient(id int, name *string, groupID *int, optOut *bool) (*model.Recipient, error) {
	if groupID != nil {
		if _, err := s.GroupRepo.GetByID(*groupID); err != nil {
			return nil, err
		}
	}
	return s.RecipientRepo.Update(id, name, groupID, optOut)
}

func (s *RecipientService) ListRecipients(includeOptedOut bool) ([]model.Recipient, error) {
	return s.RecipientRepo.List(includeOptedOut)
}

// ====================== Groups ======================

func (s *RecipientService) CreateGroup(name string, description *string) (*model.Group, error) {
	g := &model.Group{Name: name, Description: description}
	if err := s.GroupRepo.Create(g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *RecipientService) UpdateGroup(id int, name, description *string) (*model.Group, error) {
	return s.GroupRepo.Update(id, name, description)
}

func (s *RecipientService) ListGroups() ([]model.Group, error) {
	return s.GroupRepo.List()
}

// AddRecipientsToGroup upserts each email and assigns membership, skipping
// opted-out recipients. Returns the recipients actually added.
func (s *RecipientService) AddRecipientsToGroup(groupID int, emails []string) ([]model.Recipient, error) {
	if _, err := s.GroupRepo.GetByID(groupID); err != nil {
		return nil, err
	}

	added := []model.Recipient{}
	for _, email := range DedupEmails(emails) {
		rec, err := s.RecipientRepo.Upsert(email, nil)
		if err != nil {
			return added, err
		}
		if rec.OptOut {
			s.Log.Warn().Str("email", rec.Email).Msg("skipping opted-out recipient")
			continue
		}
		if err := s.RecipientRepo.AssignGroup(rec.ID, groupID); err != nil {
			return added, err
		}
		rec.GroupID = &groupID
		added = append(added, *rec)
	}

	s.Log.Info().Int("group_id", groupID).Int("added", len(added)).Msg("group membership updated")
	return added, nil
}
