package service_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/campaign-manager-backend/internal/errors"
	"github.com/unclebandit/campaign-manager-backend/internal/model"
	"github.com/unclebandit/campaign-manager-backend/internal/service"
)

func newLinkingFixture(t *testing.T) (*service.LinkingService, *fakeCampaignRepo, *fakeRecipientRepo, int) {
	t.Helper()
	recipients := newFakeRecipientRepo()
	campaigns := newFakeCampaignRepo(recipients)

	c := &model.Campaign{Title: "Sale", Message: "Everything must go"}
	require.NoError(t, campaigns.Create(c))

	svc := &service.LinkingService{
		CampaignRepo:  campaigns,
		RecipientRepo: recipients,
		Log:           zerolog.Nop(),
	}
	return svc, campaigns, recipients, c.ID
}

func TestLinkingDeduplicatesAndNormalizes(t *testing.T) {
	svc, campaigns, recipients, id := newLinkingFixture(t)

	err := svc.Run(context.Background(), id, []string{"A@Example.com", " a@example.com ", "b@example.com"})
	require.NoError(t, err)

	assert.Len(t, recipients.byEmail, 2)
	assert.Contains(t, recipients.byEmail, "a@example.com")
	assert.Contains(t, recipients.byEmail, "b@example.com")
	assert.Equal(t, 2, campaigns.linkCount(id))

	c, _ := campaigns.GetByID(id)
	assert.Equal(t, model.StatusReady, c.Status)
}

func TestLinkingIsIdempotent(t *testing.T) {
	svc, campaigns, recipients, id := newLinkingFixture(t)
	emails := []string{"a@example.com", "b@example.com", "a@example.com"}

	require.NoError(t, svc.Run(context.Background(), id, emails))
	require.NoError(t, svc.Run(context.Background(), id, emails))

	assert.Len(t, recipients.byEmail, 2)
	assert.Equal(t, 2, campaigns.linkCount(id))
}

func TestLinkingPreservesExistingRecipientFields(t *testing.T) {
	svc, campaigns, recipients, id := newLinkingFixture(t)

	reason := "unsubscribed"
	_, err := recipients.Upsert("a@example.com", nil)
	require.NoError(t, err)
	_, err = recipients.SetOptOut("a@example.com", true, &reason)
	require.NoError(t, err)

	require.NoError(t, svc.Run(context.Background(), id, []string{"A@Example.com"}))

	rec, err := recipients.FindByEmail("a@example.com")
	require.NoError(t, err)
	assert.True(t, rec.OptOut, "linking must not clear opt-out")
	assert.Equal(t, &reason, rec.OptOutReason)
	// Opted-out recipients are still linked; dispatch filters them.
	assert.Equal(t, 1, campaigns.linkCount(id))
}

func TestLinkingUnknownCampaign(t *testing.T) {
	svc, _, _, _ := newLinkingFixture(t)

	err := svc.Run(context.Background(), 404, []string{"a@example.com"})
	assert.True(t, appErrors.IsNotFound(err))
}

func TestLinkingStatusTransitions(t *testing.T) {
	svc, campaigns, _, id := newLinkingFixture(t)

	require.NoError(t, svc.Run(context.Background(), id, []string{"a@example.com"}))

	assert.Equal(t, []model.CampaignStatus{model.StatusProcessing, model.StatusReady}, campaigns.statusWrites)
}

func TestDedupEmails(t *testing.T) {
	got := service.DedupEmails([]string{" A@x.com", "a@x.com ", "", "b@x.com"})
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, got)
}

func TestParseRecipients(t *testing.T) {
	got := service.ParseRecipients("a@x.com, b@x.com , ,c@x.com")
	assert.Equal(t, []string{"a@x.com", "b@x.com", "c@x.com"}, got)
}
