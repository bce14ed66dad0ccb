package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/campaign-manager-backend/internal/model"
	"github.com/unclebandit/campaign-manager-backend/internal/notify"
	"github.com/unclebandit/campaign-manager-backend/internal/queue"
	"github.com/unclebandit/campaign-manager-backend/internal/service"
)

// TestCampaignPipeline walks the whole flow: create a campaign with a
// duplicated recipient list, let the linking job run, opt one recipient out,
// then dispatch and verify only the remaining recipient is notified.
func TestCampaignPipeline(t *testing.T) {
	recipients := newFakeRecipientRepo()
	campaigns := newFakeCampaignRepo(recipients)
	deliveries := newFakeDeliveryRepo()

	mock := notify.NewMockNotifier()
	registry := notify.NewRegistry()
	registry.Register("mock", mock)

	runner := &service.JobRunner{
		Linking: &service.LinkingService{
			CampaignRepo:  campaigns,
			RecipientRepo: recipients,
			Log:           zerolog.Nop(),
		},
		Dispatch: &service.DispatchService{
			CampaignRepo: campaigns,
			DeliveryRepo: deliveries,
			Notifiers:    registry,
			Channel:      "mock",
			Concurrency:  2,
			SendTimeout:  time.Second,
			Log:          zerolog.Nop(),
		},
		JobTimeout: time.Minute,
		Log:        zerolog.Nop(),
	}

	q := queue.NewInMemoryQueue(0)
	require.NoError(t, q.Consume(context.Background(), runner.Handle))

	campaignSvc := &service.CampaignService{
		CampaignRepo: campaigns,
		DeliveryRepo: deliveries,
		Queue:        q,
		Log:          zerolog.Nop(),
	}

	// Create with [A, B, A]; linking dedups to two recipients.
	c, err := campaignSvc.CreateCampaign("Sale", "Everything must go", []string{
		"a@example.com", "B@Example.com", " a@example.com ",
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, c.Status)

	q.Wait()

	assert.Len(t, recipients.byEmail, 2)
	assert.Equal(t, 2, campaigns.linkCount(c.ID))

	got, err := campaigns.GetByID(c.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusReady, got.Status)

	// Opt out B, then dispatch.
	_, err = recipients.SetOptOut("b@example.com", true, nil)
	require.NoError(t, err)

	require.NoError(t, campaignSvc.SubmitDispatch(c.ID))
	q.Wait()

	assert.Equal(t, []string{"a@example.com"}, mock.Sent())

	got, err = campaigns.GetByID(c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSent, got.Status)

	details, err := campaignSvc.GetCampaignDetailsWithStats(c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, details.Stats["sent"])
	assert.Equal(t, 0, details.Stats["failed"])
	assert.Equal(t, 2, details.Stats["linked"])
}

func TestSubmitDispatchUnknownCampaign(t *testing.T) {
	recipients := newFakeRecipientRepo()
	campaigns := newFakeCampaignRepo(recipients)

	campaignSvc := &service.CampaignService{
		CampaignRepo: campaigns,
		DeliveryRepo: newFakeDeliveryRepo(),
		Queue:        queue.NewInMemoryQueue(0),
		Log:          zerolog.Nop(),
	}

	err := campaignSvc.SubmitDispatch(42)
	assert.Error(t, err)
}
