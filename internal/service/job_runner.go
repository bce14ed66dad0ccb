// internal/service/job_runner.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/unclebandit/campaign-manager-backend/internal/queue"
)

// JobRunner routes dequeued jobs to the linking or dispatch service. It is
// the single queue handler shared by the worker binary and the in-process
// dev setup.
type JobRunner struct {
	Linking  *LinkingService
	Dispatch *DispatchService

	// JobTimeout is the wall-clock budget for one job run; an overrun
	// returns an error so the queue can redeliver. Both jobs are
	// idempotent, so redelivery is safe.
	JobTimeout time.Duration

	Log zerolog.Logger
}

func (r *JobRunner) Handle(ctx context.Context, job queue.Job) error {
	if r.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.JobTimeout)
		defer cancel()
	}

	start := time.Now()
	r.Log.Info().Str("kind", string(job.Kind)).Int("campaign_id", job.CampaignID).Msg("job started")

	var err error
	switch job.Kind {
	case queue.KindLink:
		err = r.Linking.Run(ctx, job.CampaignID, job.Emails)
	case queue.KindDispatch:
		_, err = r.Dispatch.Run(ctx, job.CampaignID)
	default:
		// Unroutable jobs are dropped; redelivery cannot fix an unknown kind.
		r.Log.Error().Str("kind", string(job.Kind)).Msg("unknown job kind, dropping")
		return nil
	}

	if err != nil {
		return fmt.Errorf("%s job for campaign %d: %w", job.Kind, job.CampaignID, err)
	}

	r.Log.Info().Str("kind", string(job.Kind)).Int("campaign_id", job.CampaignID).
		Dur("took", time.Since(start)).Msg("job finished")
	return nil
}
