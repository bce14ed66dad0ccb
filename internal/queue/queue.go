package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	appErrors "github.com/unclebandit/campaign-manager-backend/internal/errors"
)

// JobKind discriminates the two background jobs.
type JobKind string

const (
	KindLink     JobKind = "link"
	KindDispatch JobKind = "dispatch"
)

// Job is the payload carried from the request layer to a worker. Emails is
// only set for link jobs.
type Job struct {
	Kind       JobKind  `json:"kind"`
	CampaignID int      `json:"campaign_id"`
	Emails     []string `json:"emails,omitempty"`
}

// Handler runs one job to completion. Returning an error marks the job for
// redelivery unless the error is non-retryable.
type Handler func(ctx context.Context, job Job) error

// Queue delivers jobs at least once from producers to exactly one handler
// execution per delivery. Handlers must therefore be idempotent.
type Queue interface {
	Publish(job Job) error
	Consume(ctx context.Context, handler Handler) error
}

// Retryable reports whether a failed job should be redelivered. A missing
// campaign or a state-gate rejection cannot be fixed by retrying, and a
// partially failed send is surfaced as send_failed for the operator to retry
// explicitly rather than redelivered.
func Retryable(err error) bool {
	if appErrors.IsNotFound(err) || appErrors.IsInvalidStateTransition(err) || appErrors.IsSendFailed(err) {
		return false
	}
	return true
}

// InMemoryQueue runs jobs in-process with retry. Used by tests and
// single-binary dev setups; production uses the AMQP queue.
type InMemoryQueue struct {
	mu         sync.Mutex
	handler    Handler
	wg         sync.WaitGroup
	maxRetries int
}

func NewInMemoryQueue(maxRetries int) *InMemoryQueue {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &InMemoryQueue{maxRetries: maxRetries}
}

// Consume registers the handler. Jobs published before a handler exists are
// rejected rather than buffered.
func (q *InMemoryQueue) Consume(_ context.Context, handler Handler) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handler = handler
	return nil
}

func (q *InMemoryQueue) Publish(job Job) error {
	q.mu.Lock()
	handler := q.handler
	q.mu.Unlock()

	if handler == nil {
		return fmt.Errorf("no consumer for job kind %s", job.Kind)
	}

	q.wg.Add(1)
	go q.processJob(handler, job)
	return nil
}

func (q *InMemoryQueue) processJob(handler Handler, job Job) {
	defer q.wg.Done()

	for attempt := 0; ; attempt++ {
		err := handler(context.Background(), job)
		if err == nil {
			return
		}

		if !Retryable(err) {
			log.Error().Err(err).Str("kind", string(job.Kind)).Int("campaign_id", job.CampaignID).
				Msg("job failed, not retryable")
			return
		}

		log.Warn().Err(err).Str("kind", string(job.Kind)).Int("campaign_id", job.CampaignID).
			Int("attempt", attempt+1).Int("max_retries", q.maxRetries).Msg("job failed")

		if attempt >= q.maxRetries {
			log.Error().Str("kind", string(job.Kind)).Int("campaign_id", job.CampaignID).
				Msg("job permanently failed")
			return
		}

		// Backoff before retry.
		time.Sleep(time.Duration(attempt+1) * 50 * time.Millisecond)
	}
}

// Wait blocks until every published job has finished. Test helper.
func (q *InMemoryQueue) Wait() {
	q.wg.Wait()
}
