package queue

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/streadway/amqp"
)

// AMQPQueue is the durable broker-backed queue used between the API server
// and the worker binary.
type AMQPQueue struct {
	ch         *amqp.Channel
	name       string
	maxRetries int
}

func NewAMQPQueue(conn *amqp.Connection, name string, maxRetries int) (*AMQPQueue, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	_, err = ch.QueueDeclare(
		name,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, err
	}

	return &AMQPQueue{ch: ch, name: name, maxRetries: maxRetries}, nil
}

func (q *AMQPQueue) Publish(job Job) error {
	return q.publish(job, 0)
}

func (q *AMQPQueue) publish(job Job, retryCount int) error {
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}

	return q.ch.Publish(
		"", q.name, false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Headers:      amqp.Table{"x-retry-count": int32(retryCount)},
			Body:         body,
		},
	)
}

// Consume blocks until ctx is cancelled, running the handler once per
// delivery with manual acks. Failed retryable jobs are republished with an
// incremented retry header so the count survives redelivery.
func (q *AMQPQueue) Consume(ctx context.Context, handler Handler) error {
	msgs, err := q.ch.Consume(
		q.name,
		"worker-"+uuid.New().String()[:8],
		false, // manual ack for at-least-once delivery
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return amqp.ErrClosed
			}
			q.handleDelivery(ctx, d, handler)
		}
	}
}

func (q *AMQPQueue) handleDelivery(ctx context.Context, d amqp.Delivery, handler Handler) {
	var job Job
	if err := json.Unmarshal(d.Body, &job); err != nil {
		log.Error().Err(err).Msg("invalid job payload, dropping")
		_ = d.Ack(false)
		return
	}

	err := handler(ctx, job)
	if err == nil {
		_ = d.Ack(false)
		return
	}

	retryCount := 0
	if v, ok := d.Headers["x-retry-count"].(int32); ok {
		retryCount = int(v)
	}

	if Retryable(err) && retryCount < q.maxRetries {
		log.Warn().Err(err).Str("kind", string(job.Kind)).Int("campaign_id", job.CampaignID).
			Int("retry", retryCount+1).Msg("job failed, requeueing")
		if pubErr := q.publish(job, retryCount+1); pubErr != nil {
			// Fall back to a broker requeue so the job is not lost.
			_ = d.Nack(false, true)
			return
		}
		_ = d.Ack(false)
		return
	}

	log.Error().Err(err).Str("kind", string(job.Kind)).Int("campaign_id", job.CampaignID).
		Msg("job permanently failed")
	_ = d.Ack(false)
}

func (q *AMQPQueue) Close() error {
	return q.ch.Close()
}
