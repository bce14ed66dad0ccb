// cmd/worker/main.go
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/streadway/amqp"

	"github.com/unclebandit/campaign-manager-backend/internal/config"
	"github.com/unclebandit/campaign-manager-backend/internal/db"
	"github.com/unclebandit/campaign-manager-backend/internal/notify"
	"github.com/unclebandit/campaign-manager-backend/internal/queue"
	"github.com/unclebandit/campaign-manager-backend/internal/repository"
	"github.com/unclebandit/campaign-manager-backend/internal/service"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("no .env file found, relying on OS environment variables")
	}

	cfg := config.Get()

	conn, err := db.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database init failed")
	}
	defer conn.Close()

	campaignRepo := &repository.CampaignRepository{DB: conn}
	recipientRepo := &repository.RecipientRepository{DB: conn}
	deliveryRepo := &repository.DeliveryRepository{DB: conn}

	runner := &service.JobRunner{
		Linking: &service.LinkingService{
			CampaignRepo:  campaignRepo,
			RecipientRepo: recipientRepo,
			Log:           log.With().Str("component", "linking").Logger(),
		},
		Dispatch: &service.DispatchService{
			CampaignRepo: campaignRepo,
			DeliveryRepo: deliveryRepo,
			Notifiers:    notify.BuildRegistry(cfg.ResendAPIKey, cfg.EmailFrom),
			Channel:      cfg.DefaultChannel,
			Concurrency:  cfg.DispatchConcurrency,
			SendTimeout:  cfg.SendTimeout,
			Log:          log.With().Str("component", "dispatch").Logger(),
		},
		JobTimeout: cfg.JobTimeout,
		Log:        log.With().Str("component", "jobs").Logger(),
	}

	amqpConn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to AMQP broker")
	}
	defer amqpConn.Close()

	q, err := queue.NewAMQPQueue(amqpConn, cfg.QueueName, cfg.JobMaxRetries)
	if err != nil {
		log.Fatal().Err(err).Msg("queue declare failed")
	}
	defer q.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Str("queue", cfg.QueueName).Msg("worker running, waiting for jobs")
	if err := q.Consume(ctx, runner.Handle); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("consumer stopped")
	}
	log.Info().Msg("worker shut down")
}
