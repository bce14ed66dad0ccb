// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/streadway/amqp"

	"github.com/unclebandit/campaign-manager-backend/internal/config"
	"github.com/unclebandit/campaign-manager-backend/internal/controller"
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
	log.Info().Msg("connected to database")

	campaignRepo := &repository.CampaignRepository{DB: conn}
	recipientRepo := &repository.RecipientRepository{DB: conn}
	groupRepo := &repository.GroupRepository{DB: conn}
	deliveryRepo := &repository.DeliveryRepository{DB: conn}

	// Prefer the AMQP broker; without one, fall back to running jobs
	// in-process on the in-memory queue.
	var q queue.Queue
	if amqpConn, err := amqp.Dial(cfg.AMQPURL); err == nil {
		defer amqpConn.Close()
		aq, err := queue.NewAMQPQueue(amqpConn, cfg.QueueName, cfg.JobMaxRetries)
		if err != nil {
			log.Fatal().Err(err).Msg("queue declare failed")
		}
		q = aq
		log.Info().Str("queue", cfg.QueueName).Msg("connected to AMQP broker")
	} else {
		log.Warn().Err(err).Msg("AMQP unavailable, running jobs in-process")
		mem := queue.NewInMemoryQueue(cfg.JobMaxRetries)
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
		_ = mem.Consume(context.Background(), runner.Handle)
		q = mem
	}

	campaignService := &service.CampaignService{
		CampaignRepo: campaignRepo,
		DeliveryRepo: deliveryRepo,
		Queue:        q,
		Log:          log.With().Str("component", "campaigns").Logger(),
	}
	recipientService := &service.RecipientService{
		RecipientRepo: recipientRepo,
		GroupRepo:     groupRepo,
		Log:           log.With().Str("component", "recipients").Logger(),
	}

	campaignController := &controller.CampaignController{CampaignService: campaignService}
	recipientController := &controller.RecipientController{RecipientService: recipientService}
	groupController := &controller.GroupController{RecipientService: recipientService}

	r := chi.NewRouter()

	// Campaign routes
	r.Post("/campaigns", campaignController.CreateCampaign)
	r.Get("/campaigns", campaignController.ListCampaigns)
	r.Get("/campaigns/{id}", campaignController.GetCampaign)
	r.Post("/campaigns/{id}/recipients", campaignController.AddRecipients)
	r.Post("/campaigns/{id}/send", campaignController.SendCampaign)
	r.Get("/campaigns/{id}/failures", campaignController.ListFailures)

	// Recipient routes
	r.Post("/recipients", recipientController.CreateRecipient)
	r.Get("/recipients", recipientController.ListRecipients)
	r.Patch("/recipients/{id}", recipientController.UpdateRecipient)
	r.Post("/recipients/opt-out", recipientController.OptOut)
	r.Post("/recipients/opt-in", recipientController.OptIn)

	// Group routes
	r.Post("/groups", groupController.CreateGroup)
	r.Get("/groups", groupController.ListGroups)
	r.Patch("/groups/{id}", groupController.UpdateGroup)
	r.Patch("/groups/{id}/recipients", groupController.AddRecipients)

	addr := fmt.Sprintf(":%d", cfg.APIPort)
	log.Info().Str("addr", addr).Msg("server running")
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
