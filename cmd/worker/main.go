package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/unclebandit/acumbamail-sync/internal/config"
	"github.com/unclebandit/acumbamail-sync/internal/db"
	"github.com/unclebandit/acumbamail-sync/internal/queue"
	"github.com/unclebandit/acumbamail-sync/internal/repository"
	"github.com/unclebandit/acumbamail-sync/internal/service"
)

func main() {
	cfg := config.Load()
	if cfg.AMQPURL == "" {
		log.Fatal("AMQP_URL is required for the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to DB
	db.Init(cfg.DatabaseURL)
	defer db.DB.Close()

	// Repositories
	userRepo := &repository.UserRepository{DB: db.DB}
	syncService := &service.SyncService{
		UserRepo:       userRepo,
		ListRepo:       &repository.ListRepository{DB: db.DB},
		SubscriberRepo: &repository.SubscriberRepository{DB: db.DB},
		TemplateRepo:   &repository.TemplateRepository{DB: db.DB},
		CampaignRepo:   &repository.CampaignRepository{DB: db.DB},
		SyncRunRepo:    &repository.SyncRunRepository{DB: db.DB},
		Lock:           &repository.SyncLockRepository{DB: db.DB},
		NewClient:      service.NewClientFactory(cfg.AcumbamailBaseURL, cfg.AcumbamailTimeout),
	}

	// Connect to RabbitMQ
	q, err := queue.NewAMQPQueue(cfg.AMQPURL)
	if err != nil {
		log.Fatal("Failed to connect to RabbitMQ:", err)
	}
	defer q.Close()

	worker := service.NewSyncWorker(syncService)
	if err := queue.StartSyncSubscriber(ctx, q, worker); err != nil {
		log.Fatal("Failed to register consumer:", err)
	}

	scheduler := service.NewSyncScheduler(userRepo, func(job service.SyncJob) error {
		return q.Publish(queue.SyncTopic, job)
	}, cfg.SyncInterval)
	scheduler.Start(ctx)

	log.Println("Worker running, waiting for sync jobs...")
	<-ctx.Done()
	log.Println("Worker stopped")
}
