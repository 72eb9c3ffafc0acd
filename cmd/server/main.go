// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/unclebandit/acumbamail-sync/internal/acumbamail"
	"github.com/unclebandit/acumbamail-sync/internal/config"
	"github.com/unclebandit/acumbamail-sync/internal/controller"
	"github.com/unclebandit/acumbamail-sync/internal/db"
	"github.com/unclebandit/acumbamail-sync/internal/handler"
	"github.com/unclebandit/acumbamail-sync/internal/queue"
	"github.com/unclebandit/acumbamail-sync/internal/repository"
	"github.com/unclebandit/acumbamail-sync/internal/service"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Init DB
	db.Init(cfg.DatabaseURL)
	defer db.DB.Close()
	if err := db.Migrate(db.DB); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	userRepo := &repository.UserRepository{DB: db.DB}
	listRepo := &repository.ListRepository{DB: db.DB}
	subscriberRepo := &repository.SubscriberRepository{DB: db.DB}
	templateRepo := &repository.TemplateRepository{DB: db.DB}
	campaignRepo := &repository.CampaignRepository{DB: db.DB}
	syncRunRepo := &repository.SyncRunRepository{DB: db.DB}

	newClient := service.NewClientFactory(cfg.AcumbamailBaseURL, cfg.AcumbamailTimeout)

	syncService := &service.SyncService{
		UserRepo:       userRepo,
		ListRepo:       listRepo,
		SubscriberRepo: subscriberRepo,
		TemplateRepo:   templateRepo,
		CampaignRepo:   campaignRepo,
		SyncRunRepo:    syncRunRepo,
		Lock:           &repository.SyncLockRepository{DB: db.DB},
		NewClient:      newClient,
	}
	campaignService := &service.CampaignService{
		UserRepo:       userRepo,
		ListRepo:       listRepo,
		SubscriberRepo: subscriberRepo,
		TemplateRepo:   templateRepo,
		CampaignRepo:   campaignRepo,
		NewClient:      newClient,
		Sender:         acumbamail.Sender{Name: cfg.AcumbamailFromName, Email: cfg.AcumbamailFromEmail},
	}
	templateService := &service.TemplateService{
		UserRepo:     userRepo,
		TemplateRepo: templateRepo,
		NewClient:    newClient,
	}
	listService := &service.ListService{
		UserRepo:       userRepo,
		ListRepo:       listRepo,
		SubscriberRepo: subscriberRepo,
		NewClient:      newClient,
	}
	connectionService := &service.ConnectionService{
		UserRepo:  userRepo,
		NewClient: newClient,
	}

	q := startQueue(ctx, cfg, syncService)
	defer func() {
		if err := q.Close(); err != nil {
			log.Println("⚠️ failed to close queue:", err)
		}
	}()

	router := controller.NewRouter(controller.Routes{
		Connection:      &controller.ConnectionController{ConnectionService: connectionService},
		Sync:            &controller.SyncController{SyncService: syncService, Queue: q},
		Campaigns:       &controller.CampaignController{CampaignService: campaignService},
		Templates:       &controller.TemplateController{TemplateService: templateService},
		Lists:           &controller.ListController{ListService: listService},
		CampaignHandler: &handler.CampaignHandler{Service: campaignService},
		ListHandler:     &handler.ListHandler{Repo: listRepo},
		TemplateHandler: &handler.TemplateHandler{Service: templateService},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server running on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Println("⚠️ graceful shutdown failed:", err)
	}
	log.Println("👋 Server stopped")
}

// startQueue publishes to RabbitMQ when AMQP_URL is set. Otherwise sync jobs
// run in-process on an in-memory queue.
func startQueue(ctx context.Context, cfg *config.Config, syncService *service.SyncService) queue.Queue {
	if cfg.AMQPURL != "" {
		q, err := queue.NewAMQPQueue(cfg.AMQPURL)
		if err != nil {
			log.Fatalf("failed to connect to queue: %v", err)
		}
		log.Println("✅ Publishing sync jobs to RabbitMQ")
		return q
	}

	q := queue.NewInMemoryQueue()
	worker := service.NewSyncWorker(syncService)
	if err := queue.StartSyncSubscriber(ctx, q, worker); err != nil {
		log.Fatalf("failed to start sync subscriber: %v", err)
	}
	log.Println("⚠️ AMQP_URL not set, running sync jobs in-process")
	return q
}
