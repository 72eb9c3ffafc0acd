package service

import (
	"context"
	"errors"
	"log"

	appErrors "github.com/unclebandit/acumbamail-sync/internal/errors"
	"github.com/unclebandit/acumbamail-sync/internal/model"
)

// Syncer is the part of SyncService the worker drives.
type Syncer interface {
	Run(ctx context.Context, userID int, trigger string) (*model.SyncReport, error)
}

// SyncJob asks for one user's account to be synced.
type SyncJob struct {
	UserID  int    `json:"user_id"`
	Trigger string `json:"trigger"`
}

// SyncWorker runs the sync jobs a queue delivers.
type SyncWorker struct {
	Syncer Syncer
}

func NewSyncWorker(syncer Syncer) *SyncWorker {
	return &SyncWorker{Syncer: syncer}
}

// Process runs one job. Jobs for unconfigured users or already-running syncs are skipped.
func (w *SyncWorker) Process(ctx context.Context, job SyncJob) error {
	trigger := job.Trigger
	if trigger == "" {
		trigger = TriggerQueued
	}

	_, err := w.Syncer.Run(ctx, job.UserID, trigger)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, appErrors.ErrNotConfigured), appErrors.IsNotFound(err):
		log.Printf("⚠️ [Worker] skipping sync for user %d: %v", job.UserID, err)
		return nil
	default:
		log.Printf("❌ [Worker] sync for user %d failed: %v", job.UserID, err)
		return err
	}
}
