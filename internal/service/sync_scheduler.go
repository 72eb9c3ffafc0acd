package service

import (
	"context"
	"log"
	"time"

	"github.com/unclebandit/acumbamail-sync/internal/model"
)

// ConfiguredUsers lists the users that can be synced.
type ConfiguredUsers interface {
	ListConfigured(ctx context.Context) ([]model.User, error)
}

// SyncScheduler enqueues a sync for every configured user on a fixed interval.
type SyncScheduler struct {
	Users    ConfiguredUsers
	Enqueue  func(job SyncJob) error
	Interval time.Duration
	stopChan chan struct{}
}

func NewSyncScheduler(users ConfiguredUsers, enqueue func(job SyncJob) error, interval time.Duration) *SyncScheduler {
	return &SyncScheduler{
		Users:    users,
		Enqueue:  enqueue,
		Interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the scheduler loop. A non-positive interval disables it.
func (s *SyncScheduler) Start(ctx context.Context) {
	if s.Interval <= 0 {
		log.Println("[SyncScheduler] interval not set, scheduler disabled")
		return
	}

	log.Printf("[SyncScheduler] Starting periodic sync (interval: %s)", s.Interval)

	go func() {
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.Tick(ctx)
			case <-ctx.Done():
				return
			case <-s.stopChan:
				log.Println("[SyncScheduler] Scheduler stopped")
				return
			}
		}
	}()
}

func (s *SyncScheduler) Stop() {
	close(s.stopChan)
}

// Tick enqueues one scheduled sync per configured user and returns how many were queued.
func (s *SyncScheduler) Tick(ctx context.Context) int {
	users, err := s.Users.ListConfigured(ctx)
	if err != nil {
		log.Printf("[SyncScheduler] Error listing configured users: %v", err)
		return 0
	}

	queued := 0
	for _, u := range users {
		if err := s.Enqueue(SyncJob{UserID: u.ID, Trigger: TriggerScheduled}); err != nil {
			log.Printf("[SyncScheduler] Error enqueueing sync for user %d: %v", u.ID, err)
			continue
		}
		queued++
	}
	if queued > 0 {
		log.Printf("[SyncScheduler] Enqueued %d syncs", queued)
	}
	return queued
}
