package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/unclebandit/acumbamail-sync/internal/service"
)

// JobProcessor runs a single sync job.
type JobProcessor interface {
	Process(ctx context.Context, job service.SyncJob) error
}

// StartSyncSubscriber feeds sync jobs from the queue to the processor.
func StartSyncSubscriber(ctx context.Context, q Queue, worker JobProcessor) error {
	err := q.Subscribe(SyncTopic, func(payload any) error {
		job, err := DecodeSyncJob(payload)
		if err != nil {
			log.Println("⚠️ [Queue] invalid sync payload:", err)
			return nil // no retry
		}
		log.Printf("📩 [Queue] processing sync for user %d (%s)", job.UserID, job.Trigger)
		return worker.Process(ctx, job)
	})
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", SyncTopic, err)
	}
	return nil
}

// DecodeSyncJob accepts the payload shapes the queues deliver.
func DecodeSyncJob(payload any) (service.SyncJob, error) {
	switch p := payload.(type) {
	case service.SyncJob:
		return p, nil
	case *service.SyncJob:
		if p == nil {
			return service.SyncJob{}, fmt.Errorf("nil job")
		}
		return *p, nil
	case int:
		return service.SyncJob{UserID: p}, nil
	case []byte:
		var job service.SyncJob
		if err := json.Unmarshal(p, &job); err != nil {
			return service.SyncJob{}, err
		}
		if job.UserID <= 0 {
			return service.SyncJob{}, fmt.Errorf("missing user_id")
		}
		return job, nil
	}
	return service.SyncJob{}, fmt.Errorf("unexpected payload type %T", payload)
}
