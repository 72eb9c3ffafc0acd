package controller

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/unclebandit/acumbamail-sync/internal/handler"
	"github.com/unclebandit/acumbamail-sync/internal/model"
	"github.com/unclebandit/acumbamail-sync/internal/queue"
	"github.com/unclebandit/acumbamail-sync/internal/service"
)

type Syncer interface {
	SyncAll(ctx context.Context, userID int) (*model.SyncReport, error)
	History(ctx context.Context, userID, limit int) ([]model.SyncRun, error)
}

type SyncController struct {
	SyncService Syncer
	Queue       queue.Publisher
}

// Sync runs a full reconciliation inline and returns the report.
func (c *SyncController) Sync(w http.ResponseWriter, r *http.Request) {
	report, err := c.SyncService.SyncAll(r.Context(), handler.UserID(r))
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	message := fmt.Sprintf("Synced %d new and %d updated items", report.TotalCreated(), report.TotalUpdated())
	handler.WriteOK(w, report, message)
}

// SyncAsync enqueues a sync for the background worker.
func (c *SyncController) SyncAsync(w http.ResponseWriter, r *http.Request) {
	userID := handler.UserID(r)
	job := service.SyncJob{UserID: userID, Trigger: service.TriggerQueued}
	if err := c.Queue.Publish(queue.SyncTopic, job); err != nil {
		log.Println("⚠️ failed to enqueue sync:", err)
		handler.WriteError(w, fmt.Errorf("enqueue sync: %w", err))
		return
	}
	handler.WriteJSON(w, http.StatusAccepted, model.OK(job, "sync queued"))
}

func (c *SyncController) History(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := c.SyncService.History(r.Context(), handler.UserID(r), limit)
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	handler.WriteOK(w, runs, "")
}
