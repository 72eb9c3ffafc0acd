package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/unclebandit/acumbamail-sync/internal/model"
)

type SyncRunRepositoryInterface interface {
	Create(ctx context.Context, run *model.SyncRun) error
	ListByUser(ctx context.Context, userID, limit int) ([]model.SyncRun, error)
}

// SyncRunRepository persists finished sync reports as JSONB.
type SyncRunRepository struct {
	DB *sql.DB
}

func (r *SyncRunRepository) Create(ctx context.Context, run *model.SyncRun) error {
	report, err := json.Marshal(run.Report)
	if err != nil {
		return fmt.Errorf("encode sync report: %w", err)
	}
	query := `
        INSERT INTO sync_runs (user_id, trigger, report, started_at, finished_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `
	return r.DB.QueryRowContext(ctx, query,
		run.UserID, run.Trigger, report, run.StartedAt, run.FinishedAt,
	).Scan(&run.ID)
}

func (r *SyncRunRepository) ListByUser(ctx context.Context, userID, limit int) ([]model.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.DB.QueryContext(ctx, `
        SELECT id, user_id, trigger, report, started_at, finished_at
        FROM sync_runs
        WHERE user_id=$1
        ORDER BY started_at DESC
        LIMIT $2
    `, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []model.SyncRun{}
	for rows.Next() {
		var (
			run    model.SyncRun
			report []byte
		)
		if err := rows.Scan(&run.ID, &run.UserID, &run.Trigger, &report, &run.StartedAt, &run.FinishedAt); err != nil {
			return nil, err
		}
		run.Report = &model.SyncReport{}
		if err := json.Unmarshal(report, run.Report); err != nil {
			return nil, fmt.Errorf("decode sync report %d: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

var _ SyncRunRepositoryInterface = (*SyncRunRepository)(nil)
