package repository

import (
	"context"
	"database/sql"
	"log"
)

// syncLockSpace is the first key of the two-key advisory lock; the user id is the second.
const syncLockSpace = 7310

type SyncLockRepositoryInterface interface {
	TryLock(ctx context.Context, userID int) (unlock func(), ok bool, err error)
}

// SyncLockRepository serialises syncs per user across processes with a
// session-level Postgres advisory lock held on a dedicated connection.
type SyncLockRepository struct {
	DB *sql.DB
}

func (r *SyncLockRepository) TryLock(ctx context.Context, userID int) (func(), bool, error) {
	conn, err := r.DB.Conn(ctx)
	if err != nil {
		return nil, false, err
	}

	var ok bool
	if err := conn.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1, $2)`, syncLockSpace, userID).Scan(&ok); err != nil {
		conn.Close()
		return nil, false, err
	}
	if !ok {
		conn.Close()
		return nil, false, nil
	}

	unlock := func() {
		// ctx may already be cancelled when the sync returns.
		if _, err := conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1, $2)`, syncLockSpace, userID); err != nil {
			log.Printf("⚠️ [Sync] user %d: failed to release sync lock: %v", userID, err)
		}
		conn.Close()
	}
	return unlock, true, nil
}

var _ SyncLockRepositoryInterface = (*SyncLockRepository)(nil)
