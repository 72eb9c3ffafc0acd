package repository

import (
	"context"
	"database/sql"

	appErrors "github.com/unclebandit/acumbamail-sync/internal/errors"
	"github.com/unclebandit/acumbamail-sync/internal/model"
)

type ListRepositoryInterface interface {
	FindByRemoteID(ctx context.Context, userID int, remoteID string) (*model.AcumbamailList, error)
	GetByID(ctx context.Context, userID, id int) (*model.AcumbamailList, error)
	ListByUser(ctx context.Context, userID int) ([]model.AcumbamailList, error)
	Create(ctx context.Context, l *model.AcumbamailList) error
}

type ListRepository struct {
	DB *sql.DB
}

const listColumns = `id, user_id, acumbamail_list_id, name, description, created_at`

func scanList(row interface{ Scan(...any) error }, l *model.AcumbamailList) error {
	return row.Scan(&l.ID, &l.UserID, &l.AcumbamailListID, &l.Name, &l.Description, &l.CreatedAt)
}

// FindByRemoteID returns nil, nil when the list has not been seen yet.
func (r *ListRepository) FindByRemoteID(ctx context.Context, userID int, remoteID string) (*model.AcumbamailList, error) {
	var l model.AcumbamailList
	err := scanList(r.DB.QueryRowContext(ctx,
		`SELECT `+listColumns+` FROM acumbamail_lists WHERE user_id=$1 AND acumbamail_list_id=$2`,
		userID, remoteID,
	), &l)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

func (r *ListRepository) GetByID(ctx context.Context, userID, id int) (*model.AcumbamailList, error) {
	var l model.AcumbamailList
	err := scanList(r.DB.QueryRowContext(ctx,
		`SELECT `+listColumns+` FROM acumbamail_lists WHERE user_id=$1 AND id=$2`,
		userID, id,
	), &l)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewListNotFound(id)
		}
		return nil, err
	}
	return &l, nil
}

func (r *ListRepository) ListByUser(ctx context.Context, userID int) ([]model.AcumbamailList, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+listColumns+` FROM acumbamail_lists WHERE user_id=$1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lists := []model.AcumbamailList{}
	for rows.Next() {
		var l model.AcumbamailList
		if err := scanList(rows, &l); err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

func (r *ListRepository) Create(ctx context.Context, l *model.AcumbamailList) error {
	err := r.DB.QueryRowContext(ctx, `
        INSERT INTO acumbamail_lists (user_id, acumbamail_list_id, name, description)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at
    `, l.UserID, l.AcumbamailListID, l.Name, l.Description).Scan(&l.ID, &l.CreatedAt)
	return mapWriteError(err)
}

var _ ListRepositoryInterface = (*ListRepository)(nil)
