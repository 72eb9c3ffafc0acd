package repository

import (
	"context"
	"database/sql"

	appErrors "github.com/unclebandit/acumbamail-sync/internal/errors"
	"github.com/unclebandit/acumbamail-sync/internal/model"
)

type UserRepositoryInterface interface {
	GetByID(ctx context.Context, id int) (*model.User, error)
	UpdateAuthToken(ctx context.Context, id int, token string) error
	ListConfigured(ctx context.Context) ([]model.User, error)
}

type UserRepository struct {
	DB *sql.DB
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (*model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, email, acumbamail_auth_token FROM users WHERE id=$1`, id,
	).Scan(&u.ID, &u.Email, &u.AcumbamailAuthToken)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewUserNotFound(id)
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) UpdateAuthToken(ctx context.Context, id int, token string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET acumbamail_auth_token=$1 WHERE id=$2`, token, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.NewUserNotFound(id)
	}
	return nil
}

// ListConfigured returns users that have an Acumbamail token stored.
func (r *UserRepository) ListConfigured(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, `
        SELECT id, email, acumbamail_auth_token
        FROM users
        WHERE acumbamail_auth_token IS NOT NULL AND acumbamail_auth_token <> ''
        ORDER BY id
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.AcumbamailAuthToken); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

var _ UserRepositoryInterface = (*UserRepository)(nil)
