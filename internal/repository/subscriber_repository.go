package repository

import (
	"context"
	"database/sql"

	"github.com/unclebandit/acumbamail-sync/internal/model"
)

type SubscriberRepositoryInterface interface {
	FindByRemoteID(ctx context.Context, userID int, remoteID string) (*model.Subscriber, error)
	Create(ctx context.Context, s *model.Subscriber) error
	Update(ctx context.Context, s *model.Subscriber) error
	ListByList(ctx context.Context, userID, listID int) ([]model.Subscriber, error)
}

// SubscriberRepository is the concrete implementation
type SubscriberRepository struct {
	DB *sql.DB
}

const subscriberColumns = `id, user_id, list_id, acumbamail_subscriber_id, email, first_name, last_name, status, created_at, updated_at`

func scanSubscriber(row interface{ Scan(...any) error }, s *model.Subscriber) error {
	return row.Scan(&s.ID, &s.UserID, &s.ListID, &s.AcumbamailSubscriberID, &s.Email,
		&s.FirstName, &s.LastName, &s.Status, &s.CreatedAt, &s.UpdatedAt)
}

func (r *SubscriberRepository) FindByRemoteID(ctx context.Context, userID int, remoteID string) (*model.Subscriber, error) {
	var s model.Subscriber
	err := scanSubscriber(r.DB.QueryRowContext(ctx,
		`SELECT `+subscriberColumns+` FROM subscribers WHERE user_id=$1 AND acumbamail_subscriber_id=$2`,
		userID, remoteID,
	), &s)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // not seen yet
		}
		return nil, err
	}
	return &s, nil
}

func (r *SubscriberRepository) Create(ctx context.Context, s *model.Subscriber) error {
	err := r.DB.QueryRowContext(ctx, `
        INSERT INTO subscribers (user_id, list_id, acumbamail_subscriber_id, email, first_name, last_name, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at
    `, s.UserID, s.ListID, s.AcumbamailSubscriberID, s.Email, s.FirstName, s.LastName, s.Status,
	).Scan(&s.ID, &s.CreatedAt)
	return mapWriteError(err)
}

// Update overwrites the remote-owned fields of an existing subscriber.
func (r *SubscriberRepository) Update(ctx context.Context, s *model.Subscriber) error {
	return r.DB.QueryRowContext(ctx, `
        UPDATE subscribers
        SET email=$1, first_name=$2, last_name=$3, status=$4, updated_at=NOW()
        WHERE id=$5
        RETURNING updated_at
    `, s.Email, s.FirstName, s.LastName, s.Status, s.ID).Scan(&s.UpdatedAt)
}

// ListByList fetches the locally known subscribers of one list.
func (r *SubscriberRepository) ListByList(ctx context.Context, userID, listID int) ([]model.Subscriber, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+subscriberColumns+` FROM subscribers WHERE user_id=$1 AND list_id=$2 ORDER BY id`,
		userID, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subscribers := []model.Subscriber{}
	for rows.Next() {
		var s model.Subscriber
		if err := scanSubscriber(rows, &s); err != nil {
			return nil, err
		}
		subscribers = append(subscribers, s)
	}
	return subscribers, rows.Err()
}

var _ SubscriberRepositoryInterface = (*SubscriberRepository)(nil)
