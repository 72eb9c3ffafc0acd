package model

import "time"

type Subscriber struct {
	ID                     int        `db:"id" json:"id"`
	UserID                 int        `db:"user_id" json:"user_id"`
	ListID                 int        `db:"list_id" json:"list_id"`
	AcumbamailSubscriberID string     `db:"acumbamail_subscriber_id" json:"acumbamail_subscriber_id"`
	Email                  string     `db:"email" json:"email"`
	FirstName              *string    `db:"first_name" json:"first_name,omitempty"`
	LastName               *string    `db:"last_name" json:"last_name,omitempty"`
	Status                 string     `db:"status" json:"status"`
	CreatedAt              time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt              *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}
