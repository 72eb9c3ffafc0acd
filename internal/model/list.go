package model

import "time"

type AcumbamailList struct {
	ID               int       `db:"id" json:"id"`
	UserID           int       `db:"user_id" json:"user_id"`
	AcumbamailListID string    `db:"acumbamail_list_id" json:"acumbamail_list_id"`
	Name             string    `db:"name" json:"name"`
	Description      string    `db:"description" json:"description"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}
