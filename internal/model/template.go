package model

import "time"

const (
	TemplateCategoryImported = "imported"
	TemplateCategoryGeneral  = "general"
)

type EmailTemplate struct {
	ID                   int        `db:"id" json:"id"`
	UserID               int        `db:"user_id" json:"user_id"`
	AcumbamailTemplateID *string    `db:"acumbamail_template_id" json:"acumbamail_template_id,omitempty"`
	Name                 string     `db:"name" json:"name"`
	Description          *string    `db:"description" json:"description,omitempty"`
	HTMLContent          string     `db:"html_content" json:"html_content"`
	Category             string     `db:"category" json:"category"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt            *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}
