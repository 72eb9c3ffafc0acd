package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	appErrors "github.com/unclebandit/acumbamail-sync/internal/errors"
	"github.com/unclebandit/acumbamail-sync/internal/model"
)

type TemplateRepositoryInterface interface {
	FindByRemoteIDs(ctx context.Context, userID int, remoteIDs []string) (map[string]*model.EmailTemplate, error)
	FindByName(ctx context.Context, userID int, name string) (*model.EmailTemplate, error)
	GetByID(ctx context.Context, userID, id int) (*model.EmailTemplate, error)
	ListByUser(ctx context.Context, userID int) ([]model.EmailTemplate, error)
	Create(ctx context.Context, t *model.EmailTemplate) error
	UpdateHTML(ctx context.Context, id int, html string) error
}

type TemplateRepository struct {
	DB *sql.DB
}

const templateColumns = `id, user_id, acumbamail_template_id, name, description, html_content, category, created_at, updated_at`

func scanTemplate(row interface{ Scan(...any) error }, t *model.EmailTemplate) error {
	return row.Scan(&t.ID, &t.UserID, &t.AcumbamailTemplateID, &t.Name, &t.Description,
		&t.HTMLContent, &t.Category, &t.CreatedAt, &t.UpdatedAt)
}

func (r *TemplateRepository) findOne(ctx context.Context, query string, args ...any) (*model.EmailTemplate, error) {
	var t model.EmailTemplate
	if err := scanTemplate(r.DB.QueryRowContext(ctx, query, args...), &t); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// FindByRemoteIDs resolves a set of remote ids in one query, keyed by remote id.
func (r *TemplateRepository) FindByRemoteIDs(ctx context.Context, userID int, remoteIDs []string) (map[string]*model.EmailTemplate, error) {
	found := map[string]*model.EmailTemplate{}
	if len(remoteIDs) == 0 {
		return found, nil
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+templateColumns+` FROM email_templates WHERE user_id=$1 AND acumbamail_template_id = ANY($2)`,
		userID, pq.Array(remoteIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		t := &model.EmailTemplate{}
		if err := scanTemplate(rows, t); err != nil {
			return nil, err
		}
		if t.AcumbamailTemplateID != nil {
			found[*t.AcumbamailTemplateID] = t
		}
	}
	return found, rows.Err()
}

func (r *TemplateRepository) FindByName(ctx context.Context, userID int, name string) (*model.EmailTemplate, error) {
	return r.findOne(ctx,
		`SELECT `+templateColumns+` FROM email_templates WHERE user_id=$1 AND name=$2 ORDER BY id LIMIT 1`,
		userID, name)
}

func (r *TemplateRepository) GetByID(ctx context.Context, userID, id int) (*model.EmailTemplate, error) {
	t, err := r.findOne(ctx,
		`SELECT `+templateColumns+` FROM email_templates WHERE user_id=$1 AND id=$2`, userID, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, appErrors.NewTemplateNotFound(id)
	}
	return t, nil
}

func (r *TemplateRepository) ListByUser(ctx context.Context, userID int) ([]model.EmailTemplate, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+templateColumns+` FROM email_templates WHERE user_id=$1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := []model.EmailTemplate{}
	for rows.Next() {
		var t model.EmailTemplate
		if err := scanTemplate(rows, &t); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (r *TemplateRepository) Create(ctx context.Context, t *model.EmailTemplate) error {
	if t.Category == "" {
		t.Category = model.TemplateCategoryGeneral
	}
	err := r.DB.QueryRowContext(ctx, `
        INSERT INTO email_templates (user_id, acumbamail_template_id, name, description, html_content, category)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at
    `, t.UserID, t.AcumbamailTemplateID, t.Name, t.Description, t.HTMLContent, t.Category,
	).Scan(&t.ID, &t.CreatedAt)
	return mapWriteError(err)
}

func (r *TemplateRepository) UpdateHTML(ctx context.Context, id int, html string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE email_templates SET html_content=$1, updated_at=NOW() WHERE id=$2`, html, id)
	return err
}

var _ TemplateRepositoryInterface = (*TemplateRepository)(nil)
