package repository

import (
	"context"
	"database/sql"
	"fmt"

	appErrors "github.com/unclebandit/acumbamail-sync/internal/errors"
	"github.com/unclebandit/acumbamail-sync/internal/model"
)

type CampaignRepositoryInterface interface {
	FindByRemoteID(ctx context.Context, userID int, remoteID string) (*model.EmailCampaign, error)
	GetByID(ctx context.Context, userID, id int) (*model.EmailCampaign, error)
	ListByUser(ctx context.Context, userID, offset, limit int, status string) ([]*model.EmailCampaign, int, error)
	Create(ctx context.Context, c *model.EmailCampaign) error
	UpdateDispatchOutcome(ctx context.Context, c *model.EmailCampaign) error
}

type CampaignRepository struct {
	DB *sql.DB
}

const campaignColumns = `id, user_id, acumbamail_campaign_id, name, subject, status, list_id, template_id,
        target_all_subscribers, target_specific_subscribers, target_filters,
        dispatch_mode, sent_count, error_count, sent_at, created_at, updated_at`

func scanCampaign(row interface{ Scan(...any) error }, c *model.EmailCampaign) error {
	return row.Scan(&c.ID, &c.UserID, &c.AcumbamailCampaignID, &c.Name, &c.Subject, &c.Status,
		&c.ListID, &c.TemplateID, &c.TargetAllSubscribers, &c.TargetSpecificSubscribers, &c.TargetFilters,
		&c.DispatchMode, &c.SentCount, &c.ErrorCount, &c.SentAt, &c.CreatedAt, &c.UpdatedAt)
}

// ====================== Campaign CRUD ======================

func (r *CampaignRepository) Create(ctx context.Context, c *model.EmailCampaign) error {
	if c.Status == "" {
		c.Status = model.CampaignStatusDraft
	}
	query := `
        INSERT INTO email_campaigns (user_id, acumbamail_campaign_id, name, subject, status, list_id, template_id,
            target_all_subscribers, target_specific_subscribers, target_filters, sent_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING id, created_at
    `
	err := r.DB.QueryRowContext(ctx, query,
		c.UserID, c.AcumbamailCampaignID, c.Name, c.Subject, c.Status, c.ListID, c.TemplateID,
		c.TargetAllSubscribers, c.TargetSpecificSubscribers, c.TargetFilters, c.SentAt,
	).Scan(&c.ID, &c.CreatedAt)
	return mapWriteError(err)
}

// UpdateDispatchOutcome stores the remote id, status and counters after a dispatch.
func (r *CampaignRepository) UpdateDispatchOutcome(ctx context.Context, c *model.EmailCampaign) error {
	query := `
        UPDATE email_campaigns
        SET acumbamail_campaign_id=$1, status=$2, sent_at=$3, dispatch_mode=$4,
            sent_count=$5, error_count=$6, updated_at=NOW()
        WHERE id=$7 AND user_id=$8
        RETURNING updated_at
    `
	err := r.DB.QueryRowContext(ctx, query,
		c.AcumbamailCampaignID, c.Status, c.SentAt, c.DispatchMode, c.SentCount, c.ErrorCount, c.ID, c.UserID,
	).Scan(&c.UpdatedAt)
	if err == sql.ErrNoRows {
		return appErrors.NewCampaignNotFound(c.ID)
	}
	return mapWriteError(err)
}

func (r *CampaignRepository) FindByRemoteID(ctx context.Context, userID int, remoteID string) (*model.EmailCampaign, error) {
	var c model.EmailCampaign
	err := scanCampaign(r.DB.QueryRowContext(ctx,
		`SELECT `+campaignColumns+` FROM email_campaigns WHERE user_id=$1 AND acumbamail_campaign_id=$2`,
		userID, remoteID,
	), &c)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *CampaignRepository) GetByID(ctx context.Context, userID, id int) (*model.EmailCampaign, error) {
	var c model.EmailCampaign
	err := scanCampaign(r.DB.QueryRowContext(ctx,
		`SELECT `+campaignColumns+` FROM email_campaigns WHERE user_id=$1 AND id=$2`, userID, id,
	), &c)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	return &c, nil
}

// ListByUser pages through a user's campaigns, newest first, optionally filtered by status.
func (r *CampaignRepository) ListByUser(ctx context.Context, userID, offset, limit int, status string) ([]*model.EmailCampaign, int, error) {
	where := ` WHERE user_id=$1`
	args := []any{userID}
	argPos := 2

	if status != "" {
		where += fmt.Sprintf(" AND status=$%d", argPos)
		args = append(args, status)
		argPos++
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM email_campaigns`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + campaignColumns + ` FROM email_campaigns` + where +
		fmt.Sprintf(" ORDER BY id DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	rows, err := r.DB.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	campaigns := []*model.EmailCampaign{}
	for rows.Next() {
		c := &model.EmailCampaign{}
		if err := scanCampaign(rows, c); err != nil {
			return nil, 0, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, total, rows.Err()
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
