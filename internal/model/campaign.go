package model

import "time"

const (
	CampaignStatusDraft = "draft"
	CampaignStatusSent  = "sent"
)

// EmailCampaign is the local record of an Acumbamail campaign. SentAt is set if
// and only if Status is "sent".
type EmailCampaign struct {
	ID                        int        `db:"id" json:"id"`
	UserID                    int        `db:"user_id" json:"user_id"`
	AcumbamailCampaignID      string     `db:"acumbamail_campaign_id" json:"acumbamail_campaign_id"`
	Name                      string     `db:"name" json:"name"`
	Subject                   string     `db:"subject" json:"subject"`
	Status                    string     `db:"status" json:"status"`
	ListID                    *int       `db:"list_id" json:"list_id,omitempty"`
	TemplateID                *int       `db:"template_id" json:"template_id,omitempty"`
	TargetAllSubscribers      bool       `db:"target_all_subscribers" json:"target_all_subscribers"`
	TargetSpecificSubscribers *string    `db:"target_specific_subscribers" json:"target_specific_subscribers,omitempty"`
	TargetFilters             *string    `db:"target_filters" json:"target_filters,omitempty"`
	DispatchMode              string     `db:"dispatch_mode" json:"dispatch_mode,omitempty"`
	SentCount                 int        `db:"sent_count" json:"sent_count"`
	ErrorCount                int        `db:"error_count" json:"error_count"`
	SentAt                    *time.Time `db:"sent_at" json:"sent_at,omitempty"`
	CreatedAt                 time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt                 *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// MarkSent records a delivered dispatch.
func (c *EmailCampaign) MarkSent(at time.Time) {
	c.Status = CampaignStatusSent
	c.SentAt = &at
}

// MarkDraft keeps the campaign unsent, clearing any send timestamp.
func (c *EmailCampaign) MarkDraft() {
	c.Status = CampaignStatusDraft
	c.SentAt = nil
}
