// internal/service/campaign_service.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/unclebandit/acumbamail-sync/internal/acumbamail"
	appErrors "github.com/unclebandit/acumbamail-sync/internal/errors"
	"github.com/unclebandit/acumbamail-sync/internal/model"
	"github.com/unclebandit/acumbamail-sync/internal/repository"
)

const testPrefix = "TEST: "

// fallbackHTML is sent when a campaign has no usable body.
const fallbackHTML = `<html>
  <body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
      <h1 style="color: #2c3e50;">{subject}</h1>
      <p>This is a message from {sender_name}.</p>
      <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
      <p style="font-size: 12px; color: #666; text-align: center;">
        Sent by {sender_name} - {sender_email}<br>
        <a href="*|UNSUB|*" style="color: #666; text-decoration: underline;">Unsubscribe</a>
      </p>
    </div>
  </body>
</html>`

type CampaignService struct {
	UserRepo       repository.UserRepositoryInterface
	ListRepo       repository.ListRepositoryInterface
	SubscriberRepo repository.SubscriberRepositoryInterface
	TemplateRepo   repository.TemplateRepositoryInterface
	CampaignRepo   repository.CampaignRepositoryInterface
	NewClient      ClientFactory
	Sender         acumbamail.Sender
	// Strategies overrides the dispatcher's send order when set.
	Strategies []acumbamail.SendStrategy
	Now        func() time.Time
	NewID      func() string
}

type CreateCampaignInput struct {
	Name                      string          `json:"name"`
	Subject                   string          `json:"subject"`
	HTMLContent               string          `json:"htmlContent"`
	ListID                    int             `json:"listId"`
	TemplateID                *int            `json:"templateId"`
	TargetAllSubscribers      bool            `json:"targetAllSubscribers"`
	TargetSpecificSubscribers *string         `json:"targetSpecificSubscribers"`
	TargetFilters             json.RawMessage `json:"targetFilters"`
}

// CampaignOutcome pairs the stored campaign with what the dispatch did.
type CampaignOutcome struct {
	Campaign *model.EmailCampaign       `json:"campaign"`
	Dispatch *acumbamail.DispatchResult `json:"dispatch"`
}

// CreateCampaign validates the input, stores a local draft and dispatches it.
// The draft survives a failed dispatch.
func (s *CampaignService) CreateCampaign(ctx context.Context, userID int, in CreateCampaignInput) (*CampaignOutcome, error) {
	if err := validateCampaign(in); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.HTMLContent) == "" && in.TemplateID == nil {
		return nil, appErrors.NewValidation("htmlContent", "html content or a template is required")
	}
	return s.createAndDispatch(ctx, userID, in)
}

// SendTestEmail dispatches a TEST-prefixed copy to a list that has known subscribers.
func (s *CampaignService) SendTestEmail(ctx context.Context, userID int, in CreateCampaignInput) (*CampaignOutcome, error) {
	if err := validateCampaign(in); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.HTMLContent) == "" {
		return nil, appErrors.NewValidation("htmlContent", "is required")
	}

	subscribers, err := s.SubscriberRepo.ListByList(ctx, userID, in.ListID)
	if err != nil {
		return nil, err
	}
	if len(subscribers) == 0 {
		return nil, appErrors.NewValidation("listId", "the list has no subscribers")
	}

	in.Name = testPrefix + in.Name
	in.Subject = testPrefix + in.Subject
	in.TemplateID = nil
	return s.createAndDispatch(ctx, userID, in)
}

func validateCampaign(in CreateCampaignInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return appErrors.NewValidation("name", "is required")
	case strings.TrimSpace(in.Subject) == "":
		return appErrors.NewValidation("subject", "is required")
	case in.ListID <= 0:
		return appErrors.NewValidation("listId", "is required")
	}
	return nil
}

func (s *CampaignService) createAndDispatch(ctx context.Context, userID int, in CreateCampaignInput) (*CampaignOutcome, error) {
	user, err := configuredUser(ctx, s.UserRepo, userID)
	if err != nil {
		return nil, err
	}
	list, err := s.ListRepo.GetByID(ctx, userID, in.ListID)
	if err != nil {
		return nil, err
	}

	body, templateID := s.resolveBody(ctx, userID, in)

	campaign := &model.EmailCampaign{
		UserID:                    userID,
		AcumbamailCampaignID:      "temp-" + s.newID(),
		Name:                      in.Name,
		Subject:                   in.Subject,
		Status:                    model.CampaignStatusDraft,
		ListID:                    &list.ID,
		TemplateID:                templateID,
		TargetAllSubscribers:      in.TargetAllSubscribers,
		TargetSpecificSubscribers: in.TargetSpecificSubscribers,
		TargetFilters:             filtersText(in.TargetFilters),
	}
	if err := s.CampaignRepo.Create(ctx, campaign); err != nil {
		return nil, fmt.Errorf("store campaign draft: %w", err)
	}

	dispatcher := acumbamail.NewDispatcher(s.NewClient(user.AuthToken()), s.Sender)
	if s.Strategies != nil {
		dispatcher.Strategies = s.Strategies
	}
	dispatcher.Now = s.now
	dispatcher.NewID = s.newID

	result, err := dispatcher.Dispatch(ctx, acumbamail.DispatchRequest{
		ListID:       list.AcumbamailListID,
		Subject:      in.Subject,
		HTML:         body,
		CampaignName: in.Name,
	})
	if err != nil {
		log.Printf("❌ [Campaigns] campaign %d left as draft: %v", campaign.ID, err)
		return nil, fmt.Errorf("dispatch campaign %d: %w", campaign.ID, err)
	}

	campaign.AcumbamailCampaignID = result.CampaignID
	campaign.DispatchMode = result.Mode
	campaign.SentCount = result.SentCount
	campaign.ErrorCount = result.ErrorCount
	if result.Sent() {
		campaign.MarkSent(s.now())
	} else {
		campaign.MarkDraft()
	}
	if err := s.CampaignRepo.UpdateDispatchOutcome(ctx, campaign); err != nil {
		return nil, fmt.Errorf("store dispatch outcome: %w", err)
	}

	log.Printf("✅ [Campaigns] campaign %d: %s", campaign.ID, result.Message)
	return &CampaignOutcome{Campaign: campaign, Dispatch: result}, nil
}

// resolveBody prefers a resolvable template body and falls back to generated HTML.
func (s *CampaignService) resolveBody(ctx context.Context, userID int, in CreateCampaignInput) (string, *int) {
	body := in.HTMLContent
	var templateID *int

	if in.TemplateID != nil {
		tmpl, err := s.TemplateRepo.GetByID(ctx, userID, *in.TemplateID)
		switch {
		case err == nil:
			body = tmpl.HTMLContent
			templateID = &tmpl.ID
		case appErrors.IsNotFound(err):
			log.Printf("⚠️ [Campaigns] template %d not found, using given content", *in.TemplateID)
		default:
			log.Printf("⚠️ [Campaigns] template %d lookup failed: %v", *in.TemplateID, err)
		}
	}

	if strings.TrimSpace(body) == "" {
		body = RenderTemplate(fallbackHTML, map[string]string{
			"subject":      html.EscapeString(in.Subject),
			"sender_name":  html.EscapeString(s.Sender.Name),
			"sender_email": html.EscapeString(s.Sender.Email),
		})
	}
	return body, templateID
}

func filtersText(raw json.RawMessage) *string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	text := string(raw)
	return &text
}

// ListCampaigns fetches campaigns with pagination
func (s *CampaignService) ListCampaigns(ctx context.Context, userID, page, pageSize int, status string) ([]*model.EmailCampaign, map[string]int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	campaigns, total, err := s.CampaignRepo.ListByUser(ctx, userID, offset, pageSize, status)
	if err != nil {
		return nil, nil, err
	}

	totalPages := (total + pageSize - 1) / pageSize
	pagination := map[string]int{
		"page":        page,
		"page_size":   pageSize,
		"total_count": total,
		"total_pages": totalPages,
	}
	return campaigns, pagination, nil
}

// CampaignStats fetches remote delivery statistics for a campaign sent as a real campaign.
func (s *CampaignService) CampaignStats(ctx context.Context, userID, campaignID int) (map[string]any, error) {
	campaign, err := s.CampaignRepo.GetByID(ctx, userID, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.DispatchMode == acumbamail.ModeIndividual || strings.HasPrefix(campaign.AcumbamailCampaignID, "temp-") {
		return nil, appErrors.NewValidation("id", "campaign has no remote statistics")
	}
	user, err := configuredUser(ctx, s.UserRepo, userID)
	if err != nil {
		return nil, err
	}
	return s.NewClient(user.AuthToken()).GetCampaignStats(ctx, campaign.AcumbamailCampaignID)
}

func (s *CampaignService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *CampaignService) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}
