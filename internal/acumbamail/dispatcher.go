package acumbamail

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	ModeIndividual = "individual"
	ModeCampaign   = "campaign"
)

// DispatchAPI is the subset of the API a Dispatcher drives.
type DispatchAPI interface {
	GetSubscribers(ctx context.Context, listID string) ([]RemoteSubscriber, error)
	SendEmail(ctx context.Context, email Email) error
	CreateCampaign(ctx context.Context, draft CampaignDraft) (RemoteID, error)
	SendCampaign(ctx context.Context, campaignID RemoteID) error
	SendCampaignAlt(ctx context.Context, campaignID RemoteID) error
	SendCampaignToList(ctx context.Context, campaignID RemoteID, listID string) error
}

// SendStrategy is one way of triggering a created campaign.
type SendStrategy struct {
	Name string
	Send func(ctx context.Context, api DispatchAPI, campaignID RemoteID, listID string) error
}

// DefaultSendStrategies returns the send endpoints in the order they are tried.
// Send capability is gated differently per account, so no single endpoint or
// parameter shape works everywhere.
func DefaultSendStrategies() []SendStrategy {
	return []SendStrategy{
		{
			Name: "send",
			Send: func(ctx context.Context, api DispatchAPI, id RemoteID, _ string) error {
				return api.SendCampaign(ctx, id)
			},
		},
		{
			Name: "sendCampaign",
			Send: func(ctx context.Context, api DispatchAPI, id RemoteID, _ string) error {
				return api.SendCampaignAlt(ctx, id)
			},
		},
		{
			Name: "sendCampaign+list_id",
			Send: func(ctx context.Context, api DispatchAPI, id RemoteID, listID string) error {
				return api.SendCampaignToList(ctx, id, listID)
			},
		},
	}
}

type DispatchRequest struct {
	ListID       string
	Subject      string
	HTML         string
	CampaignName string
}

type DispatchResult struct {
	CampaignID         string `json:"campaignId"`
	Message            string `json:"message"`
	Mode               string `json:"mode"`
	Strategy           string `json:"strategy,omitempty"`
	SentCount          int    `json:"sentCount"`
	ErrorCount         int    `json:"errorCount"`
	RequiresManualSend bool   `json:"requiresManualSend"`
}

// Sent reports whether the emails actually went out. A campaign that requires a
// manual send from the Acumbamail dashboard is not sent.
func (r *DispatchResult) Sent() bool { return !r.RequiresManualSend }

// Partial reports an individual send where some recipients failed.
func (r *DispatchResult) Partial() bool { return r.SentCount > 0 && r.ErrorCount > 0 }

// Dispatcher turns a (list, subject, HTML) triple into a sent or sendable
// remote campaign.
type Dispatcher struct {
	API        DispatchAPI
	Sender     Sender
	Strategies []SendStrategy
	NewID      func() string
	Now        func() time.Time
}

func NewDispatcher(api DispatchAPI, sender Sender) *Dispatcher {
	return &Dispatcher{
		API:        api,
		Sender:     sender,
		Strategies: DefaultSendStrategies(),
		NewID:      uuid.NewString,
		Now:        time.Now,
	}
}

// Dispatch first tries one email per subscriber. If no recipient could be
// reached it creates a campaign and walks the send strategies in order.
func (d *Dispatcher) Dispatch(ctx context.Context, req DispatchRequest) (*DispatchResult, error) {
	name := req.CampaignName
	if strings.TrimSpace(name) == "" {
		name = fmt.Sprintf("Campaign_%d", d.now().UnixMilli())
	}

	log.Printf("📤 [Dispatcher] dispatching %q to list %s", name, req.ListID)

	if result, ok := d.sendIndividually(ctx, req); ok {
		return result, nil
	}

	campaignID, err := d.API.CreateCampaign(ctx, CampaignDraft{
		Name:    name,
		Subject: req.Subject,
		HTML:    req.HTML,
		ListID:  req.ListID,
		Sender:  d.Sender,
	})
	if err != nil {
		log.Printf("❌ [Dispatcher] campaign creation failed: %v", err)
		return nil, fmt.Errorf("create campaign: %w", err)
	}
	log.Printf("✅ [Dispatcher] created campaign %s", campaignID)

	return d.trigger(ctx, campaignID, req.ListID)
}

func (d *Dispatcher) sendIndividually(ctx context.Context, req DispatchRequest) (*DispatchResult, bool) {
	subscribers, err := d.API.GetSubscribers(ctx, req.ListID)
	if err != nil {
		log.Printf("⚠️ [Dispatcher] could not get subscribers, falling back to campaign: %v", err)
		return nil, false
	}

	var sent, failed int
	for _, sub := range subscribers {
		if strings.TrimSpace(sub.Email) == "" {
			failed++
			log.Printf("⚠️ [Dispatcher] subscriber %s has no email", sub.ID)
			continue
		}
		err := d.API.SendEmail(ctx, Email{
			To:      sub.Email,
			Subject: req.Subject,
			HTML:    req.HTML,
			Sender:  d.Sender,
		})
		if err != nil {
			failed++
			log.Printf("⚠️ [Dispatcher] failed to send to %s: %v", sub.Email, err)
			continue
		}
		sent++
	}

	if sent == 0 {
		log.Printf("⚠️ [Dispatcher] no individual send succeeded (%d subscribers), falling back to campaign", len(subscribers))
		return nil, false
	}

	return &DispatchResult{
		CampaignID: "individual_" + d.newID(),
		Message:    fmt.Sprintf("Successfully sent %d emails. %d failed.", sent, failed),
		Mode:       ModeIndividual,
		SentCount:  sent,
		ErrorCount: failed,
	}, true
}

func (d *Dispatcher) trigger(ctx context.Context, campaignID RemoteID, listID string) (*DispatchResult, error) {
	var attempts []string
	var errs []error

	for _, strategy := range d.Strategies {
		err := strategy.Send(ctx, d.API, campaignID, listID)
		if err == nil {
			log.Printf("✅ [Dispatcher] campaign %s sent via %s", campaignID, strategy.Name)
			return &DispatchResult{
				CampaignID: campaignID.String(),
				Message:    "Campaign sent via Acumbamail API",
				Mode:       ModeCampaign,
				Strategy:   strategy.Name,
			}, nil
		}
		log.Printf("⚠️ [Dispatcher] %s failed for campaign %s: %v", strategy.Name, campaignID, err)
		attempts = append(attempts, strategy.Name)
		errs = append(errs, classify(err))
	}

	for _, err := range errs {
		var capErr *CapabilityError
		if errors.As(err, &capErr) {
			log.Printf("📝 [Dispatcher] campaign %s needs a manual send: %v", campaignID, capErr)
			return &DispatchResult{
				CampaignID: campaignID.String(),
				Message: "Campaign created successfully! You can now send it manually from your Acumbamail dashboard, " +
					"or activate SMTP in your Acumbamail account for automatic sending.",
				Mode:               ModeCampaign,
				RequiresManualSend: true,
			}, nil
		}
	}

	sendErr := errors.Join(errs...)
	if sendErr == nil {
		sendErr = errors.New("no send strategies configured")
	}
	return nil, &SendError{CampaignID: campaignID.String(), Attempts: attempts, Err: sendErr}
}

func (d *Dispatcher) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Dispatcher) newID() string {
	if d.NewID != nil {
		return d.NewID()
	}
	return uuid.NewString()
}
