package acumbamail

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// API is the set of Acumbamail operations the rest of the service consumes.
type API interface {
	GetLists(ctx context.Context) ([]RemoteList, error)
	CreateList(ctx context.Context, name, description string) (RemoteID, error)
	GetSubscribers(ctx context.Context, listID string) ([]RemoteSubscriber, error)
	AddSubscribers(ctx context.Context, listID string, subs []RemoteSubscriber) error
	GetTemplates(ctx context.Context, page, pageSize int) ([]RemoteTemplate, error)
	GetAllTemplates(ctx context.Context) ([]RemoteTemplate, error)
	GetTemplate(ctx context.Context, templateID string) (string, error)
	GetCampaigns(ctx context.Context) ([]RemoteCampaign, error)
	GetCampaignStats(ctx context.Context, campaignID string) (map[string]any, error)
	CreateCampaign(ctx context.Context, draft CampaignDraft) (RemoteID, error)
	SendCampaign(ctx context.Context, campaignID RemoteID) error
	SendCampaignAlt(ctx context.Context, campaignID RemoteID) error
	SendCampaignToList(ctx context.Context, campaignID RemoteID, listID string) error
	SendEmail(ctx context.Context, email Email) error
	TestConnection(ctx context.Context) (int, error)
}

var _ API = (*Client)(nil)

func (c *Client) GetLists(ctx context.Context) ([]RemoteList, error) {
	raw, err := c.Request(ctx, "getLists", http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	return decodeLists(raw)
}

func (c *Client) CreateList(ctx context.Context, name, description string) (RemoteID, error) {
	params := Params{"name": name}
	if description != "" {
		params["description"] = description
	}
	raw, err := c.Request(ctx, "createList", http.MethodPost, params)
	if err != nil {
		return "", err
	}
	return decodeRemoteID(raw)
}

func (c *Client) GetSubscribers(ctx context.Context, listID string) ([]RemoteSubscriber, error) {
	raw, err := c.Request(ctx, "getSubscribers", http.MethodGet, Params{"list_id": listID})
	if err != nil {
		return nil, err
	}
	return decodeSubscribers(raw)
}

// AddSubscribers posts subscribers[i][email|first_name|last_name] for each
// entry. The response carries no ids; they show up in getSubscribers.
func (c *Client) AddSubscribers(ctx context.Context, listID string, subs []RemoteSubscriber) error {
	entries := make([]map[string]string, 0, len(subs))
	for _, sub := range subs {
		entry := map[string]string{"email": sub.Email}
		if sub.FirstName != "" {
			entry["first_name"] = sub.FirstName
		}
		if sub.LastName != "" {
			entry["last_name"] = sub.LastName
		}
		entries = append(entries, entry)
	}
	_, err := c.Request(ctx, "addSubscribers", http.MethodPost, Params{
		"list_id":     listID,
		"subscribers": entries,
	})
	return err
}

// GetTemplates fetches one page of the template listing. Pages start at 1.
func (c *Client) GetTemplates(ctx context.Context, page, pageSize int) ([]RemoteTemplate, error) {
	raw, err := c.Request(ctx, "getTemplates", http.MethodGet, Params{
		"page":      page,
		"page_size": pageSize,
	})
	if err != nil {
		return nil, err
	}
	return decodeTemplates(raw)
}

func (c *Client) GetAllTemplates(ctx context.Context) ([]RemoteTemplate, error) {
	return FetchAllTemplates(ctx, c)
}

// GetTemplate returns the HTML body of a template.
func (c *Client) GetTemplate(ctx context.Context, templateID string) (string, error) {
	raw, err := c.Request(ctx, "getTemplate", http.MethodGet, Params{"template_id": templateID})
	if err != nil {
		return "", err
	}
	return decodeTemplateBody(raw)
}

func (c *Client) GetCampaigns(ctx context.Context) ([]RemoteCampaign, error) {
	raw, err := c.Request(ctx, "getCampaigns", http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	return decodeCampaigns(raw)
}

func (c *Client) GetCampaignStats(ctx context.Context, campaignID string) (map[string]any, error) {
	raw, err := c.Request(ctx, "getCampaignStats", http.MethodGet, Params{"campaign_id": campaignID})
	if err != nil {
		return nil, err
	}
	stats := map[string]any{}
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, fmt.Errorf("decode campaign stats: %w", err)
	}
	return stats, nil
}

// CreateCampaign creates a campaign targeting a single list and returns its id.
func (c *Client) CreateCampaign(ctx context.Context, draft CampaignDraft) (RemoteID, error) {
	raw, err := c.Request(ctx, "createCampaign", http.MethodPost, Params{
		"name":       draft.Name,
		"lists":      map[int]string{0: draft.ListID},
		"subject":    draft.Subject,
		"content":    draft.HTML,
		"from_name":  draft.Sender.Name,
		"from_email": draft.Sender.Email,
	})
	if err != nil {
		return "", err
	}
	return decodeRemoteID(raw)
}

func (c *Client) SendCampaign(ctx context.Context, campaignID RemoteID) error {
	_, err := c.Request(ctx, "send", http.MethodPost, Params{"campaign_id": campaignID})
	return err
}

func (c *Client) SendCampaignAlt(ctx context.Context, campaignID RemoteID) error {
	_, err := c.Request(ctx, "sendCampaign", http.MethodPost, Params{"campaign_id": campaignID})
	return err
}

func (c *Client) SendCampaignToList(ctx context.Context, campaignID RemoteID, listID string) error {
	_, err := c.Request(ctx, "sendCampaign", http.MethodPost, Params{
		"campaign_id": campaignID,
		"list_id":     listID,
	})
	return err
}

// SendEmail sends a single email to one recipient.
func (c *Client) SendEmail(ctx context.Context, email Email) error {
	_, err := c.Request(ctx, "sendEmail", http.MethodPost, Params{
		"to":         email.To,
		"subject":    email.Subject,
		"content":    email.HTML,
		"from_name":  email.Sender.Name,
		"from_email": email.Sender.Email,
	})
	return err
}

// TestConnection validates the token by listing lists, which has no side
// effects. It returns the number of lists found.
func (c *Client) TestConnection(ctx context.Context) (int, error) {
	lists, err := c.GetLists(ctx)
	if err != nil {
		return 0, err
	}
	return len(lists), nil
}
