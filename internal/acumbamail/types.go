package acumbamail

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RemoteID is an Acumbamail identifier. The API returns ids as JSON numbers or
// strings depending on the endpoint; both decode into the same string form.
type RemoteID string

func (id *RemoteID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = RemoteID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("remote id: %w", err)
	}
	*id = RemoteID(n.String())
	return nil
}

func (id RemoteID) String() string { return string(id) }

type RemoteList struct {
	ID          RemoteID `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
}

type RemoteSubscriber struct {
	ID        RemoteID `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name,omitempty"`
	LastName  string   `json:"last_name,omitempty"`
	Status    string   `json:"status,omitempty"`
}

type RemoteTemplate struct {
	ID        RemoteID `json:"id"`
	Name      string   `json:"name"`
	Available bool     `json:"available"`
}

// RemoteCampaign is what getCampaigns exposes: an id and a name, nothing else.
type RemoteCampaign struct {
	ID   RemoteID `json:"id"`
	Name string   `json:"name"`
}

// Sender is the fixed from identity used for campaigns and single emails.
type Sender struct {
	Name  string
	Email string
}

type CampaignDraft struct {
	Name    string
	Subject string
	HTML    string
	ListID  string
	Sender  Sender
}

type Email struct {
	To      string
	Subject string
	HTML    string
	Sender  Sender
}
