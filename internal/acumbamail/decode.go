package acumbamail

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var errNotObject = errors.New("expected a JSON object")

type objectEntry struct {
	Key   string
	Value json.RawMessage
}

// decodeEntries reads a JSON object keeping its keys in document order.
func decodeEntries(raw json.RawMessage) ([]objectEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errNotObject
	}

	var entries []objectEntry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", keyTok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("decode value of %q: %w", key, err)
		}
		entries = append(entries, objectEntry{Key: key, Value: value})
	}
	return entries, nil
}

func firstByte(raw json.RawMessage) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

// decodeLists accepts the id-keyed object getLists returns, or an array of
// list objects.
func decodeLists(raw json.RawMessage) ([]RemoteList, error) {
	lists := []RemoteList{}
	switch firstByte(raw) {
	case '[':
		if err := json.Unmarshal(raw, &lists); err != nil {
			return nil, fmt.Errorf("decode lists: %w", err)
		}
		return lists, nil
	case '{':
		entries, err := decodeEntries(raw)
		if err != nil {
			return nil, fmt.Errorf("decode lists: %w", err)
		}
		for _, e := range entries {
			var l RemoteList
			if err := json.Unmarshal(e.Value, &l); err != nil {
				return nil, fmt.Errorf("decode list %s: %w", e.Key, err)
			}
			l.ID = RemoteID(e.Key)
			lists = append(lists, l)
		}
		return lists, nil
	}
	if isNull(raw) {
		return lists, nil
	}
	return nil, fmt.Errorf("decode lists: unexpected payload %s", truncate(string(raw)))
}

// decodeSubscribers accepts an id-keyed object or an array of subscribers.
// Missing status defaults to "active".
func decodeSubscribers(raw json.RawMessage) ([]RemoteSubscriber, error) {
	subs := []RemoteSubscriber{}
	switch firstByte(raw) {
	case '[':
		if err := json.Unmarshal(raw, &subs); err != nil {
			return nil, fmt.Errorf("decode subscribers: %w", err)
		}
	case '{':
		entries, err := decodeEntries(raw)
		if err != nil {
			return nil, fmt.Errorf("decode subscribers: %w", err)
		}
		for _, e := range entries {
			var s RemoteSubscriber
			if err := json.Unmarshal(e.Value, &s); err != nil {
				return nil, fmt.Errorf("decode subscriber %s: %w", e.Key, err)
			}
			s.ID = RemoteID(e.Key)
			subs = append(subs, s)
		}
	default:
		if !isNull(raw) {
			return nil, fmt.Errorf("decode subscribers: unexpected payload %s", truncate(string(raw)))
		}
	}
	for i := range subs {
		if subs[i].Status == "" {
			subs[i].Status = "active"
		}
	}
	return subs, nil
}

// decodeTemplates reads the getTemplates array. Only a literal true marks a
// template as available.
func decodeTemplates(raw json.RawMessage) ([]RemoteTemplate, error) {
	var items []struct {
		ID        RemoteID `json:"id"`
		Name      string   `json:"name"`
		Available any      `json:"available"`
	}
	if isNull(raw) {
		return []RemoteTemplate{}, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode templates: %w", err)
	}
	templates := make([]RemoteTemplate, 0, len(items))
	for _, it := range items {
		available, _ := it.Available.(bool)
		templates = append(templates, RemoteTemplate{ID: it.ID, Name: it.Name, Available: available})
	}
	return templates, nil
}

// decodeTemplateBody extracts html_content, falling back to content.
func decodeTemplateBody(raw json.RawMessage) (string, error) {
	if firstByte(raw) == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("decode template body: %w", err)
		}
		return s, nil
	}
	var body struct {
		HTMLContent string `json:"html_content"`
		Content     string `json:"content"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", fmt.Errorf("decode template body: %w", err)
	}
	if body.HTMLContent != "" {
		return body.HTMLContent, nil
	}
	return body.Content, nil
}

// decodeCampaigns reads getCampaigns, which reports campaigns as an array of
// single-key {"<id>": "<name>"} maps. Elements that already carry explicit id
// and name fields are read as such.
func decodeCampaigns(raw json.RawMessage) ([]RemoteCampaign, error) {
	campaigns := []RemoteCampaign{}
	switch firstByte(raw) {
	case '[':
		var elements []json.RawMessage
		if err := json.Unmarshal(raw, &elements); err != nil {
			return nil, fmt.Errorf("decode campaigns: %w", err)
		}
		for _, el := range elements {
			c, ok, err := decodeCampaignElement(el)
			if err != nil {
				return nil, err
			}
			if ok {
				campaigns = append(campaigns, c)
			}
		}
	case '{':
		entries, err := decodeEntries(raw)
		if err != nil {
			return nil, fmt.Errorf("decode campaigns: %w", err)
		}
		for _, e := range entries {
			campaigns = append(campaigns, RemoteCampaign{ID: RemoteID(e.Key), Name: looseString(e.Value)})
		}
	default:
		if !isNull(raw) {
			return nil, fmt.Errorf("decode campaigns: unexpected payload %s", truncate(string(raw)))
		}
	}
	return campaigns, nil
}

func decodeCampaignElement(el json.RawMessage) (RemoteCampaign, bool, error) {
	if firstByte(el) != '{' {
		return RemoteCampaign{}, false, nil
	}
	entries, err := decodeEntries(el)
	if err != nil {
		return RemoteCampaign{}, false, fmt.Errorf("decode campaign: %w", err)
	}
	if len(entries) == 0 {
		return RemoteCampaign{}, false, nil
	}
	if len(entries) == 1 {
		return RemoteCampaign{ID: RemoteID(entries[0].Key), Name: looseString(entries[0].Value)}, true, nil
	}
	var c RemoteCampaign
	if err := json.Unmarshal(el, &c); err != nil || c.ID == "" {
		return RemoteCampaign{ID: RemoteID(entries[0].Key), Name: looseString(entries[0].Value)}, true, nil
	}
	return c, true, nil
}

// decodeRemoteID reads an id returned as a bare value or inside an object.
func decodeRemoteID(raw json.RawMessage) (RemoteID, error) {
	if firstByte(raw) == '{' {
		var wrapped struct {
			CampaignID RemoteID `json:"campaign_id"`
			ListID     RemoteID `json:"list_id"`
			ID         RemoteID `json:"id"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return "", fmt.Errorf("decode id: %w", err)
		}
		for _, id := range []RemoteID{wrapped.CampaignID, wrapped.ListID, wrapped.ID} {
			if id != "" {
				return id, nil
			}
		}
		return "", fmt.Errorf("decode id: no id in %s", truncate(string(raw)))
	}
	var id RemoteID
	if err := json.Unmarshal(raw, &id); err != nil {
		return "", fmt.Errorf("decode id: %w", err)
	}
	if id == "" {
		return "", errors.New("decode id: empty id")
	}
	return id, nil
}

func looseString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.Trim(string(bytes.TrimSpace(raw)), `"`)
}
