package acumbamail

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://acumbamail.com/api/1"
	DefaultTimeout = 30 * time.Second

	maxBodyBytes  = 10 << 20
	maxLoggedBody = 512
)

// Client talks to the Acumbamail API on behalf of one account.
type Client struct {
	authToken  string
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// NewClient creates a client for the given auth token.
func NewClient(authToken string, opts ...Option) *Client {
	c := &Client{
		authToken:  authToken,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request performs one call against <baseURL>/<endpoint>/ and returns the raw
// JSON payload. POST parameters travel in a form body, GET parameters in the
// query string. Nothing is retried.
func (c *Client) Request(ctx context.Context, endpoint, method string, params Params) (json.RawMessage, error) {
	values := EncodeParams(c.authToken, params)
	reqURL := fmt.Sprintf("%s/%s/", c.baseURL, endpoint)

	var body io.Reader
	switch method {
	case http.MethodPost:
		body = strings.NewReader(values.Encode())
	case http.MethodGet:
		reqURL += "?" + values.Encode()
	default:
		return nil, &TransportError{Endpoint: endpoint, Err: fmt.Errorf("unsupported method %s", method)}
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Accept", "application/json")

	log.Printf("📡 [Acumbamail] %s %s (token %s)", method, endpoint, redact(c.authToken))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("❌ [Acumbamail] %s %s failed: %v", method, endpoint, err)
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("❌ [Acumbamail] %s %s -> %d: %s", method, endpoint, resp.StatusCode, truncate(string(raw)))
		return nil, &TransportError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		log.Printf("❌ [Acumbamail] %s %s returned unparsable body: %s", method, endpoint, truncate(string(raw)))
		return nil, &TransportError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(raw),
			Err:        fmt.Errorf("parse response: %w", err),
		}
	}

	log.Printf("✅ [Acumbamail] %s %s -> %d", method, endpoint, resp.StatusCode)
	return json.RawMessage(raw), nil
}

func redact(token string) string {
	if len(token) <= 8 {
		return "***"
	}
	return token[:8] + "..."
}

func truncate(s string) string {
	if len(s) <= maxLoggedBody {
		return s
	}
	return s[:maxLoggedBody] + "..."
}
