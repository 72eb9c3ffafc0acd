package acumbamail

import (
	"errors"
	"fmt"
	"strings"
)

// RelayInactiveMarker is the substring Acumbamail puts in send failures when the
// account's outbound SMTP relay has not been activated.
const RelayInactiveMarker = "SMTP is not active"

// TransportError is returned for any failed call: network errors, non-2xx
// statuses and 2xx bodies that are not JSON.
type TransportError struct {
	Endpoint   string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err == nil:
		return fmt.Sprintf("acumbamail %s: HTTP error! status: %d, body: %s", e.Endpoint, e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("acumbamail %s: status %d: %v", e.Endpoint, e.StatusCode, e.Err)
	default:
		return fmt.Sprintf("acumbamail %s: %v", e.Endpoint, e.Err)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// CapabilityError marks a failure caused by a feature the remote account lacks.
type CapabilityError struct {
	Capability string
	Err        error
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("acumbamail capability %q unavailable: %v", e.Capability, e.Err)
}

func (e *CapabilityError) Unwrap() error { return e.Err }

// SendError is returned when a remote campaign was created but no send strategy
// could trigger it. The campaign stays on the remote side as a draft.
type SendError struct {
	CampaignID string
	Attempts   []string
	Err        error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("campaign %s created but could not be sent (tried %s): %v",
		e.CampaignID, strings.Join(e.Attempts, ", "), e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }

// IsRelayInactive reports whether err carries the relay-inactive marker.
func IsRelayInactive(err error) bool {
	return err != nil && strings.Contains(err.Error(), RelayInactiveMarker)
}

// classify turns known capability failures into a *CapabilityError.
func classify(err error) error {
	var capErr *CapabilityError
	if errors.As(err, &capErr) {
		return err
	}
	if IsRelayInactive(err) {
		return &CapabilityError{Capability: "smtp_relay", Err: err}
	}
	return err
}
