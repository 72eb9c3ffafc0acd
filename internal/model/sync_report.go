package model

import "time"

const (
	PhaseLists       = "lists"
	PhaseSubscribers = "subscribers"
	PhaseTemplates   = "templates"
	PhaseCampaigns   = "campaigns"
)

// EntityTally counts what one sync phase did.
type EntityTally struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// SyncReport is the outcome of one reconciliation pass.
type SyncReport struct {
	Lists       EntityTally       `json:"lists"`
	Subscribers EntityTally       `json:"subscribers"`
	Templates   EntityTally       `json:"templates"`
	Campaigns   EntityTally       `json:"campaigns"`
	PhaseErrors map[string]string `json:"phase_errors,omitempty"`
	Errors      []string          `json:"errors,omitempty"`
	StartedAt   time.Time         `json:"started_at"`
	FinishedAt  time.Time         `json:"finished_at"`
}

func NewSyncReport(startedAt time.Time) *SyncReport {
	return &SyncReport{StartedAt: startedAt, PhaseErrors: map[string]string{}}
}

// Tally returns the counter for a phase.
func (r *SyncReport) Tally(phase string) *EntityTally {
	switch phase {
	case PhaseLists:
		return &r.Lists
	case PhaseSubscribers:
		return &r.Subscribers
	case PhaseTemplates:
		return &r.Templates
	case PhaseCampaigns:
		return &r.Campaigns
	}
	return nil
}

func (r *SyncReport) TotalCreated() int {
	return r.Lists.Created + r.Subscribers.Created + r.Templates.Created + r.Campaigns.Created
}

func (r *SyncReport) TotalUpdated() int {
	return r.Lists.Updated + r.Subscribers.Updated + r.Templates.Updated + r.Campaigns.Updated
}

func (r *SyncReport) TotalFailed() int {
	return r.Lists.Failed + r.Subscribers.Failed + r.Templates.Failed + r.Campaigns.Failed
}

// SyncRun is a persisted sync report.
type SyncRun struct {
	ID         int         `db:"id" json:"id"`
	UserID     int         `db:"user_id" json:"user_id"`
	Trigger    string      `db:"trigger" json:"trigger"`
	Report     *SyncReport `db:"report" json:"report"`
	StartedAt  time.Time   `db:"started_at" json:"started_at"`
	FinishedAt time.Time   `db:"finished_at" json:"finished_at"`
}
