package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareus/pkg/domain/types"
)

// Alert is a detection awaiting triage. Escalation promotes it into an
// incident ticket exactly once; EscalatedIncidentID records the link.
type Alert struct {
	ID                  types.AlertID
	TenantID            types.TenantID
	Title               string
	Description         string
	Category            types.Category
	Severity            types.Severity
	Status              types.AlertStatus
	AssignedTo          types.UserID
	EscalatedIncidentID types.TicketID
	CreatedAt           time.Time
	UpdatedAt           time.Time
	Version             int64
}

// Validate checks required fields and enumeration membership.
func (a *Alert) Validate() error {
	if a.Title == "" {
		return goerr.New("alert title is required")
	}
	if err := a.TenantID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid tenant ID")
	}
	if !a.Category.IsValid() {
		return goerr.New("invalid alert category", goerr.V("category", a.Category))
	}
	if !a.Severity.IsValid() {
		return goerr.New("invalid alert severity", goerr.V("severity", a.Severity))
	}
	if !a.Status.IsValid() {
		return goerr.New("invalid alert status", goerr.V("status", a.Status))
	}
	return nil
}

// QueueRank implements queue.Item.
func (a *Alert) QueueRank() int { return a.Severity.Rank() }

// QueuedAt implements queue.Item.
func (a *Alert) QueuedAt() time.Time { return a.CreatedAt }

// QueueKey implements queue.Item.
func (a *Alert) QueueKey() string { return string(a.ID) }

// Clone returns a deep copy of the alert.
func (a *Alert) Clone() *Alert {
	clone := *a
	return &clone
}
