package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareus/pkg/domain/types"
)

// Ticket is the aggregate for a unit of tracked work. TenantID is
// immutable after creation and status only moves along the legal
// transition graph in types.TicketStatus. Version is the optimistic
// concurrency token checked by Repository.Put.
type Ticket struct {
	ID          types.TicketID
	TenantID    types.TenantID
	Title       string
	Description string
	Category    types.Category
	Severity    types.Severity
	Priority    types.Priority
	Status      types.TicketStatus
	CreatedBy   types.UserID
	AssignedTo  types.UserID // empty means unassigned
	Tags        []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	// QueuePositionUpdatedAt changes only when a queue-relevant field
	// changes (priority, reopening), not on every edit.
	QueuePositionUpdatedAt time.Time
	Version                int64
}

// Validate checks required fields and enumeration membership.
func (t *Ticket) Validate() error {
	if t.Title == "" {
		return goerr.New("ticket title is required")
	}
	if err := t.TenantID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid tenant ID")
	}
	if t.CreatedBy == "" {
		return goerr.New("ticket creator is required")
	}
	if !t.Category.IsValid() {
		return goerr.New("invalid ticket category", goerr.V("category", t.Category))
	}
	if !t.Severity.IsValid() {
		return goerr.New("invalid ticket severity", goerr.V("severity", t.Severity))
	}
	if !t.Priority.IsValid() {
		return goerr.New("invalid ticket priority", goerr.V("priority", t.Priority))
	}
	if !t.Status.IsValid() {
		return goerr.New("invalid ticket status", goerr.V("status", t.Status))
	}
	return nil
}

// IsAssigned reports whether the ticket is held by an assignee.
func (t *Ticket) IsAssigned() bool {
	return t.AssignedTo != ""
}

// QueueRank implements queue.Item.
func (t *Ticket) QueueRank() int { return t.Priority.Rank() }

// QueuedAt implements queue.Item.
func (t *Ticket) QueuedAt() time.Time { return t.QueuePositionUpdatedAt }

// QueueKey implements queue.Item.
func (t *Ticket) QueueKey() string { return string(t.ID) }

// Clone returns a deep copy of the ticket.
func (t *Ticket) Clone() *Ticket {
	clone := *t
	clone.Tags = append([]string(nil), t.Tags...)
	return &clone
}
