package types

import "fmt"

// TicketStatus represents the lifecycle status of a ticket
type TicketStatus string

const (
	TicketStatusNew              TicketStatus = "new"
	TicketStatusInProgress       TicketStatus = "in_progress"
	TicketStatusAwaitingResponse TicketStatus = "awaiting_response"
	TicketStatusResolved         TicketStatus = "resolved"
	TicketStatusClosed           TicketStatus = "closed"
)

// AllTicketStatuses returns all valid ticket statuses
func AllTicketStatuses() []TicketStatus {
	return []TicketStatus{
		TicketStatusNew,
		TicketStatusInProgress,
		TicketStatusAwaitingResponse,
		TicketStatusResolved,
		TicketStatusClosed,
	}
}

// IsValid checks if the ticket status is valid
func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusNew,
		TicketStatusInProgress,
		TicketStatusAwaitingResponse,
		TicketStatusResolved,
		TicketStatusClosed:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether moving to next is a legal lifecycle
// transition. The graph is the forward chain
// new → in_progress → awaiting_response → resolved → closed plus the
// back-edge awaiting_response → in_progress. resolved → closed is part
// of the forward chain and stays legal for staff closing resolved items.
func (s TicketStatus) CanTransitionTo(next TicketStatus) bool {
	switch s {
	case TicketStatusNew:
		return next == TicketStatusInProgress
	case TicketStatusInProgress:
		return next == TicketStatusAwaitingResponse
	case TicketStatusAwaitingResponse:
		return next == TicketStatusInProgress || next == TicketStatusResolved
	case TicketStatusResolved:
		return next == TicketStatusClosed
	default:
		return false
	}
}

// IsTerminal reports whether the status ends the lifecycle.
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusClosed
}

// String returns the string representation of the ticket status
func (s TicketStatus) String() string {
	return string(s)
}

// ParseTicketStatus parses a string into a TicketStatus
func ParseTicketStatus(s string) (TicketStatus, error) {
	status := TicketStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid ticket status: %s", s)
	}
	return status, nil
}
