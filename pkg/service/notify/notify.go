// Package notify delivers human-facing notifications about work-item
// events. Delivery is best effort; the core never blocks or fails an
// operation because a notification could not be sent.
package notify

import (
	"context"

	"github.com/secmon-lab/briareus/pkg/domain/types"
)

// Kind identifies the event being notified.
type Kind string

const (
	KindAlertEscalated Kind = "alert_escalated"
	KindAlertAssigned  Kind = "alert_assigned"
	KindTicketAssigned Kind = "ticket_assigned"
)

// Event is one notification payload.
type Event struct {
	Kind     Kind
	TenantID types.TenantID
	Title    string
	Text     string
}

// Notifier sends events to an external channel.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}
