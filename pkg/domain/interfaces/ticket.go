package interfaces

import (
	"context"

	"github.com/secmon-lab/briareus/pkg/domain/model"
	"github.com/secmon-lab/briareus/pkg/domain/types"
)

// TicketRepository defines the interface for Ticket data access.
// Put is a compare-and-set: it only writes when the stored version
// equals expectedVersion, and bumps the version on success.
type TicketRepository interface {
	// Create stores a new ticket at version 1
	Create(ctx context.Context, ticket *model.Ticket) (*model.Ticket, error)

	// Get retrieves a ticket by ID within the tenant
	Get(ctx context.Context, tenantID types.TenantID, id types.TicketID) (*model.Ticket, error)

	// List retrieves all tickets of the tenant
	List(ctx context.Context, tenantID types.TenantID) ([]*model.Ticket, error)

	// Put replaces the ticket if its stored version matches expectedVersion
	Put(ctx context.Context, ticket *model.Ticket, expectedVersion int64) (*model.Ticket, error)

	// Delete removes a ticket. Only the alert-escalation rollback path
	// uses this; tickets are otherwise never hard-deleted.
	Delete(ctx context.Context, tenantID types.TenantID, id types.TicketID) error
}
