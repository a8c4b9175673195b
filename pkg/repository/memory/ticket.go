package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareus/pkg/domain/interfaces"
	"github.com/secmon-lab/briareus/pkg/domain/model"
	"github.com/secmon-lab/briareus/pkg/domain/types"
)

type ticketRepository struct {
	mu      sync.RWMutex
	tickets map[types.TenantID]map[types.TicketID]*model.Ticket
}

func newTicketRepository() *ticketRepository {
	return &ticketRepository{
		tickets: make(map[types.TenantID]map[types.TicketID]*model.Ticket),
	}
}

func (r *ticketRepository) ensureTenant(tenantID types.TenantID) {
	if _, exists := r.tickets[tenantID]; !exists {
		r.tickets[tenantID] = make(map[types.TicketID]*model.Ticket)
	}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *model.Ticket) (*model.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ensureTenant(ticket.TenantID)

	if _, exists := r.tickets[ticket.TenantID][ticket.ID]; exists {
		return nil, goerr.Wrap(interfaces.ErrAlreadyExists, "ticket already exists", goerr.V("id", ticket.ID))
	}

	created := ticket.Clone()
	created.Version = 1
	r.tickets[ticket.TenantID][created.ID] = created

	return created.Clone(), nil
}

func (r *ticketRepository) Get(ctx context.Context, tenantID types.TenantID, id types.TicketID) (*model.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tenant, exists := r.tickets[tenantID]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "ticket not found", goerr.V("id", id))
	}

	ticket, exists := tenant[id]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "ticket not found", goerr.V("id", id))
	}

	return ticket.Clone(), nil
}

func (r *ticketRepository) List(ctx context.Context, tenantID types.TenantID) ([]*model.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tenant, exists := r.tickets[tenantID]
	if !exists {
		return []*model.Ticket{}, nil
	}

	tickets := make([]*model.Ticket, 0, len(tenant))
	for _, ticket := range tenant {
		tickets = append(tickets, ticket.Clone())
	}

	return tickets, nil
}

func (r *ticketRepository) Put(ctx context.Context, ticket *model.Ticket, expectedVersion int64) (*model.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tenant, exists := r.tickets[ticket.TenantID]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "ticket not found", goerr.V("id", ticket.ID))
	}

	existing, exists := tenant[ticket.ID]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "ticket not found", goerr.V("id", ticket.ID))
	}

	if existing.Version != expectedVersion {
		return nil, goerr.Wrap(interfaces.ErrVersionMismatch, "ticket was modified concurrently",
			goerr.V("id", ticket.ID),
			goerr.V("expected", expectedVersion),
			goerr.V("actual", existing.Version))
	}

	updated := ticket.Clone()
	updated.CreatedAt = existing.CreatedAt
	updated.Version = existing.Version + 1

	r.tickets[ticket.TenantID][updated.ID] = updated
	return updated.Clone(), nil
}

func (r *ticketRepository) Delete(ctx context.Context, tenantID types.TenantID, id types.TicketID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tenant, exists := r.tickets[tenantID]
	if !exists {
		return goerr.Wrap(interfaces.ErrNotFound, "ticket not found", goerr.V("id", id))
	}

	if _, exists := tenant[id]; !exists {
		return goerr.Wrap(interfaces.ErrNotFound, "ticket not found", goerr.V("id", id))
	}

	delete(tenant, id)
	return nil
}
