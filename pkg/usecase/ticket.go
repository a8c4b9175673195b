package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareus/pkg/domain/interfaces"
	"github.com/secmon-lab/briareus/pkg/domain/model"
	"github.com/secmon-lab/briareus/pkg/domain/model/auth"
	"github.com/secmon-lab/briareus/pkg/domain/policy"
	"github.com/secmon-lab/briareus/pkg/domain/queue"
	"github.com/secmon-lab/briareus/pkg/domain/types"
)

// TicketUseCase drives the ticket lifecycle: creation, assignment,
// status transitions, priority changes, and the ranked queue view.
type TicketUseCase struct {
	parent *UseCases
}

// CreateTicketInput carries the caller-supplied fields for a new ticket.
type CreateTicketInput struct {
	Title       string
	Description string
	Category    types.Category
	Severity    types.Severity
	Priority    types.Priority
	Tags        []string
}

// QueueFilter narrows the queue listing. Zero values mean no filter;
// Limit of zero means no pagination cap.
type QueueFilter struct {
	Status   types.TicketStatus
	Category types.Category
	Limit    int
	Offset   int
}

// Create opens a new ticket. Any authenticated member of the tenant may
// file one; the ticket starts unassigned in status new with all three
// timestamps equal.
func (uc *TicketUseCase) Create(ctx context.Context, actor *auth.Token, selected types.TenantID, input CreateTicketInput) (*model.Ticket, error) {
	tenantID, err := uc.parent.resolveTenant(actor, selected)
	if err != nil {
		return nil, err
	}

	now := uc.parent.now()
	ticket := &model.Ticket{
		ID:                     types.NewTicketID(),
		TenantID:               tenantID,
		Title:                  input.Title,
		Description:            input.Description,
		Category:               input.Category,
		Severity:               input.Severity,
		Priority:               input.Priority,
		Status:                 types.TicketStatusNew,
		CreatedBy:              actor.Sub,
		Tags:                   input.Tags,
		CreatedAt:              now,
		UpdatedAt:              now,
		QueuePositionUpdatedAt: now,
	}

	if err := ticket.Validate(); err != nil {
		return nil, goerr.Wrap(ErrValidation, err.Error())
	}

	created, err := uc.parent.repo.Ticket().Create(ctx, ticket)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create ticket", goerr.V(TicketIDKey, ticket.ID))
	}

	return created, nil
}

// SelfAssign lets a staff member claim an unassigned ticket. The claim
// and the status bump to in_progress happen in one compare-and-set
// write, so exactly one of any number of concurrent claimers wins.
func (uc *TicketUseCase) SelfAssign(ctx context.Context, actor *auth.Token, selected types.TenantID, ticketID types.TicketID) (*model.Ticket, error) {
	tenantID, err := uc.parent.resolveTenant(actor, selected)
	if err != nil {
		return nil, err
	}

	ticket, err := uc.parent.repo.Ticket().Get(ctx, tenantID, ticketID)
	if err != nil {
		return nil, notFound(err, "ticket not found", goerr.V(TicketIDKey, ticketID))
	}

	if !policy.IsAllowed(actor.Role, ticket.Category, types.ActionUpdate) {
		return nil, goerr.Wrap(ErrPermissionDenied, "role may not act on this category",
			goerr.V("role", actor.Role), goerr.V("category", ticket.Category))
	}

	for attempt := 0; attempt < 2; attempt++ {
		if ticket.IsAssigned() {
			return nil, goerr.Wrap(ErrAlreadyAssigned, "ticket is already assigned",
				goerr.V(TicketIDKey, ticketID), goerr.V("assigned_to", ticket.AssignedTo))
		}

		claimed := ticket.Clone()
		claimed.AssignedTo = actor.Sub
		// Assignment and start-work are atomic: the claim must land the
		// ticket in in_progress, so a status that cannot reach it (and is
		// not there already) is not claimable.
		switch {
		case ticket.Status == types.TicketStatusInProgress:
		case ticket.Status.CanTransitionTo(types.TicketStatusInProgress):
			claimed.Status = types.TicketStatusInProgress
		default:
			return nil, goerr.Wrap(ErrInvalidTransition, "ticket cannot be claimed in its current status",
				goerr.V(TicketIDKey, ticketID), goerr.V("status", ticket.Status))
		}
		claimed.UpdatedAt = uc.parent.now()

		updated, err := uc.parent.repo.Ticket().Put(ctx, claimed, ticket.Version)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, interfaces.ErrVersionMismatch) {
			return nil, goerr.Wrap(err, "failed to claim ticket", goerr.V(TicketIDKey, ticketID))
		}

		// Lost the race: reload and re-check whether someone else
		// claimed it in the meantime.
		ticket, err = uc.parent.repo.Ticket().Get(ctx, tenantID, ticketID)
		if err != nil {
			return nil, notFound(err, "ticket not found", goerr.V(TicketIDKey, ticketID))
		}
	}

	return nil, goerr.Wrap(ErrConflict, "ticket is changing concurrently", goerr.V(TicketIDKey, ticketID))
}

// Assign is the administrative assignment path. Unlike SelfAssign it
// may reassign a held ticket.
func (uc *TicketUseCase) Assign(ctx context.Context, actor *auth.Token, selected types.TenantID, ticketID types.TicketID, assignee types.UserID) (*model.Ticket, error) {
	tenantID, err := uc.parent.resolveTenant(actor, selected)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsAdmin() {
		return nil, goerr.Wrap(ErrPermissionDenied, "only admins may assign tickets",
			goerr.V("role", actor.Role))
	}
	if assignee == "" {
		return nil, goerr.Wrap(ErrValidation, "assignee is required")
	}

	ticket, err := uc.parent.repo.Ticket().Get(ctx, tenantID, ticketID)
	if err != nil {
		return nil, notFound(err, "ticket not found", goerr.V(TicketIDKey, ticketID))
	}

	for attempt := 0; attempt < 2; attempt++ {
		assigned := ticket.Clone()
		assigned.AssignedTo = assignee
		switch {
		case ticket.Status == types.TicketStatusInProgress:
		case ticket.Status.CanTransitionTo(types.TicketStatusInProgress):
			assigned.Status = types.TicketStatusInProgress
		default:
			return nil, goerr.Wrap(ErrInvalidTransition, "ticket cannot be assigned in its current status",
				goerr.V(TicketIDKey, ticketID), goerr.V("status", ticket.Status))
		}
		assigned.UpdatedAt = uc.parent.now()

		updated, err := uc.parent.repo.Ticket().Put(ctx, assigned, ticket.Version)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, interfaces.ErrVersionMismatch) {
			return nil, goerr.Wrap(err, "failed to assign ticket", goerr.V(TicketIDKey, ticketID))
		}

		ticket, err = uc.parent.repo.Ticket().Get(ctx, tenantID, ticketID)
		if err != nil {
			return nil, notFound(err, "ticket not found", goerr.V(TicketIDKey, ticketID))
		}
	}

	return nil, goerr.Wrap(ErrConflict, "ticket is changing concurrently", goerr.V(TicketIDKey, ticketID))
}

// Transition moves the ticket along the legal status graph. Reopening
// from awaiting_response returns the ticket to the live queue, which
// resets its queue position.
func (uc *TicketUseCase) Transition(ctx context.Context, actor *auth.Token, selected types.TenantID, ticketID types.TicketID, next types.TicketStatus) (*model.Ticket, error) {
	tenantID, err := uc.parent.resolveTenant(actor, selected)
	if err != nil {
		return nil, err
	}
	if !next.IsValid() {
		return nil, goerr.Wrap(ErrValidation, "invalid ticket status", goerr.V("status", next))
	}

	ticket, err := uc.parent.repo.Ticket().Get(ctx, tenantID, ticketID)
	if err != nil {
		return nil, notFound(err, "ticket not found", goerr.V(TicketIDKey, ticketID))
	}

	if !policy.IsAllowed(actor.Role, ticket.Category, types.ActionUpdate) {
		return nil, goerr.Wrap(ErrPermissionDenied, "role may not act on this category",
			goerr.V("role", actor.Role), goerr.V("category", ticket.Category))
	}
	if !ticket.Status.CanTransitionTo(next) {
		return nil, goerr.Wrap(ErrInvalidTransition, "transition not allowed",
			goerr.V("from", ticket.Status), goerr.V("to", next))
	}

	now := uc.parent.now()
	moved := ticket.Clone()
	moved.Status = next
	moved.UpdatedAt = now
	if ticket.Status == types.TicketStatusAwaitingResponse && next == types.TicketStatusInProgress {
		moved.QueuePositionUpdatedAt = now
	}

	updated, err := uc.parent.repo.Ticket().Put(ctx, moved, ticket.Version)
	if err != nil {
		if errors.Is(err, interfaces.ErrVersionMismatch) {
			return nil, goerr.Wrap(ErrConflict, "ticket was modified concurrently",
				goerr.V(TicketIDKey, ticketID))
		}
		return nil, goerr.Wrap(err, "failed to transition ticket", goerr.V(TicketIDKey, ticketID))
	}

	return updated, nil
}

// ChangePriority adjusts the ticket's queue priority, which re-anchors
// its queue position.
func (uc *TicketUseCase) ChangePriority(ctx context.Context, actor *auth.Token, selected types.TenantID, ticketID types.TicketID, priority types.Priority) (*model.Ticket, error) {
	tenantID, err := uc.parent.resolveTenant(actor, selected)
	if err != nil {
		return nil, err
	}
	if !priority.IsValid() {
		return nil, goerr.Wrap(ErrValidation, "invalid priority", goerr.V("priority", priority))
	}

	ticket, err := uc.parent.repo.Ticket().Get(ctx, tenantID, ticketID)
	if err != nil {
		return nil, notFound(err, "ticket not found", goerr.V(TicketIDKey, ticketID))
	}

	if !policy.IsAllowed(actor.Role, ticket.Category, types.ActionUpdate) {
		return nil, goerr.Wrap(ErrPermissionDenied, "role may not act on this category",
			goerr.V("role", actor.Role), goerr.V("category", ticket.Category))
	}

	for attempt := 0; attempt < 2; attempt++ {
		now := uc.parent.now()
		changed := ticket.Clone()
		changed.Priority = priority
		changed.UpdatedAt = now
		changed.QueuePositionUpdatedAt = now

		updated, err := uc.parent.repo.Ticket().Put(ctx, changed, ticket.Version)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, interfaces.ErrVersionMismatch) {
			return nil, goerr.Wrap(err, "failed to change priority", goerr.V(TicketIDKey, ticketID))
		}

		ticket, err = uc.parent.repo.Ticket().Get(ctx, tenantID, ticketID)
		if err != nil {
			return nil, notFound(err, "ticket not found", goerr.V(TicketIDKey, ticketID))
		}
	}

	return nil, goerr.Wrap(ErrConflict, "ticket is changing concurrently", goerr.V(TicketIDKey, ticketID))
}

// ListQueue returns the ranked queue the actor is allowed to see:
// end users see their own tickets, analysts see unassigned or
// self-assigned tickets in their allowed categories, admins see the
// whole tenant.
func (uc *TicketUseCase) ListQueue(ctx context.Context, actor *auth.Token, selected types.TenantID, filter QueueFilter) ([]*model.Ticket, error) {
	tenantID, err := uc.parent.resolveTenant(actor, selected)
	if err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, goerr.Wrap(ErrValidation, "invalid status filter", goerr.V("status", filter.Status))
	}
	if filter.Category != "" && !filter.Category.IsValid() {
		return nil, goerr.Wrap(ErrValidation, "invalid category filter", goerr.V("category", filter.Category))
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, goerr.Wrap(ErrValidation, "limit and offset must be non-negative")
	}

	tickets, err := uc.parent.repo.Ticket().List(ctx, tenantID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list tickets", goerr.V(TenantIDKey, tenantID))
	}

	visible := make([]*model.Ticket, 0, len(tickets))
	for _, ticket := range tickets {
		if !uc.canSee(actor, ticket) {
			continue
		}
		if filter.Status != "" && ticket.Status != filter.Status {
			continue
		}
		if filter.Status == "" && ticket.Status.IsTerminal() {
			continue
		}
		if filter.Category != "" && ticket.Category != filter.Category {
			continue
		}
		visible = append(visible, ticket)
	}

	ranked := queue.Sort(visible)

	if filter.Offset >= len(ranked) {
		return []*model.Ticket{}, nil
	}
	ranked = ranked[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(ranked) {
		ranked = ranked[:filter.Limit]
	}

	return ranked, nil
}

// Get retrieves one ticket under the same visibility rules as the
// queue. An invisible ticket is indistinguishable from a missing one.
func (uc *TicketUseCase) Get(ctx context.Context, actor *auth.Token, selected types.TenantID, ticketID types.TicketID) (*model.Ticket, error) {
	tenantID, err := uc.parent.resolveTenant(actor, selected)
	if err != nil {
		return nil, err
	}

	ticket, err := uc.parent.repo.Ticket().Get(ctx, tenantID, ticketID)
	if err != nil {
		return nil, notFound(err, "ticket not found", goerr.V(TicketIDKey, ticketID))
	}
	if !uc.canSee(actor, ticket) {
		return nil, goerr.Wrap(ErrNotFound, "ticket not found", goerr.V(TicketIDKey, ticketID))
	}

	return ticket, nil
}

func (uc *TicketUseCase) canSee(actor *auth.Token, ticket *model.Ticket) bool {
	if actor.Role.IsAdmin() {
		return true
	}
	if actor.Role == types.RoleEndUser {
		return ticket.CreatedBy == actor.Sub
	}
	if !policy.IsAllowed(actor.Role, ticket.Category, types.ActionRead) {
		return false
	}
	return !ticket.IsAssigned() || ticket.AssignedTo == actor.Sub || ticket.CreatedBy == actor.Sub
}
