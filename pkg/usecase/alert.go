package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareus/pkg/domain/interfaces"
	"github.com/secmon-lab/briareus/pkg/domain/model"
	"github.com/secmon-lab/briareus/pkg/domain/model/auth"
	"github.com/secmon-lab/briareus/pkg/domain/queue"
	"github.com/secmon-lab/briareus/pkg/domain/types"
	"github.com/secmon-lab/briareus/pkg/service/notify"
	"github.com/secmon-lab/briareus/pkg/utils/async"
)

// AlertUseCase covers alert triage: ingestion, assignment, and the
// one-shot escalation into an incident ticket.
type AlertUseCase struct {
	parent *UseCases
}

// CreateAlertInput carries the caller-supplied fields for a new alert.
type CreateAlertInput struct {
	Title       string
	Description string
	Category    types.Category
	Severity    types.Severity
}

// AlertFilter narrows the alert listing.
type AlertFilter struct {
	Status types.AlertStatus
	Limit  int
	Offset int
}

// Create ingests a new alert. Staff only; end users never handle
// detections directly.
func (uc *AlertUseCase) Create(ctx context.Context, actor *auth.Token, selected types.TenantID, input CreateAlertInput) (*model.Alert, error) {
	tenantID, err := uc.parent.resolveTenant(actor, selected)
	if err != nil {
		return nil, err
	}
	if actor.Role == types.RoleEndUser {
		return nil, goerr.Wrap(ErrPermissionDenied, "end users may not create alerts")
	}

	now := uc.parent.now()
	alert := &model.Alert{
		ID:          types.NewAlertID(),
		TenantID:    tenantID,
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Severity:    input.Severity,
		Status:      types.AlertStatusNew,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := alert.Validate(); err != nil {
		return nil, goerr.Wrap(ErrValidation, err.Error())
	}

	created, err := uc.parent.repo.Alert().Create(ctx, alert)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create alert", goerr.V(AlertIDKey, alert.ID))
	}

	return created, nil
}

// Assign claims an alert for investigation, moving it from new to
// investigating in the same compare-and-set write.
func (uc *AlertUseCase) Assign(ctx context.Context, actor *auth.Token, selected types.TenantID, alertID types.AlertID) (*model.Alert, error) {
	tenantID, err := uc.parent.resolveTenant(actor, selected)
	if err != nil {
		return nil, err
	}
	if !actor.Role.CanRunPlaybooks() {
		return nil, goerr.Wrap(ErrPermissionDenied, "role may not triage alerts",
			goerr.V("role", actor.Role))
	}

	alert, err := uc.parent.repo.Alert().Get(ctx, tenantID, alertID)
	if err != nil {
		return nil, notFound(err, "alert not found", goerr.V(AlertIDKey, alertID))
	}

	for attempt := 0; attempt < 2; attempt++ {
		if alert.AssignedTo != "" && alert.AssignedTo != actor.Sub {
			return nil, goerr.Wrap(ErrAlreadyAssigned, "alert is already assigned",
				goerr.V(AlertIDKey, alertID), goerr.V("assigned_to", alert.AssignedTo))
		}

		claimed := alert.Clone()
		claimed.AssignedTo = actor.Sub
		if claimed.Status == types.AlertStatusNew {
			claimed.Status = types.AlertStatusInvestigating
		}
		claimed.UpdatedAt = uc.parent.now()

		updated, err := uc.parent.repo.Alert().Put(ctx, claimed, alert.Version)
		if err == nil {
			uc.notifyAsync(ctx, notify.Event{
				Kind:     notify.KindAlertAssigned,
				TenantID: tenantID,
				Title:    "Alert assigned",
				Text:     fmt.Sprintf("%s assigned to %s", updated.Title, actor.Name),
			})
			return updated, nil
		}
		if !errors.Is(err, interfaces.ErrVersionMismatch) {
			return nil, goerr.Wrap(err, "failed to assign alert", goerr.V(AlertIDKey, alertID))
		}

		alert, err = uc.parent.repo.Alert().Get(ctx, tenantID, alertID)
		if err != nil {
			return nil, notFound(err, "alert not found", goerr.V(AlertIDKey, alertID))
		}
	}

	return nil, goerr.Wrap(ErrConflict, "alert is changing concurrently", goerr.V(AlertIDKey, alertID))
}

// Escalate promotes the alert into an incident ticket exactly once.
// The ticket is created first; if the subsequent compare-and-set on the
// alert loses to a concurrent escalation, the orphaned ticket is
// deleted and the caller gets ErrAlreadyEscalated. Either exactly one
// incident ticket exists afterwards, or none.
func (uc *AlertUseCase) Escalate(ctx context.Context, actor *auth.Token, selected types.TenantID, alertID types.AlertID, title, description string) (*model.Alert, *model.Ticket, error) {
	tenantID, err := uc.parent.resolveTenant(actor, selected)
	if err != nil {
		return nil, nil, err
	}
	if !actor.Role.CanRunPlaybooks() {
		return nil, nil, goerr.Wrap(ErrPermissionDenied, "role may not escalate alerts",
			goerr.V("role", actor.Role))
	}

	alert, err := uc.parent.repo.Alert().Get(ctx, tenantID, alertID)
	if err != nil {
		return nil, nil, notFound(err, "alert not found", goerr.V(AlertIDKey, alertID))
	}
	if alert.Status == types.AlertStatusEscalated || alert.EscalatedIncidentID != "" {
		return nil, nil, goerr.Wrap(ErrAlreadyEscalated, "alert is already escalated",
			goerr.V(AlertIDKey, alertID), goerr.V(TicketIDKey, alert.EscalatedIncidentID))
	}

	if title == "" {
		title = alert.Title
	}
	if description == "" {
		description = alert.Description
	}

	now := uc.parent.now()
	incident := &model.Ticket{
		ID:                     types.NewTicketID(),
		TenantID:               tenantID,
		Title:                  title,
		Description:            description,
		Category:               types.CategorySecurityIncident,
		Severity:               alert.Severity,
		Priority:               alert.Severity.ToPriority(),
		Status:                 types.TicketStatusNew,
		CreatedBy:              actor.Sub,
		CreatedAt:              now,
		UpdatedAt:              now,
		QueuePositionUpdatedAt: now,
	}
	if err := incident.Validate(); err != nil {
		return nil, nil, goerr.Wrap(ErrValidation, err.Error())
	}

	createdTicket, err := uc.parent.repo.Ticket().Create(ctx, incident)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to create incident ticket", goerr.V(AlertIDKey, alertID))
	}

	escalated := alert.Clone()
	escalated.Status = types.AlertStatusEscalated
	escalated.EscalatedIncidentID = createdTicket.ID
	escalated.UpdatedAt = now

	updatedAlert, err := uc.parent.repo.Alert().Put(ctx, escalated, alert.Version)
	if err != nil {
		// Roll back the just-created ticket so a losing escalation
		// leaves nothing behind. Best effort.
		if delErr := uc.parent.repo.Ticket().Delete(ctx, tenantID, createdTicket.ID); delErr != nil {
			return nil, nil, goerr.Wrap(delErr, "failed to roll back incident ticket",
				goerr.V(AlertIDKey, alertID), goerr.V(TicketIDKey, createdTicket.ID))
		}
		if errors.Is(err, interfaces.ErrVersionMismatch) {
			return nil, nil, goerr.Wrap(ErrAlreadyEscalated, "alert was escalated concurrently",
				goerr.V(AlertIDKey, alertID))
		}
		return nil, nil, goerr.Wrap(err, "failed to escalate alert", goerr.V(AlertIDKey, alertID))
	}

	uc.notifyAsync(ctx, notify.Event{
		Kind:     notify.KindAlertEscalated,
		TenantID: tenantID,
		Title:    "Alert escalated to incident",
		Text:     fmt.Sprintf("%s escalated by %s", updatedAlert.Title, actor.Name),
	})

	return updatedAlert, createdTicket, nil
}

// List returns the tenant's alerts ranked by severity and age.
func (uc *AlertUseCase) List(ctx context.Context, actor *auth.Token, selected types.TenantID, filter AlertFilter) ([]*model.Alert, error) {
	tenantID, err := uc.parent.resolveTenant(actor, selected)
	if err != nil {
		return nil, err
	}
	if actor.Role == types.RoleEndUser {
		return nil, goerr.Wrap(ErrPermissionDenied, "end users may not list alerts")
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, goerr.Wrap(ErrValidation, "invalid status filter", goerr.V("status", filter.Status))
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, goerr.Wrap(ErrValidation, "limit and offset must be non-negative")
	}

	alerts, err := uc.parent.repo.Alert().List(ctx, tenantID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list alerts", goerr.V(TenantIDKey, tenantID))
	}

	matched := make([]*model.Alert, 0, len(alerts))
	for _, alert := range alerts {
		if filter.Status != "" && alert.Status != filter.Status {
			continue
		}
		matched = append(matched, alert)
	}

	ranked := queue.Sort(matched)

	if filter.Offset >= len(ranked) {
		return []*model.Alert{}, nil
	}
	ranked = ranked[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(ranked) {
		ranked = ranked[:filter.Limit]
	}

	return ranked, nil
}

// Get retrieves one alert.
func (uc *AlertUseCase) Get(ctx context.Context, actor *auth.Token, selected types.TenantID, alertID types.AlertID) (*model.Alert, error) {
	tenantID, err := uc.parent.resolveTenant(actor, selected)
	if err != nil {
		return nil, err
	}
	if actor.Role == types.RoleEndUser {
		return nil, goerr.Wrap(ErrPermissionDenied, "end users may not view alerts")
	}

	alert, err := uc.parent.repo.Alert().Get(ctx, tenantID, alertID)
	if err != nil {
		return nil, notFound(err, "alert not found", goerr.V(AlertIDKey, alertID))
	}

	return alert, nil
}

func (uc *AlertUseCase) notifyAsync(ctx context.Context, event notify.Event) {
	if uc.parent.notifier == nil {
		return
	}
	notifier := uc.parent.notifier
	async.Dispatch(ctx, func(ctx context.Context) error {
		return notifier.Notify(ctx, event)
	})
}
