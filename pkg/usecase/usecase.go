package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareus/pkg/domain/interfaces"
	"github.com/secmon-lab/briareus/pkg/domain/model"
	"github.com/secmon-lab/briareus/pkg/domain/model/auth"
	"github.com/secmon-lab/briareus/pkg/domain/types"
	"github.com/secmon-lab/briareus/pkg/service/notify"
)

type UseCases struct {
	repo     interfaces.Repository
	registry *model.TenantRegistry
	notifier notify.Notifier
	now      func() time.Time

	Ticket    *TicketUseCase
	Alert     *AlertUseCase
	Playbook  *PlaybookUseCase
	Execution *ExecutionUseCase
}

type Option func(*UseCases)

// WithNotifier sets the notifier used for escalation and assignment
// events. Without one, notifications are silently skipped.
func WithNotifier(notifier notify.Notifier) Option {
	return func(uc *UseCases) {
		uc.notifier = notifier
	}
}

// WithClock overrides the time source, used by tests that assert
// timestamp equality.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(repo interfaces.Repository, registry *model.TenantRegistry, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:     repo,
		registry: registry,
		now:      func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Ticket = &TicketUseCase{parent: uc}
	uc.Alert = &AlertUseCase{parent: uc}
	uc.Playbook = &PlaybookUseCase{parent: uc}
	uc.Execution = &ExecutionUseCase{parent: uc}

	return uc
}

// resolveTenant determines the tenant an operation acts against from
// the actor's home tenant and the explicitly selected one, then checks
// the tenant is registered. An illegitimate selection is a permission
// failure; an unregistered tenant is a not-found.
func (uc *UseCases) resolveTenant(actor *auth.Token, selected types.TenantID) (types.TenantID, error) {
	tenantID, err := actor.EffectiveTenant(selected)
	if err != nil {
		return "", goerr.Wrap(ErrPermissionDenied, "tenant selection denied",
			goerr.V(ActorKey, actor.Sub), goerr.V(TenantIDKey, selected))
	}
	if tenantID == "" {
		return "", goerr.Wrap(ErrValidation, "tenant is required")
	}
	if uc.registry != nil && !uc.registry.Has(tenantID) {
		return "", goerr.Wrap(ErrNotFound, "unknown tenant", goerr.V(TenantIDKey, tenantID))
	}
	return tenantID, nil
}

// Tenants lists the registered tenants.
func (uc *UseCases) Tenants(ctx context.Context) []model.Tenant {
	if uc.registry == nil {
		return nil
	}
	return uc.registry.Tenants()
}

// notFound converts a repository not-found into the use case sentinel,
// passing other errors through.
func notFound(err error, msg string, vals ...goerr.Option) error {
	if errors.Is(err, interfaces.ErrNotFound) {
		return goerr.Wrap(ErrNotFound, msg, vals...)
	}
	return goerr.Wrap(err, msg, vals...)
}
