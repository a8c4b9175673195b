package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareus/pkg/domain/interfaces"
	"github.com/secmon-lab/briareus/pkg/domain/model"
	"github.com/secmon-lab/briareus/pkg/domain/types"
)

type alertRepository struct {
	mu     sync.RWMutex
	alerts map[types.TenantID]map[types.AlertID]*model.Alert
}

func newAlertRepository() *alertRepository {
	return &alertRepository{
		alerts: make(map[types.TenantID]map[types.AlertID]*model.Alert),
	}
}

func (r *alertRepository) Create(ctx context.Context, alert *model.Alert) (*model.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.alerts[alert.TenantID]; !exists {
		r.alerts[alert.TenantID] = make(map[types.AlertID]*model.Alert)
	}

	if _, exists := r.alerts[alert.TenantID][alert.ID]; exists {
		return nil, goerr.Wrap(interfaces.ErrAlreadyExists, "alert already exists", goerr.V("id", alert.ID))
	}

	created := alert.Clone()
	created.Version = 1
	r.alerts[alert.TenantID][created.ID] = created

	return created.Clone(), nil
}

func (r *alertRepository) Get(ctx context.Context, tenantID types.TenantID, id types.AlertID) (*model.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tenant, exists := r.alerts[tenantID]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "alert not found", goerr.V("id", id))
	}

	alert, exists := tenant[id]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "alert not found", goerr.V("id", id))
	}

	return alert.Clone(), nil
}

func (r *alertRepository) List(ctx context.Context, tenantID types.TenantID) ([]*model.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tenant, exists := r.alerts[tenantID]
	if !exists {
		return []*model.Alert{}, nil
	}

	alerts := make([]*model.Alert, 0, len(tenant))
	for _, alert := range tenant {
		alerts = append(alerts, alert.Clone())
	}

	return alerts, nil
}

func (r *alertRepository) Put(ctx context.Context, alert *model.Alert, expectedVersion int64) (*model.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tenant, exists := r.alerts[alert.TenantID]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "alert not found", goerr.V("id", alert.ID))
	}

	existing, exists := tenant[alert.ID]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "alert not found", goerr.V("id", alert.ID))
	}

	if existing.Version != expectedVersion {
		return nil, goerr.Wrap(interfaces.ErrVersionMismatch, "alert was modified concurrently",
			goerr.V("id", alert.ID),
			goerr.V("expected", expectedVersion),
			goerr.V("actual", existing.Version))
	}

	updated := alert.Clone()
	updated.CreatedAt = existing.CreatedAt
	updated.Version = existing.Version + 1

	r.alerts[alert.TenantID][updated.ID] = updated
	return updated.Clone(), nil
}
