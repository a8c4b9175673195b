package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareus/pkg/domain/interfaces"
	"github.com/secmon-lab/briareus/pkg/domain/model"
	"github.com/secmon-lab/briareus/pkg/domain/types"
)

type executionRepository struct {
	mu         sync.RWMutex
	executions map[types.TenantID]map[types.ExecutionID]*model.Execution
}

func newExecutionRepository() *executionRepository {
	return &executionRepository{
		executions: make(map[types.TenantID]map[types.ExecutionID]*model.Execution),
	}
}

func (r *executionRepository) Create(ctx context.Context, execution *model.Execution) (*model.Execution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.executions[execution.TenantID]; !exists {
		r.executions[execution.TenantID] = make(map[types.ExecutionID]*model.Execution)
	}

	if _, exists := r.executions[execution.TenantID][execution.ID]; exists {
		return nil, goerr.Wrap(interfaces.ErrAlreadyExists, "execution already exists", goerr.V("id", execution.ID))
	}

	created := execution.Clone()
	created.Version = 1
	r.executions[execution.TenantID][created.ID] = created

	return created.Clone(), nil
}

func (r *executionRepository) Get(ctx context.Context, tenantID types.TenantID, id types.ExecutionID) (*model.Execution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tenant, exists := r.executions[tenantID]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "execution not found", goerr.V("id", id))
	}

	execution, exists := tenant[id]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "execution not found", goerr.V("id", id))
	}

	return execution.Clone(), nil
}

func (r *executionRepository) List(ctx context.Context, tenantID types.TenantID) ([]*model.Execution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tenant, exists := r.executions[tenantID]
	if !exists {
		return []*model.Execution{}, nil
	}

	executions := make([]*model.Execution, 0, len(tenant))
	for _, execution := range tenant {
		executions = append(executions, execution.Clone())
	}

	return executions, nil
}

func (r *executionRepository) ListByAlert(ctx context.Context, tenantID types.TenantID, alertID types.AlertID) ([]*model.Execution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tenant, exists := r.executions[tenantID]
	if !exists {
		return []*model.Execution{}, nil
	}

	executions := make([]*model.Execution, 0)
	for _, execution := range tenant {
		if execution.AlertID == alertID {
			executions = append(executions, execution.Clone())
		}
	}

	return executions, nil
}

func (r *executionRepository) Put(ctx context.Context, execution *model.Execution, expectedVersion int64) (*model.Execution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tenant, exists := r.executions[execution.TenantID]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "execution not found", goerr.V("id", execution.ID))
	}

	existing, exists := tenant[execution.ID]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "execution not found", goerr.V("id", execution.ID))
	}

	if existing.Version != expectedVersion {
		return nil, goerr.Wrap(interfaces.ErrVersionMismatch, "execution was modified concurrently",
			goerr.V("id", execution.ID),
			goerr.V("expected", expectedVersion),
			goerr.V("actual", existing.Version))
	}

	updated := execution.Clone()
	updated.StartedAt = existing.StartedAt
	updated.Version = existing.Version + 1

	r.executions[execution.TenantID][updated.ID] = updated
	return updated.Clone(), nil
}
