package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareus/pkg/domain/interfaces"
	"github.com/secmon-lab/briareus/pkg/domain/model"
	"github.com/secmon-lab/briareus/pkg/domain/types"
)

type playbookRepository struct {
	mu        sync.RWMutex
	playbooks map[types.TenantID]map[types.PlaybookID]*model.Playbook
}

func newPlaybookRepository() *playbookRepository {
	return &playbookRepository{
		playbooks: make(map[types.TenantID]map[types.PlaybookID]*model.Playbook),
	}
}

func (r *playbookRepository) Create(ctx context.Context, playbook *model.Playbook) (*model.Playbook, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.playbooks[playbook.TenantID]; !exists {
		r.playbooks[playbook.TenantID] = make(map[types.PlaybookID]*model.Playbook)
	}

	if _, exists := r.playbooks[playbook.TenantID][playbook.ID]; exists {
		return nil, goerr.Wrap(interfaces.ErrAlreadyExists, "playbook already exists", goerr.V("id", playbook.ID))
	}

	created := playbook.Clone()
	created.Version = 1
	r.playbooks[playbook.TenantID][created.ID] = created

	return created.Clone(), nil
}

func (r *playbookRepository) Get(ctx context.Context, tenantID types.TenantID, id types.PlaybookID) (*model.Playbook, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tenant, exists := r.playbooks[tenantID]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "playbook not found", goerr.V("id", id))
	}

	playbook, exists := tenant[id]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "playbook not found", goerr.V("id", id))
	}

	return playbook.Clone(), nil
}

func (r *playbookRepository) List(ctx context.Context, tenantID types.TenantID) ([]*model.Playbook, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tenant, exists := r.playbooks[tenantID]
	if !exists {
		return []*model.Playbook{}, nil
	}

	playbooks := make([]*model.Playbook, 0, len(tenant))
	for _, playbook := range tenant {
		playbooks = append(playbooks, playbook.Clone())
	}

	return playbooks, nil
}

func (r *playbookRepository) Put(ctx context.Context, playbook *model.Playbook, expectedVersion int64) (*model.Playbook, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tenant, exists := r.playbooks[playbook.TenantID]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "playbook not found", goerr.V("id", playbook.ID))
	}

	existing, exists := tenant[playbook.ID]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "playbook not found", goerr.V("id", playbook.ID))
	}

	if existing.Version != expectedVersion {
		return nil, goerr.Wrap(interfaces.ErrVersionMismatch, "playbook was modified concurrently",
			goerr.V("id", playbook.ID),
			goerr.V("expected", expectedVersion),
			goerr.V("actual", existing.Version))
	}

	updated := playbook.Clone()
	updated.CreatedAt = existing.CreatedAt
	updated.Version = existing.Version + 1

	r.playbooks[playbook.TenantID][updated.ID] = updated
	return updated.Clone(), nil
}
