package interfaces

import (
	"context"

	"github.com/secmon-lab/briareus/pkg/domain/model"
	"github.com/secmon-lab/briareus/pkg/domain/types"
)

// PlaybookRepository defines the interface for Playbook data access
type PlaybookRepository interface {
	Create(ctx context.Context, playbook *model.Playbook) (*model.Playbook, error)
	Get(ctx context.Context, tenantID types.TenantID, id types.PlaybookID) (*model.Playbook, error)
	List(ctx context.Context, tenantID types.TenantID) ([]*model.Playbook, error)
	Put(ctx context.Context, playbook *model.Playbook, expectedVersion int64) (*model.Playbook, error)
}
