package interfaces

import (
	"context"

	"github.com/secmon-lab/briareus/pkg/domain/model"
	"github.com/secmon-lab/briareus/pkg/domain/types"
)

// ExecutionRepository defines the interface for Execution data access
type ExecutionRepository interface {
	Create(ctx context.Context, execution *model.Execution) (*model.Execution, error)
	Get(ctx context.Context, tenantID types.TenantID, id types.ExecutionID) (*model.Execution, error)
	List(ctx context.Context, tenantID types.TenantID) ([]*model.Execution, error)
	ListByAlert(ctx context.Context, tenantID types.TenantID, alertID types.AlertID) ([]*model.Execution, error)
	Put(ctx context.Context, execution *model.Execution, expectedVersion int64) (*model.Execution, error)
}
