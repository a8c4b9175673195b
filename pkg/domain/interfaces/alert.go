package interfaces

import (
	"context"

	"github.com/secmon-lab/briareus/pkg/domain/model"
	"github.com/secmon-lab/briareus/pkg/domain/types"
)

// AlertRepository defines the interface for Alert data access
type AlertRepository interface {
	Create(ctx context.Context, alert *model.Alert) (*model.Alert, error)
	Get(ctx context.Context, tenantID types.TenantID, id types.AlertID) (*model.Alert, error)
	List(ctx context.Context, tenantID types.TenantID) ([]*model.Alert, error)
	Put(ctx context.Context, alert *model.Alert, expectedVersion int64) (*model.Alert, error)
}
