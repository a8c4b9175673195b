package model

import (
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareus/pkg/domain/types"
)

// Tenant is one customer organization, the isolation boundary for all
// work items.
type Tenant struct {
	ID          types.TenantID
	Name        string
	Description string
}

// TenantRegistry holds the configured tenants. It is built once at
// startup from configuration and is read-only afterwards.
type TenantRegistry struct {
	tenants map[types.TenantID]Tenant
}

// NewTenantRegistry builds a registry from the given tenants.
func NewTenantRegistry(tenants []Tenant) (*TenantRegistry, error) {
	registry := &TenantRegistry{
		tenants: make(map[types.TenantID]Tenant, len(tenants)),
	}
	for _, tenant := range tenants {
		if err := tenant.ID.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid tenant ID")
		}
		if tenant.Name == "" {
			return nil, goerr.New("tenant name is required", goerr.V("id", tenant.ID))
		}
		if _, exists := registry.tenants[tenant.ID]; exists {
			return nil, goerr.New("duplicate tenant ID", goerr.V("id", tenant.ID))
		}
		registry.tenants[tenant.ID] = tenant
	}
	return registry, nil
}

// Get returns the tenant for the given ID.
func (r *TenantRegistry) Get(id types.TenantID) (Tenant, error) {
	tenant, exists := r.tenants[id]
	if !exists {
		return Tenant{}, goerr.New("tenant not found", goerr.V("id", id))
	}
	return tenant, nil
}

// Has reports whether the tenant is registered.
func (r *TenantRegistry) Has(id types.TenantID) bool {
	_, exists := r.tenants[id]
	return exists
}

// Tenants returns all tenants ordered by ID.
func (r *TenantRegistry) Tenants() []Tenant {
	tenants := make([]Tenant, 0, len(r.tenants))
	for _, tenant := range r.tenants {
		tenants = append(tenants, tenant)
	}
	sort.Slice(tenants, func(i, j int) bool { return tenants[i].ID < tenants[j].ID })
	return tenants
}
