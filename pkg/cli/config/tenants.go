package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/briareus/pkg/domain/model"
	"github.com/secmon-lab/briareus/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// Tenants holds CLI flags for the tenant configuration file.
type Tenants struct {
	path string
}

// TenantConfig represents one [[tenant]] block in the configuration.
type TenantConfig struct {
	ID          string `toml:"id"`
	Name        string `toml:"name"`
	Description string `toml:"description"`
}

// Validate checks if the TenantConfig is valid
func (t *TenantConfig) Validate() error {
	id := types.TenantID(t.ID)
	if err := id.Validate(); err != nil {
		return goerr.Wrap(err, "invalid tenant ID", goerr.V(TenantIDKey, t.ID))
	}
	if t.Name == "" {
		return goerr.Wrap(ErrMissingName, "tenant name is required", goerr.V(TenantIDKey, t.ID))
	}
	return nil
}

// TenantsFile is the top-level structure of the tenant configuration.
type TenantsFile struct {
	Tenants []TenantConfig `toml:"tenant"`
}

// Validate checks if the TenantsFile is valid
func (f *TenantsFile) Validate() error {
	if len(f.Tenants) == 0 {
		return goerr.Wrap(ErrInvalidConfig, "at least one tenant is required")
	}
	seen := make(map[string]bool, len(f.Tenants))
	for i, tenant := range f.Tenants {
		if err := tenant.Validate(); err != nil {
			return goerr.Wrap(err, "invalid tenant", goerr.V(TenantIndexKey, i))
		}
		if seen[tenant.ID] {
			return goerr.Wrap(ErrDuplicateTenantID, "tenant IDs must be unique", goerr.V(TenantIDKey, tenant.ID))
		}
		seen[tenant.ID] = true
	}
	return nil
}

// Flags returns CLI flags for tenant configuration
func (t *Tenants) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "tenant-config",
			Usage:       "Path to the tenant configuration TOML file",
			Required:    true,
			Sources:     cli.EnvVars("BRIAREUS_TENANT_CONFIG"),
			Destination: &t.path,
		},
	}
}

// Path returns the configured file path.
func (t *Tenants) Path() string {
	return t.path
}

// Load reads and validates the tenant configuration file.
func (t *Tenants) Load() (*TenantsFile, error) {
	return LoadTenantsFile(t.path)
}

// Configure loads the configuration and builds the tenant registry.
func (t *Tenants) Configure() (*TenantsFile, *model.TenantRegistry, error) {
	file, err := t.Load()
	if err != nil {
		return nil, nil, err
	}

	tenants := make([]model.Tenant, len(file.Tenants))
	for i, tenant := range file.Tenants {
		tenants[i] = model.Tenant{
			ID:          types.TenantID(tenant.ID),
			Name:        tenant.Name,
			Description: tenant.Description,
		}
	}

	registry, err := model.NewTenantRegistry(tenants)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to build tenant registry")
	}
	return file, registry, nil
}

// LoadTenantsFile loads the tenant configuration from a TOML file
func LoadTenantsFile(path string) (*TenantsFile, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(ErrConfigNotFound, "tenant configuration not found", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var file TenantsFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V(ConfigPathKey, path))
	}

	if err := file.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &file, nil
}
