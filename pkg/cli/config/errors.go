package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound    = goerr.New("configuration file not found")
	ErrInvalidConfig     = goerr.New("invalid configuration")
	ErrDuplicateTenantID = goerr.New("duplicate tenant ID")
	ErrMissingName       = goerr.New("name is required")
	ErrInvalidIdentity   = goerr.New("invalid identity configuration")
)

// Context keys for error values
const (
	ConfigPathKey  = "config_path"
	TenantIDKey    = "tenant_id"
	TenantIndexKey = "tenant_index"
)
