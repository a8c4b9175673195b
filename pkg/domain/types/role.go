package types

import "fmt"

// Role represents the role of a user within a tenant
type Role string

const (
	RoleEndUser         Role = "end_user"
	RoleHelpdeskAnalyst Role = "helpdesk_analyst"
	RoleSecurityAnalyst Role = "security_analyst"
	RoleTenantAdmin     Role = "tenant_admin"
	RoleSuperAdmin      Role = "super_admin"
)

// AllRoles returns all valid roles
func AllRoles() []Role {
	return []Role{
		RoleEndUser,
		RoleHelpdeskAnalyst,
		RoleSecurityAnalyst,
		RoleTenantAdmin,
		RoleSuperAdmin,
	}
}

// IsValid checks if the role is valid
func (r Role) IsValid() bool {
	switch r {
	case RoleEndUser,
		RoleHelpdeskAnalyst,
		RoleSecurityAnalyst,
		RoleTenantAdmin,
		RoleSuperAdmin:
		return true
	default:
		return false
	}
}

// IsCrossTenant reports whether the role may operate against a selected
// tenant other than its home tenant.
func (r Role) IsCrossTenant() bool {
	switch r {
	case RoleHelpdeskAnalyst, RoleSecurityAnalyst, RoleSuperAdmin:
		return true
	default:
		return false
	}
}

// IsAdmin reports whether the role has tenant administration privileges.
func (r Role) IsAdmin() bool {
	return r == RoleTenantAdmin || r == RoleSuperAdmin
}

// CanRunPlaybooks reports whether the role may start playbook executions
// and complete steps.
func (r Role) CanRunPlaybooks() bool {
	switch r {
	case RoleSecurityAnalyst, RoleTenantAdmin, RoleSuperAdmin:
		return true
	default:
		return false
	}
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// ParseRole parses a string into a Role
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", fmt.Errorf("invalid role: %s", s)
	}
	return role, nil
}
