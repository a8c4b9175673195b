// Package policy holds the fixed role/category access matrix. It is the
// single source of truth consulted before any mutating ticket operation;
// every function here is pure and total over the closed enumerations.
package policy

import (
	"github.com/secmon-lab/briareus/pkg/domain/types"
)

var helpdeskCategories = []types.Category{
	types.CategoryITSupport,
	types.CategoryHardwareIssue,
	types.CategorySoftwareIssue,
	types.CategoryNetworkIssue,
	types.CategoryAccessRequest,
	types.CategoryAccountSetup,
}

var securityCategories = []types.Category{
	types.CategorySecurityIncident,
	types.CategoryVulnerability,
	types.CategoryMalwareDetection,
}

// matrix maps each role to the categories it may act on. Fixed data,
// not configuration.
var matrix = map[types.Role][]types.Category{
	types.RoleEndUser:         {},
	types.RoleHelpdeskAnalyst: helpdeskCategories,
	types.RoleSecurityAnalyst: append(append([]types.Category{}, securityCategories...), helpdeskCategories...),
	types.RoleTenantAdmin:     types.AllCategories(),
	types.RoleSuperAdmin:      types.AllCategories(),
}

// IsAllowed reports whether the role may perform the action on work
// items of the category. Unknown roles, categories, or actions are
// denied rather than failing.
func IsAllowed(role types.Role, category types.Category, action types.Action) bool {
	if !role.IsValid() || !category.IsValid() || !action.IsValid() {
		return false
	}
	for _, c := range matrix[role] {
		if c == category {
			return true
		}
	}
	return false
}

// AllowedCategories returns the categories the role may act on, in a
// stable order. The returned slice is a copy; mutating it does not
// affect the matrix. Unknown roles get an empty set.
func AllowedCategories(role types.Role) []types.Category {
	if !role.IsValid() {
		return []types.Category{}
	}
	return append([]types.Category{}, matrix[role]...)
}
