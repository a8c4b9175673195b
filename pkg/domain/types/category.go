package types

import "fmt"

// Category classifies a work item and gates which roles may act on it
type Category string

const (
	CategoryITSupport        Category = "it_support"
	CategoryHardwareIssue    Category = "hardware_issue"
	CategorySoftwareIssue    Category = "software_issue"
	CategoryNetworkIssue     Category = "network_issue"
	CategoryAccessRequest    Category = "access_request"
	CategoryAccountSetup     Category = "account_setup"
	CategorySecurityIncident Category = "security_incident"
	CategoryVulnerability    Category = "vulnerability"
	CategoryMalwareDetection Category = "malware_detection"
)

// AllCategories returns all valid categories
func AllCategories() []Category {
	return []Category{
		CategoryITSupport,
		CategoryHardwareIssue,
		CategorySoftwareIssue,
		CategoryNetworkIssue,
		CategoryAccessRequest,
		CategoryAccountSetup,
		CategorySecurityIncident,
		CategoryVulnerability,
		CategoryMalwareDetection,
	}
}

// IsValid checks if the category is valid
func (c Category) IsValid() bool {
	switch c {
	case CategoryITSupport,
		CategoryHardwareIssue,
		CategorySoftwareIssue,
		CategoryNetworkIssue,
		CategoryAccessRequest,
		CategoryAccountSetup,
		CategorySecurityIncident,
		CategoryVulnerability,
		CategoryMalwareDetection:
		return true
	default:
		return false
	}
}

// IsSecurity reports whether the category belongs to the security domain.
func (c Category) IsSecurity() bool {
	switch c {
	case CategorySecurityIncident, CategoryVulnerability, CategoryMalwareDetection:
		return true
	default:
		return false
	}
}

// String returns the string representation of the category
func (c Category) String() string {
	return string(c)
}

// ParseCategory parses a string into a Category
func ParseCategory(s string) (Category, error) {
	category := Category(s)
	if !category.IsValid() {
		return "", fmt.Errorf("invalid category: %s", s)
	}
	return category, nil
}
