package types

import "fmt"

// PlaybookStatus represents the publication status of a playbook
type PlaybookStatus string

const (
	PlaybookStatusActive     PlaybookStatus = "active"
	PlaybookStatusDeprecated PlaybookStatus = "deprecated"
)

// AllPlaybookStatuses returns all valid playbook statuses
func AllPlaybookStatuses() []PlaybookStatus {
	return []PlaybookStatus{
		PlaybookStatusActive,
		PlaybookStatusDeprecated,
	}
}

// IsValid checks if the playbook status is valid
func (s PlaybookStatus) IsValid() bool {
	switch s {
	case PlaybookStatusActive, PlaybookStatusDeprecated:
		return true
	default:
		return false
	}
}

// String returns the string representation of the playbook status
func (s PlaybookStatus) String() string {
	return string(s)
}

// ParsePlaybookStatus parses a string into a PlaybookStatus
func ParsePlaybookStatus(s string) (PlaybookStatus, error) {
	status := PlaybookStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid playbook status: %s", s)
	}
	return status, nil
}
