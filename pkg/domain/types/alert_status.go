package types

import "fmt"

// AlertStatus represents the triage status of an alert
type AlertStatus string

const (
	AlertStatusNew           AlertStatus = "new"
	AlertStatusInvestigating AlertStatus = "investigating"
	AlertStatusEscalated     AlertStatus = "escalated"
)

// AllAlertStatuses returns all valid alert statuses
func AllAlertStatuses() []AlertStatus {
	return []AlertStatus{
		AlertStatusNew,
		AlertStatusInvestigating,
		AlertStatusEscalated,
	}
}

// IsValid checks if the alert status is valid
func (s AlertStatus) IsValid() bool {
	switch s {
	case AlertStatusNew, AlertStatusInvestigating, AlertStatusEscalated:
		return true
	default:
		return false
	}
}

// String returns the string representation of the alert status
func (s AlertStatus) String() string {
	return string(s)
}

// ParseAlertStatus parses a string into an AlertStatus
func ParseAlertStatus(s string) (AlertStatus, error) {
	status := AlertStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid alert status: %s", s)
	}
	return status, nil
}
