package types

import "fmt"

// VerificationStatus records how a playbook step was completed
type VerificationStatus string

const (
	VerificationVerified VerificationStatus = "verified"
	VerificationSkipped  VerificationStatus = "skipped"
	VerificationFailed   VerificationStatus = "failed"
)

// AllVerificationStatuses returns all valid verification statuses
func AllVerificationStatuses() []VerificationStatus {
	return []VerificationStatus{
		VerificationVerified,
		VerificationSkipped,
		VerificationFailed,
	}
}

// IsValid checks if the verification status is valid
func (s VerificationStatus) IsValid() bool {
	switch s {
	case VerificationVerified, VerificationSkipped, VerificationFailed:
		return true
	default:
		return false
	}
}

// Satisfies reports whether the result counts toward execution
// completion. A failed step keeps the execution in progress but never
// fails it on its own.
func (s VerificationStatus) Satisfies() bool {
	return s == VerificationVerified || s == VerificationSkipped
}

// String returns the string representation of the verification status
func (s VerificationStatus) String() string {
	return string(s)
}

// ParseVerificationStatus parses a string into a VerificationStatus
func ParseVerificationStatus(s string) (VerificationStatus, error) {
	status := VerificationStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid verification status: %s", s)
	}
	return status, nil
}
