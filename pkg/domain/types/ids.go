package types

import (
	"regexp"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// TenantID identifies the isolation boundary every entity belongs to
type TenantID string

var tenantIDPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Validate checks if the TenantID is valid
func (t TenantID) Validate() error {
	if t == "" {
		return goerr.New("tenant ID cannot be empty")
	}
	if !tenantIDPattern.MatchString(string(t)) {
		return goerr.New("tenant ID must be lowercase alphanumeric with hyphens", goerr.V("id", t))
	}
	return nil
}

// String returns the string representation of TenantID
func (t TenantID) String() string {
	return string(t)
}

// UserID identifies a user as asserted by the external identity provider
type UserID string

func (u UserID) String() string { return string(u) }

// TicketID identifies a ticket
type TicketID string

// NewTicketID returns a new random TicketID
func NewTicketID() TicketID { return TicketID(uuid.NewString()) }

func (t TicketID) String() string { return string(t) }

// AlertID identifies an alert
type AlertID string

// NewAlertID returns a new random AlertID
func NewAlertID() AlertID { return AlertID(uuid.NewString()) }

func (a AlertID) String() string { return string(a) }

// PlaybookID identifies a playbook
type PlaybookID string

// NewPlaybookID returns a new random PlaybookID
func NewPlaybookID() PlaybookID { return PlaybookID(uuid.NewString()) }

func (p PlaybookID) String() string { return string(p) }

// StepID identifies a step within a playbook
type StepID string

// NewStepID returns a new random StepID
func NewStepID() StepID { return StepID(uuid.NewString()) }

func (s StepID) String() string { return string(s) }

// ExecutionID identifies one run of a playbook
type ExecutionID string

// NewExecutionID returns a new random ExecutionID
func NewExecutionID() ExecutionID { return ExecutionID(uuid.NewString()) }

func (e ExecutionID) String() string { return string(e) }
