package usecase

import "errors"

// Sentinel errors for the use case layer. The HTTP controller maps
// these onto status codes; everything else surfaces as 500.
var (
	// Input errors
	ErrValidation = errors.New("invalid input")

	// Access control errors
	ErrPermissionDenied = errors.New("permission denied")

	// Lifecycle errors
	ErrInvalidTransition = errors.New("invalid status transition")

	// Conflict-family errors
	ErrAlreadyAssigned   = errors.New("work item is already assigned")
	ErrAlreadyEscalated  = errors.New("alert is already escalated")
	ErrAlreadyDeprecated = errors.New("playbook is already deprecated")
	ErrPlaybookActive    = errors.New("active playbook steps are immutable")
	ErrConflict          = errors.New("concurrent modification conflict")

	// Visibility errors. Cross-tenant misses surface as not-found on
	// purpose: a caller can never learn whether an ID exists in a
	// tenant it cannot see.
	ErrNotFound = errors.New("not found")
)

// Context keys for error values
const (
	TicketIDKey    = "ticket_id"
	AlertIDKey     = "alert_id"
	PlaybookIDKey  = "playbook_id"
	ExecutionIDKey = "execution_id"
	StepIDKey      = "step_id"
	TenantIDKey    = "tenant_id"
	ActorKey       = "actor"
)
