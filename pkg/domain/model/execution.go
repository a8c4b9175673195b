package model

import (
	"time"

	"github.com/secmon-lab/briareus/pkg/domain/types"
)

// StepResult is the completion record for one playbook step.
type StepResult struct {
	CompletedBy        types.UserID
	CompletedAt        time.Time
	VerificationStatus types.VerificationStatus
	Notes              string
}

// Execution is one run of a playbook against an alert. Status is never
// assigned directly by callers; it is derived from StepResults via
// DeriveStatus after every step completion, with the single exception
// of an explicit admin failure mark.
type Execution struct {
	ID          types.ExecutionID
	PlaybookID  types.PlaybookID
	AlertID     types.AlertID
	TenantID    types.TenantID
	Status      types.ExecutionStatus
	StartedBy   types.UserID
	StartedAt   time.Time
	CompletedAt time.Time
	Notes       string
	StepResults map[types.StepID]StepResult
	Version     int64
}

// DeriveStatus computes the execution status from step results alone:
// completed iff every one of the playbook's steps has a result that is
// verified or skipped. A step recorded failed keeps the run in
// progress; only an explicit failure mark yields failed, and that mark
// is sticky.
func (e *Execution) DeriveStatus(steps []Step) types.ExecutionStatus {
	if e.Status == types.ExecutionStatusFailed {
		return types.ExecutionStatusFailed
	}
	if len(steps) == 0 {
		return types.ExecutionStatusInProgress
	}
	for _, step := range steps {
		result, ok := e.StepResults[step.ID]
		if !ok || !result.VerificationStatus.Satisfies() {
			return types.ExecutionStatusInProgress
		}
	}
	return types.ExecutionStatusCompleted
}

// Clone returns a deep copy of the execution.
func (e *Execution) Clone() *Execution {
	clone := *e
	if e.StepResults != nil {
		clone.StepResults = make(map[types.StepID]StepResult, len(e.StepResults))
		for id, result := range e.StepResults {
			clone.StepResults[id] = result
		}
	}
	return &clone
}
