package usecase

import (
	"context"
	"errors"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareus/pkg/domain/interfaces"
	"github.com/secmon-lab/briareus/pkg/domain/model"
	"github.com/secmon-lab/briareus/pkg/domain/model/auth"
	"github.com/secmon-lab/briareus/pkg/domain/types"
)

// ExecutionUseCase runs playbooks against alerts. Execution status is
// never set directly by callers: it is recomputed from step results
// after every write, with the explicit admin failure mark as the only
// exception.
type ExecutionUseCase struct {
	parent *UseCases
}

// Start begins a run of an active playbook against an alert.
func (uc *ExecutionUseCase) Start(ctx context.Context, actor *auth.Token, selected types.TenantID, playbookID types.PlaybookID, alertID types.AlertID, notes string) (*model.Execution, error) {
	tenantID, err := uc.parent.resolveTenant(actor, selected)
	if err != nil {
		return nil, err
	}
	if !actor.Role.CanRunPlaybooks() {
		return nil, goerr.Wrap(ErrPermissionDenied, "role may not run playbooks",
			goerr.V("role", actor.Role))
	}

	playbook, err := uc.parent.repo.Playbook().Get(ctx, tenantID, playbookID)
	if err != nil {
		return nil, notFound(err, "playbook not found", goerr.V(PlaybookIDKey, playbookID))
	}
	if !playbook.IsActive() {
		return nil, goerr.Wrap(ErrAlreadyDeprecated, "deprecated playbooks may not start new runs",
			goerr.V(PlaybookIDKey, playbookID))
	}

	if _, err := uc.parent.repo.Alert().Get(ctx, tenantID, alertID); err != nil {
		return nil, notFound(err, "alert not found", goerr.V(AlertIDKey, alertID))
	}

	execution := &model.Execution{
		ID:          types.NewExecutionID(),
		PlaybookID:  playbookID,
		AlertID:     alertID,
		TenantID:    tenantID,
		Status:      types.ExecutionStatusInProgress,
		StartedBy:   actor.Sub,
		StartedAt:   uc.parent.now(),
		Notes:       notes,
		StepResults: map[types.StepID]model.StepResult{},
	}

	created, err := uc.parent.repo.Execution().Create(ctx, execution)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create execution", goerr.V(ExecutionIDKey, execution.ID))
	}

	return created, nil
}

// CompleteStep records the outcome of one playbook step. A verified
// result is sticky: re-verifying is reported via the alreadyCompleted
// flag without an error and may correct the notes, but the recorded
// completer and completion time stay as first written, and flipping a
// verified result to anything else is a conflict. Unverified results
// (skipped, failed) may be corrected. The execution status is
// recomputed from the step results after the write.
func (uc *ExecutionUseCase) CompleteStep(ctx context.Context, actor *auth.Token, selected types.TenantID, executionID types.ExecutionID, stepID types.StepID, verification types.VerificationStatus, notes string) (*model.Execution, bool, error) {
	tenantID, err := uc.parent.resolveTenant(actor, selected)
	if err != nil {
		return nil, false, err
	}
	if !actor.Role.CanRunPlaybooks() {
		return nil, false, goerr.Wrap(ErrPermissionDenied, "role may not run playbooks",
			goerr.V("role", actor.Role))
	}
	if !verification.IsValid() {
		return nil, false, goerr.Wrap(ErrValidation, "invalid verification status",
			goerr.V("verification", verification))
	}

	execution, err := uc.parent.repo.Execution().Get(ctx, tenantID, executionID)
	if err != nil {
		return nil, false, notFound(err, "execution not found", goerr.V(ExecutionIDKey, executionID))
	}

	playbook, err := uc.parent.repo.Playbook().Get(ctx, tenantID, execution.PlaybookID)
	if err != nil {
		return nil, false, notFound(err, "playbook not found", goerr.V(PlaybookIDKey, execution.PlaybookID))
	}
	if !playbook.HasStep(stepID) {
		return nil, false, goerr.Wrap(ErrValidation, "step does not belong to the playbook",
			goerr.V(StepIDKey, stepID), goerr.V(PlaybookIDKey, playbook.ID))
	}

	for attempt := 0; attempt < 2; attempt++ {
		if execution.Status == types.ExecutionStatusFailed {
			return nil, false, goerr.Wrap(ErrConflict, "execution is marked failed",
				goerr.V(ExecutionIDKey, executionID))
		}

		if existing, ok := execution.StepResults[stepID]; ok {
			if existing.VerificationStatus == types.VerificationVerified {
				if verification != types.VerificationVerified {
					return nil, false, goerr.Wrap(ErrConflict, "verified step result is immutable",
						goerr.V(StepIDKey, stepID), goerr.V("verification", verification))
				}
				if notes == "" || notes == existing.Notes {
					return execution, true, nil
				}

				// Re-verifying with new notes corrects the record. The
				// completer and completion time stay as first written.
				corrected := existing
				corrected.Notes = notes
				modified := execution.Clone()
				modified.StepResults[stepID] = corrected

				updated, err := uc.parent.repo.Execution().Put(ctx, modified, execution.Version)
				if err == nil {
					return updated, true, nil
				}
				if !errors.Is(err, interfaces.ErrVersionMismatch) {
					return nil, false, goerr.Wrap(err, "failed to correct step notes",
						goerr.V(ExecutionIDKey, executionID), goerr.V(StepIDKey, stepID))
				}

				execution, err = uc.parent.repo.Execution().Get(ctx, tenantID, executionID)
				if err != nil {
					return nil, false, notFound(err, "execution not found", goerr.V(ExecutionIDKey, executionID))
				}
				continue
			}
		}

		now := uc.parent.now()
		modified := execution.Clone()
		modified.StepResults[stepID] = model.StepResult{
			CompletedBy:        actor.Sub,
			CompletedAt:        now,
			VerificationStatus: verification,
			Notes:              notes,
		}
		modified.Status = modified.DeriveStatus(playbook.Steps)
		if modified.Status == types.ExecutionStatusCompleted && execution.CompletedAt.IsZero() {
			modified.CompletedAt = now
		}

		updated, err := uc.parent.repo.Execution().Put(ctx, modified, execution.Version)
		if err == nil {
			return updated, false, nil
		}
		if !errors.Is(err, interfaces.ErrVersionMismatch) {
			return nil, false, goerr.Wrap(err, "failed to record step result",
				goerr.V(ExecutionIDKey, executionID), goerr.V(StepIDKey, stepID))
		}

		// Lost the race: reload and re-evaluate against whatever the
		// winning writer recorded.
		execution, err = uc.parent.repo.Execution().Get(ctx, tenantID, executionID)
		if err != nil {
			return nil, false, notFound(err, "execution not found", goerr.V(ExecutionIDKey, executionID))
		}
	}

	return nil, false, goerr.Wrap(ErrConflict, "execution is changing concurrently",
		goerr.V(ExecutionIDKey, executionID))
}

// MarkFailed is the explicit administrative failure mark, the only path
// to a failed execution. A step recorded failed never fails the run on
// its own. The mark is sticky.
func (uc *ExecutionUseCase) MarkFailed(ctx context.Context, actor *auth.Token, selected types.TenantID, executionID types.ExecutionID, reason string) (*model.Execution, error) {
	tenantID, err := uc.parent.resolveTenant(actor, selected)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsAdmin() {
		return nil, goerr.Wrap(ErrPermissionDenied, "only admins may mark executions failed",
			goerr.V("role", actor.Role))
	}

	execution, err := uc.parent.repo.Execution().Get(ctx, tenantID, executionID)
	if err != nil {
		return nil, notFound(err, "execution not found", goerr.V(ExecutionIDKey, executionID))
	}
	if execution.Status.IsTerminal() {
		return nil, goerr.Wrap(ErrConflict, "execution is already terminal",
			goerr.V(ExecutionIDKey, executionID), goerr.V("status", execution.Status))
	}

	now := uc.parent.now()
	failed := execution.Clone()
	failed.Status = types.ExecutionStatusFailed
	failed.CompletedAt = now
	if reason != "" {
		failed.Notes = reason
	}

	updated, err := uc.parent.repo.Execution().Put(ctx, failed, execution.Version)
	if err != nil {
		if errors.Is(err, interfaces.ErrVersionMismatch) {
			return nil, goerr.Wrap(ErrConflict, "execution was modified concurrently",
				goerr.V(ExecutionIDKey, executionID))
		}
		return nil, goerr.Wrap(err, "failed to mark execution failed", goerr.V(ExecutionIDKey, executionID))
	}

	return updated, nil
}

// Get retrieves one execution.
func (uc *ExecutionUseCase) Get(ctx context.Context, actor *auth.Token, selected types.TenantID, executionID types.ExecutionID) (*model.Execution, error) {
	tenantID, err := uc.parent.resolveTenant(actor, selected)
	if err != nil {
		return nil, err
	}
	if !actor.Role.CanRunPlaybooks() {
		return nil, goerr.Wrap(ErrPermissionDenied, "role may not view executions",
			goerr.V("role", actor.Role))
	}

	execution, err := uc.parent.repo.Execution().Get(ctx, tenantID, executionID)
	if err != nil {
		return nil, notFound(err, "execution not found", goerr.V(ExecutionIDKey, executionID))
	}

	return execution, nil
}

// List returns the tenant's executions, optionally scoped to one alert,
// newest first.
func (uc *ExecutionUseCase) List(ctx context.Context, actor *auth.Token, selected types.TenantID, alertID types.AlertID) ([]*model.Execution, error) {
	tenantID, err := uc.parent.resolveTenant(actor, selected)
	if err != nil {
		return nil, err
	}
	if !actor.Role.CanRunPlaybooks() {
		return nil, goerr.Wrap(ErrPermissionDenied, "role may not view executions",
			goerr.V("role", actor.Role))
	}

	var executions []*model.Execution
	if alertID != "" {
		executions, err = uc.parent.repo.Execution().ListByAlert(ctx, tenantID, alertID)
	} else {
		executions, err = uc.parent.repo.Execution().List(ctx, tenantID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list executions", goerr.V(TenantIDKey, tenantID))
	}

	sort.Slice(executions, func(i, j int) bool {
		if !executions[i].StartedAt.Equal(executions[j].StartedAt) {
			return executions[i].StartedAt.After(executions[j].StartedAt)
		}
		return executions[i].ID < executions[j].ID
	})

	return executions, nil
}
