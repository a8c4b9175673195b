package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/briareus/pkg/domain/model"
	"github.com/secmon-lab/briareus/pkg/domain/types"
	"github.com/secmon-lab/briareus/pkg/usecase"
)

func startExecution(t *testing.T, uc *usecase.UseCases) (*model.Execution, *model.Playbook) {
	t.Helper()
	ctx := context.Background()

	playbook, err := uc.Playbook.Create(ctx, tenantAdmin("a1"), "", testPlaybookInput())
	gt.NoError(t, err).Required()

	alert, err := uc.Alert.Create(ctx, securityAnalyst("s1"), "", testAlertInput())
	gt.NoError(t, err).Required()

	execution, err := uc.Execution.Start(ctx, securityAnalyst("s1"), "", playbook.ID, alert.ID, "initial triage")
	gt.NoError(t, err).Required()
	return execution, playbook
}

func TestExecutionStart(t *testing.T) {
	t.Run("starts in progress with no step results", func(t *testing.T) {
		uc := newUseCases(t)
		execution, playbook := startExecution(t, uc)

		gt.Value(t, execution.Status).Equal(types.ExecutionStatusInProgress)
		gt.Value(t, execution.PlaybookID).Equal(playbook.ID)
		gt.Value(t, execution.StartedBy).Equal(types.UserID("s1"))
		gt.Value(t, len(execution.StepResults)).Equal(0)
	})

	t.Run("helpdesk analysts may not run playbooks", func(t *testing.T) {
		uc := newUseCases(t)
		ctx := context.Background()

		playbook, err := uc.Playbook.Create(ctx, tenantAdmin("a1"), "", testPlaybookInput())
		gt.NoError(t, err).Required()
		alert, err := uc.Alert.Create(ctx, securityAnalyst("s1"), "", testAlertInput())
		gt.NoError(t, err).Required()

		_, err = uc.Execution.Start(ctx, helpdeskAnalyst("h1"), "", playbook.ID, alert.ID, "")
		gt.Bool(t, errors.Is(err, usecase.ErrPermissionDenied)).True()
	})

	t.Run("deprecated playbooks may not start new runs", func(t *testing.T) {
		uc := newUseCases(t)
		ctx := context.Background()

		playbook, err := uc.Playbook.Create(ctx, tenantAdmin("a1"), "", testPlaybookInput())
		gt.NoError(t, err).Required()
		alert, err := uc.Alert.Create(ctx, securityAnalyst("s1"), "", testAlertInput())
		gt.NoError(t, err).Required()

		_, err = uc.Playbook.Deprecate(ctx, superAdmin("root"), "", playbook.ID)
		gt.NoError(t, err).Required()

		_, err = uc.Execution.Start(ctx, securityAnalyst("s1"), "", playbook.ID, alert.ID, "")
		gt.Bool(t, errors.Is(err, usecase.ErrAlreadyDeprecated)).True()
	})

	t.Run("in-flight runs survive deprecation", func(t *testing.T) {
		uc := newUseCases(t)
		ctx := context.Background()
		execution, playbook := startExecution(t, uc)

		_, err := uc.Playbook.Deprecate(ctx, superAdmin("root"), "", playbook.ID)
		gt.NoError(t, err).Required()

		updated, _, err := uc.Execution.CompleteStep(ctx, securityAnalyst("s1"), "",
			execution.ID, playbook.Steps[0].ID, types.VerificationVerified, "done")
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Status).Equal(types.ExecutionStatusInProgress)
	})
}

func TestExecutionCompleteStep(t *testing.T) {
	t.Run("completing every step verified or skipped completes the run", func(t *testing.T) {
		uc := newUseCases(t)
		ctx := context.Background()
		execution, playbook := startExecution(t, uc)
		analyst := securityAnalyst("s1")

		updated, already, err := uc.Execution.CompleteStep(ctx, analyst, "",
			execution.ID, playbook.Steps[0].ID, types.VerificationVerified, "isolated")
		gt.NoError(t, err).Required()
		gt.Bool(t, already).False()
		gt.Value(t, updated.Status).Equal(types.ExecutionStatusInProgress)

		updated, _, err = uc.Execution.CompleteStep(ctx, analyst, "",
			execution.ID, playbook.Steps[1].ID, types.VerificationVerified, "collected")
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Status).Equal(types.ExecutionStatusInProgress)

		updated, _, err = uc.Execution.CompleteStep(ctx, analyst, "",
			execution.ID, playbook.Steps[2].ID, types.VerificationSkipped, "no reimage needed")
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Status).Equal(types.ExecutionStatusCompleted)
		gt.Bool(t, updated.CompletedAt.IsZero()).False()
	})

	t.Run("re-completing a verified step reports alreadyCompleted", func(t *testing.T) {
		uc := newUseCases(t)
		ctx := context.Background()
		execution, playbook := startExecution(t, uc)
		analyst := securityAnalyst("s1")

		first, _, err := uc.Execution.CompleteStep(ctx, analyst, "",
			execution.ID, playbook.Steps[0].ID, types.VerificationVerified, "isolated")
		gt.NoError(t, err).Required()

		again, already, err := uc.Execution.CompleteStep(ctx, analyst, "",
			execution.ID, playbook.Steps[0].ID, types.VerificationVerified, "isolated")
		gt.NoError(t, err).Required()
		gt.Bool(t, already).True()

		// An identical re-submission changes nothing.
		result := again.StepResults[playbook.Steps[0].ID]
		gt.Value(t, result.Notes).Equal("isolated")
		gt.Value(t, result.CompletedAt).Equal(first.StepResults[playbook.Steps[0].ID].CompletedAt)
	})

	t.Run("re-verifying with new notes corrects the record", func(t *testing.T) {
		uc := newUseCases(t)
		ctx := context.Background()
		execution, playbook := startExecution(t, uc)
		analyst := securityAnalyst("s1")

		first, _, err := uc.Execution.CompleteStep(ctx, analyst, "",
			execution.ID, playbook.Steps[0].ID, types.VerificationVerified, "isolated")
		gt.NoError(t, err).Required()

		corrected, already, err := uc.Execution.CompleteStep(ctx, securityAnalyst("s2"), "",
			execution.ID, playbook.Steps[0].ID, types.VerificationVerified, "isolated, host rebooted")
		gt.NoError(t, err).Required()
		gt.Bool(t, already).True()

		// The notes are updated but the completer and completion time
		// stay as first recorded.
		original := first.StepResults[playbook.Steps[0].ID]
		result := corrected.StepResults[playbook.Steps[0].ID]
		gt.Value(t, result.Notes).Equal("isolated, host rebooted")
		gt.Value(t, result.VerificationStatus).Equal(types.VerificationVerified)
		gt.Value(t, result.CompletedBy).Equal(original.CompletedBy)
		gt.Value(t, result.CompletedAt).Equal(original.CompletedAt)

		fetched, err := uc.Execution.Get(ctx, analyst, "", execution.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, fetched.StepResults[playbook.Steps[0].ID].Notes).Equal("isolated, host rebooted")
	})

	t.Run("flipping a verified result is a conflict", func(t *testing.T) {
		uc := newUseCases(t)
		ctx := context.Background()
		execution, playbook := startExecution(t, uc)
		analyst := securityAnalyst("s1")

		_, _, err := uc.Execution.CompleteStep(ctx, analyst, "",
			execution.ID, playbook.Steps[0].ID, types.VerificationVerified, "")
		gt.NoError(t, err).Required()

		_, _, err = uc.Execution.CompleteStep(ctx, analyst, "",
			execution.ID, playbook.Steps[0].ID, types.VerificationSkipped, "")
		gt.Bool(t, errors.Is(err, usecase.ErrConflict)).True()
	})

	t.Run("unverified results may be corrected", func(t *testing.T) {
		uc := newUseCases(t)
		ctx := context.Background()
		execution, playbook := startExecution(t, uc)
		analyst := securityAnalyst("s1")

		_, _, err := uc.Execution.CompleteStep(ctx, analyst, "",
			execution.ID, playbook.Steps[0].ID, types.VerificationFailed, "blocked")
		gt.NoError(t, err).Required()

		corrected, already, err := uc.Execution.CompleteStep(ctx, analyst, "",
			execution.ID, playbook.Steps[0].ID, types.VerificationVerified, "unblocked and done")
		gt.NoError(t, err).Required()
		gt.Bool(t, already).False()
		gt.Value(t, corrected.StepResults[playbook.Steps[0].ID].VerificationStatus).
			Equal(types.VerificationVerified)
	})

	t.Run("a failed step does not fail the run", func(t *testing.T) {
		uc := newUseCases(t)
		ctx := context.Background()
		execution, playbook := startExecution(t, uc)

		updated, _, err := uc.Execution.CompleteStep(ctx, securityAnalyst("s1"), "",
			execution.ID, playbook.Steps[0].ID, types.VerificationFailed, "could not isolate")
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Status).Equal(types.ExecutionStatusInProgress)
	})

	t.Run("step must belong to the playbook", func(t *testing.T) {
		uc := newUseCases(t)
		ctx := context.Background()
		execution, _ := startExecution(t, uc)

		_, _, err := uc.Execution.CompleteStep(ctx, securityAnalyst("s1"), "",
			execution.ID, types.NewStepID(), types.VerificationVerified, "")
		gt.Bool(t, errors.Is(err, usecase.ErrValidation)).True()
	})

	t.Run("invalid verification status is rejected", func(t *testing.T) {
		uc := newUseCases(t)
		ctx := context.Background()
		execution, playbook := startExecution(t, uc)

		_, _, err := uc.Execution.CompleteStep(ctx, securityAnalyst("s1"), "",
			execution.ID, playbook.Steps[0].ID, "done", "")
		gt.Bool(t, errors.Is(err, usecase.ErrValidation)).True()
	})
}

func TestExecutionMarkFailed(t *testing.T) {
	t.Run("admin failure mark is sticky", func(t *testing.T) {
		uc := newUseCases(t)
		ctx := context.Background()
		execution, playbook := startExecution(t, uc)

		failed, err := uc.Execution.MarkFailed(ctx, tenantAdmin("a1"), "", execution.ID, "wrong playbook")
		gt.NoError(t, err).Required()
		gt.Value(t, failed.Status).Equal(types.ExecutionStatusFailed)
		gt.Value(t, failed.Notes).Equal("wrong playbook")

		// Steps can no longer be completed.
		_, _, err = uc.Execution.CompleteStep(ctx, securityAnalyst("s1"), "",
			execution.ID, playbook.Steps[0].ID, types.VerificationVerified, "")
		gt.Bool(t, errors.Is(err, usecase.ErrConflict)).True()
	})

	t.Run("analysts may not mark failed", func(t *testing.T) {
		uc := newUseCases(t)
		ctx := context.Background()
		execution, _ := startExecution(t, uc)

		_, err := uc.Execution.MarkFailed(ctx, securityAnalyst("s1"), "", execution.ID, "")
		gt.Bool(t, errors.Is(err, usecase.ErrPermissionDenied)).True()
	})

	t.Run("terminal executions may not be marked again", func(t *testing.T) {
		uc := newUseCases(t)
		ctx := context.Background()
		execution, _ := startExecution(t, uc)

		_, err := uc.Execution.MarkFailed(ctx, tenantAdmin("a1"), "", execution.ID, "first")
		gt.NoError(t, err).Required()

		_, err = uc.Execution.MarkFailed(ctx, tenantAdmin("a1"), "", execution.ID, "second")
		gt.Bool(t, errors.Is(err, usecase.ErrConflict)).True()
	})
}

func TestExecutionList(t *testing.T) {
	t.Run("scoped to one alert", func(t *testing.T) {
		uc := newUseCases(t)
		ctx := context.Background()
		analyst := securityAnalyst("s1")

		playbook, err := uc.Playbook.Create(ctx, tenantAdmin("a1"), "", testPlaybookInput())
		gt.NoError(t, err).Required()

		alertA, err := uc.Alert.Create(ctx, analyst, "", testAlertInput())
		gt.NoError(t, err).Required()
		alertB, err := uc.Alert.Create(ctx, analyst, "", testAlertInput())
		gt.NoError(t, err).Required()

		execA, err := uc.Execution.Start(ctx, analyst, "", playbook.ID, alertA.ID, "")
		gt.NoError(t, err).Required()
		_, err = uc.Execution.Start(ctx, analyst, "", playbook.ID, alertB.ID, "")
		gt.NoError(t, err).Required()

		scoped, err := uc.Execution.List(ctx, analyst, "", alertA.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, scoped).Length(1)
		gt.Value(t, scoped[0].ID).Equal(execA.ID)

		all, err := uc.Execution.List(ctx, analyst, "", "")
		gt.NoError(t, err).Required()
		gt.Array(t, all).Length(2)
	})
}
