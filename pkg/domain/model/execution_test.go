package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/briareus/pkg/domain/model"
	"github.com/secmon-lab/briareus/pkg/domain/types"
)

func threeSteps() []model.Step {
	return []model.Step{
		{ID: "s1", Description: "Isolate host", Order: 1},
		{ID: "s2", Description: "Collect artifacts", Order: 2},
		{ID: "s3", Description: "Reset credentials", Order: 3},
	}
}

func TestDeriveStatusInProgressUntilAllStepsSatisfied(t *testing.T) {
	steps := threeSteps()
	exec := &model.Execution{
		Status: types.ExecutionStatusInProgress,
		StepResults: map[types.StepID]model.StepResult{
			"s1": {VerificationStatus: types.VerificationVerified},
			"s2": {VerificationStatus: types.VerificationVerified},
		},
	}

	gt.Value(t, exec.DeriveStatus(steps)).Equal(types.ExecutionStatusInProgress)

	exec.StepResults["s3"] = model.StepResult{VerificationStatus: types.VerificationSkipped}
	gt.Value(t, exec.DeriveStatus(steps)).Equal(types.ExecutionStatusCompleted)
}

func TestDeriveStatusFailedStepDoesNotFailExecution(t *testing.T) {
	steps := threeSteps()
	exec := &model.Execution{
		Status: types.ExecutionStatusInProgress,
		StepResults: map[types.StepID]model.StepResult{
			"s1": {VerificationStatus: types.VerificationVerified},
			"s2": {VerificationStatus: types.VerificationFailed},
			"s3": {VerificationStatus: types.VerificationVerified},
		},
	}

	gt.Value(t, exec.DeriveStatus(steps)).Equal(types.ExecutionStatusInProgress)
}

func TestDeriveStatusExplicitFailureIsSticky(t *testing.T) {
	steps := threeSteps()
	exec := &model.Execution{
		Status: types.ExecutionStatusFailed,
		StepResults: map[types.StepID]model.StepResult{
			"s1": {VerificationStatus: types.VerificationVerified},
			"s2": {VerificationStatus: types.VerificationVerified},
			"s3": {VerificationStatus: types.VerificationVerified},
		},
	}

	gt.Value(t, exec.DeriveStatus(steps)).Equal(types.ExecutionStatusFailed)
}

// Identical step results yield identical derived status no matter what
// order results were recorded in.
func TestDeriveStatusIsPureFunctionOfResults(t *testing.T) {
	steps := threeSteps()
	results := map[types.StepID]model.StepResult{
		"s1": {VerificationStatus: types.VerificationVerified},
		"s2": {VerificationStatus: types.VerificationSkipped},
		"s3": {VerificationStatus: types.VerificationVerified},
	}

	forward := &model.Execution{Status: types.ExecutionStatusInProgress, StepResults: map[types.StepID]model.StepResult{}}
	backward := &model.Execution{Status: types.ExecutionStatusInProgress, StepResults: map[types.StepID]model.StepResult{}}

	for _, id := range []types.StepID{"s1", "s2", "s3"} {
		forward.StepResults[id] = results[id]
	}
	for _, id := range []types.StepID{"s3", "s2", "s1"} {
		backward.StepResults[id] = results[id]
	}

	gt.Value(t, forward.DeriveStatus(steps)).Equal(backward.DeriveStatus(steps))
	gt.Value(t, forward.DeriveStatus(steps)).Equal(types.ExecutionStatusCompleted)
}

func TestExecutionCloneIsDeep(t *testing.T) {
	exec := &model.Execution{
		ID: "e1",
		StepResults: map[types.StepID]model.StepResult{
			"s1": {VerificationStatus: types.VerificationVerified},
		},
	}

	clone := exec.Clone()
	clone.StepResults["s2"] = model.StepResult{VerificationStatus: types.VerificationSkipped}

	gt.Value(t, len(exec.StepResults)).Equal(1)
}
