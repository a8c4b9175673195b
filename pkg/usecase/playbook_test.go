package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/briareus/pkg/domain/types"
	"github.com/secmon-lab/briareus/pkg/usecase"
)

func TestPlaybookCreate(t *testing.T) {
	t.Run("admin creates active playbook with ordered steps", func(t *testing.T) {
		uc := newUseCases(t)
		ctx := context.Background()

		created, err := uc.Playbook.Create(ctx, tenantAdmin("a1"), "", testPlaybookInput())
		gt.NoError(t, err).Required()
		gt.Value(t, created.Status).Equal(types.PlaybookStatusActive)
		gt.Array(t, created.Steps).Length(3)
		for i, step := range created.Steps {
			gt.Value(t, step.Order).Equal(i + 1)
			gt.Value(t, string(step.ID) != "").Equal(true)
		}
	})

	t.Run("analysts may not create playbooks", func(t *testing.T) {
		uc := newUseCases(t)
		ctx := context.Background()

		_, err := uc.Playbook.Create(ctx, securityAnalyst("s1"), "", testPlaybookInput())
		gt.Bool(t, errors.Is(err, usecase.ErrPermissionDenied)).True()
	})

	t.Run("requires at least one step", func(t *testing.T) {
		uc := newUseCases(t)
		ctx := context.Background()

		input := testPlaybookInput()
		input.Steps = nil
		_, err := uc.Playbook.Create(ctx, tenantAdmin("a1"), "", input)
		gt.Bool(t, errors.Is(err, usecase.ErrValidation)).True()
	})

	t.Run("requires step descriptions", func(t *testing.T) {
		uc := newUseCases(t)
		ctx := context.Background()

		input := testPlaybookInput()
		input.Steps = []usecase.StepInput{{Description: "first"}, {Description: ""}}
		_, err := uc.Playbook.Create(ctx, tenantAdmin("a1"), "", input)
		gt.Bool(t, errors.Is(err, usecase.ErrValidation)).True()
	})
}

func TestPlaybookUpdate(t *testing.T) {
	t.Run("metadata edits are allowed", func(t *testing.T) {
		uc := newUseCases(t)
		ctx := context.Background()

		created, err := uc.Playbook.Create(ctx, tenantAdmin("a1"), "", testPlaybookInput())
		gt.NoError(t, err).Required()

		updated, err := uc.Playbook.Update(ctx, tenantAdmin("a1"), "", created.ID, usecase.UpdatePlaybookInput{
			Description: "Isolate, collect, reimage",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Description).Equal("Isolate, collect, reimage")
		gt.Value(t, updated.Name).Equal(created.Name)
	})

	t.Run("step edits on an active playbook are rejected", func(t *testing.T) {
		uc := newUseCases(t)
		ctx := context.Background()

		created, err := uc.Playbook.Create(ctx, tenantAdmin("a1"), "", testPlaybookInput())
		gt.NoError(t, err).Required()

		_, err = uc.Playbook.Update(ctx, tenantAdmin("a1"), "", created.ID, usecase.UpdatePlaybookInput{
			Steps: []usecase.StepInput{{Description: "different step"}},
		})
		gt.Bool(t, errors.Is(err, usecase.ErrPlaybookActive)).True()

		// The playbook is untouched.
		after, err := uc.Playbook.Get(ctx, tenantAdmin("a1"), "", created.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, after.Steps).Length(3)
	})
}

func TestPlaybookDeprecate(t *testing.T) {
	t.Run("super admin only", func(t *testing.T) {
		uc := newUseCases(t)
		ctx := context.Background()

		created, err := uc.Playbook.Create(ctx, tenantAdmin("a1"), "", testPlaybookInput())
		gt.NoError(t, err).Required()

		_, err = uc.Playbook.Deprecate(ctx, tenantAdmin("a1"), "", created.ID)
		gt.Bool(t, errors.Is(err, usecase.ErrPermissionDenied)).True()

		deprecated, err := uc.Playbook.Deprecate(ctx, superAdmin("root"), "", created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, deprecated.Status).Equal(types.PlaybookStatusDeprecated)
	})

	t.Run("deprecating twice fails", func(t *testing.T) {
		uc := newUseCases(t)
		ctx := context.Background()

		created, err := uc.Playbook.Create(ctx, tenantAdmin("a1"), "", testPlaybookInput())
		gt.NoError(t, err).Required()

		_, err = uc.Playbook.Deprecate(ctx, superAdmin("root"), "", created.ID)
		gt.NoError(t, err).Required()

		_, err = uc.Playbook.Deprecate(ctx, superAdmin("root"), "", created.ID)
		gt.Bool(t, errors.Is(err, usecase.ErrAlreadyDeprecated)).True()
	})
}

func TestPlaybookRecommendations(t *testing.T) {
	t.Run("exact threat matches rank above severity-only matches", func(t *testing.T) {
		uc := newUseCases(t)
		ctx := context.Background()
		admin := tenantAdmin("a1")
		analyst := securityAnalyst("s1")

		exact := testPlaybookInput()
		exact.Name = "Zz exact threat match"
		exact.ThreatType = types.CategoryMalwareDetection
		exact.SeverityLevel = types.SeverityLow
		exactPB, err := uc.Playbook.Create(ctx, admin, "", exact)
		gt.NoError(t, err).Required()

		severityOnly := testPlaybookInput()
		severityOnly.Name = "Aa severity-only match"
		severityOnly.ThreatType = types.CategoryVulnerability
		severityOnly.SeverityLevel = types.SeverityHigh
		severityPB, err := uc.Playbook.Create(ctx, admin, "", severityOnly)
		gt.NoError(t, err).Required()

		unrelated := testPlaybookInput()
		unrelated.Name = "No match"
		unrelated.ThreatType = types.CategoryVulnerability
		unrelated.SeverityLevel = types.SeverityLow
		_, err = uc.Playbook.Create(ctx, admin, "", unrelated)
		gt.NoError(t, err).Required()

		alert, err := uc.Alert.Create(ctx, analyst, "", testAlertInput())
		gt.NoError(t, err).Required()

		recs, err := uc.Playbook.Recommendations(ctx, analyst, "", alert.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, recs).Length(2)
		gt.Value(t, recs[0].ID).Equal(exactPB.ID)
		gt.Value(t, recs[1].ID).Equal(severityPB.ID)
	})

	t.Run("deprecated playbooks are never recommended", func(t *testing.T) {
		uc := newUseCases(t)
		ctx := context.Background()
		analyst := securityAnalyst("s1")

		created, err := uc.Playbook.Create(ctx, tenantAdmin("a1"), "", testPlaybookInput())
		gt.NoError(t, err).Required()
		_, err = uc.Playbook.Deprecate(ctx, superAdmin("root"), "", created.ID)
		gt.NoError(t, err).Required()

		alert, err := uc.Alert.Create(ctx, analyst, "", testAlertInput())
		gt.NoError(t, err).Required()

		recs, err := uc.Playbook.Recommendations(ctx, analyst, "", alert.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, recs).Length(0)
	})
}
