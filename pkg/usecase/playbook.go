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

// PlaybookUseCase manages remediation playbooks and their matching
// against alerts.
type PlaybookUseCase struct {
	parent *UseCases
}

// StepInput is one step of a new playbook; order is derived from the
// slice position.
type StepInput struct {
	Description string
}

// CreatePlaybookInput carries the caller-supplied fields for a new
// playbook.
type CreatePlaybookInput struct {
	Name          string
	Description   string
	ThreatType    types.Category
	SeverityLevel types.Severity
	Steps         []StepInput
	IsTemplate    bool
}

// UpdatePlaybookInput carries the mutable playbook fields. Nil Steps
// means the steps are untouched; a non-nil value is a step edit, which
// only a deprecate-and-recreate cycle allows.
type UpdatePlaybookInput struct {
	Name        string
	Description string
	Steps       []StepInput
}

// Create registers a new active playbook. Admin only.
func (uc *PlaybookUseCase) Create(ctx context.Context, actor *auth.Token, selected types.TenantID, input CreatePlaybookInput) (*model.Playbook, error) {
	tenantID, err := uc.parent.resolveTenant(actor, selected)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsAdmin() {
		return nil, goerr.Wrap(ErrPermissionDenied, "only admins may create playbooks",
			goerr.V("role", actor.Role))
	}

	now := uc.parent.now()
	playbook := &model.Playbook{
		ID:            types.NewPlaybookID(),
		TenantID:      tenantID,
		Name:          input.Name,
		Description:   input.Description,
		ThreatType:    input.ThreatType,
		SeverityLevel: input.SeverityLevel,
		Steps:         buildSteps(input.Steps),
		Status:        types.PlaybookStatusActive,
		IsTemplate:    input.IsTemplate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := playbook.Validate(); err != nil {
		return nil, goerr.Wrap(ErrValidation, err.Error())
	}

	created, err := uc.parent.repo.Playbook().Create(ctx, playbook)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create playbook", goerr.V(PlaybookIDKey, playbook.ID))
	}

	return created, nil
}

// Update edits playbook metadata. Step edits are rejected: an active
// playbook's steps are immutable, and a deprecated one is frozen
// history.
func (uc *PlaybookUseCase) Update(ctx context.Context, actor *auth.Token, selected types.TenantID, playbookID types.PlaybookID, input UpdatePlaybookInput) (*model.Playbook, error) {
	tenantID, err := uc.parent.resolveTenant(actor, selected)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsAdmin() {
		return nil, goerr.Wrap(ErrPermissionDenied, "only admins may update playbooks",
			goerr.V("role", actor.Role))
	}

	playbook, err := uc.parent.repo.Playbook().Get(ctx, tenantID, playbookID)
	if err != nil {
		return nil, notFound(err, "playbook not found", goerr.V(PlaybookIDKey, playbookID))
	}

	if input.Steps != nil {
		if playbook.IsActive() {
			return nil, goerr.Wrap(ErrPlaybookActive, "deprecate the playbook and create a new one",
				goerr.V(PlaybookIDKey, playbookID))
		}
		return nil, goerr.Wrap(ErrAlreadyDeprecated, "deprecated playbooks are immutable",
			goerr.V(PlaybookIDKey, playbookID))
	}

	changed := playbook.Clone()
	if input.Name != "" {
		changed.Name = input.Name
	}
	if input.Description != "" {
		changed.Description = input.Description
	}
	changed.UpdatedAt = uc.parent.now()

	if err := changed.Validate(); err != nil {
		return nil, goerr.Wrap(ErrValidation, err.Error())
	}

	updated, err := uc.parent.repo.Playbook().Put(ctx, changed, playbook.Version)
	if err != nil {
		if errors.Is(err, interfaces.ErrVersionMismatch) {
			return nil, goerr.Wrap(ErrConflict, "playbook was modified concurrently",
				goerr.V(PlaybookIDKey, playbookID))
		}
		return nil, goerr.Wrap(err, "failed to update playbook", goerr.V(PlaybookIDKey, playbookID))
	}

	return updated, nil
}

// Deprecate retires a playbook. Super admin only; in-flight executions
// are unaffected.
func (uc *PlaybookUseCase) Deprecate(ctx context.Context, actor *auth.Token, selected types.TenantID, playbookID types.PlaybookID) (*model.Playbook, error) {
	tenantID, err := uc.parent.resolveTenant(actor, selected)
	if err != nil {
		return nil, err
	}
	if actor.Role != types.RoleSuperAdmin {
		return nil, goerr.Wrap(ErrPermissionDenied, "only super admins may deprecate playbooks",
			goerr.V("role", actor.Role))
	}

	playbook, err := uc.parent.repo.Playbook().Get(ctx, tenantID, playbookID)
	if err != nil {
		return nil, notFound(err, "playbook not found", goerr.V(PlaybookIDKey, playbookID))
	}
	if playbook.Status == types.PlaybookStatusDeprecated {
		return nil, goerr.Wrap(ErrAlreadyDeprecated, "playbook is already deprecated",
			goerr.V(PlaybookIDKey, playbookID))
	}

	deprecated := playbook.Clone()
	deprecated.Status = types.PlaybookStatusDeprecated
	deprecated.UpdatedAt = uc.parent.now()

	updated, err := uc.parent.repo.Playbook().Put(ctx, deprecated, playbook.Version)
	if err != nil {
		if errors.Is(err, interfaces.ErrVersionMismatch) {
			// Re-check: a concurrent deprecation is the common cause.
			current, getErr := uc.parent.repo.Playbook().Get(ctx, tenantID, playbookID)
			if getErr == nil && current.Status == types.PlaybookStatusDeprecated {
				return nil, goerr.Wrap(ErrAlreadyDeprecated, "playbook was deprecated concurrently",
					goerr.V(PlaybookIDKey, playbookID))
			}
			return nil, goerr.Wrap(ErrConflict, "playbook was modified concurrently",
				goerr.V(PlaybookIDKey, playbookID))
		}
		return nil, goerr.Wrap(err, "failed to deprecate playbook", goerr.V(PlaybookIDKey, playbookID))
	}

	return updated, nil
}

// Get retrieves one playbook.
func (uc *PlaybookUseCase) Get(ctx context.Context, actor *auth.Token, selected types.TenantID, playbookID types.PlaybookID) (*model.Playbook, error) {
	tenantID, err := uc.parent.resolveTenant(actor, selected)
	if err != nil {
		return nil, err
	}
	if !actor.Role.CanRunPlaybooks() {
		return nil, goerr.Wrap(ErrPermissionDenied, "role may not view playbooks",
			goerr.V("role", actor.Role))
	}

	playbook, err := uc.parent.repo.Playbook().Get(ctx, tenantID, playbookID)
	if err != nil {
		return nil, notFound(err, "playbook not found", goerr.V(PlaybookIDKey, playbookID))
	}

	return playbook, nil
}

// List returns the tenant's playbooks ordered by name.
func (uc *PlaybookUseCase) List(ctx context.Context, actor *auth.Token, selected types.TenantID) ([]*model.Playbook, error) {
	tenantID, err := uc.parent.resolveTenant(actor, selected)
	if err != nil {
		return nil, err
	}
	if !actor.Role.CanRunPlaybooks() {
		return nil, goerr.Wrap(ErrPermissionDenied, "role may not view playbooks",
			goerr.V("role", actor.Role))
	}

	playbooks, err := uc.parent.repo.Playbook().List(ctx, tenantID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list playbooks", goerr.V(TenantIDKey, tenantID))
	}

	sort.Slice(playbooks, func(i, j int) bool {
		if playbooks[i].Name != playbooks[j].Name {
			return playbooks[i].Name < playbooks[j].Name
		}
		return playbooks[i].ID < playbooks[j].ID
	})

	return playbooks, nil
}

// Recommendations returns the active playbooks matching an alert, with
// exact threat-type matches ranked ahead of severity-only matches.
// Pure read; no side effects.
func (uc *PlaybookUseCase) Recommendations(ctx context.Context, actor *auth.Token, selected types.TenantID, alertID types.AlertID) ([]*model.Playbook, error) {
	tenantID, err := uc.parent.resolveTenant(actor, selected)
	if err != nil {
		return nil, err
	}
	if !actor.Role.CanRunPlaybooks() {
		return nil, goerr.Wrap(ErrPermissionDenied, "role may not view playbooks",
			goerr.V("role", actor.Role))
	}

	alert, err := uc.parent.repo.Alert().Get(ctx, tenantID, alertID)
	if err != nil {
		return nil, notFound(err, "alert not found", goerr.V(AlertIDKey, alertID))
	}

	playbooks, err := uc.parent.repo.Playbook().List(ctx, tenantID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list playbooks", goerr.V(TenantIDKey, tenantID))
	}

	matched := make([]*model.Playbook, 0, len(playbooks))
	for _, playbook := range playbooks {
		if !playbook.IsActive() {
			continue
		}
		if playbook.ThreatType == alert.Category || playbook.SeverityLevel == alert.Severity {
			matched = append(matched, playbook)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		exactI := matched[i].ThreatType == alert.Category
		exactJ := matched[j].ThreatType == alert.Category
		if exactI != exactJ {
			return exactI
		}
		if matched[i].Name != matched[j].Name {
			return matched[i].Name < matched[j].Name
		}
		return matched[i].ID < matched[j].ID
	})

	return matched, nil
}

func buildSteps(inputs []StepInput) []model.Step {
	steps := make([]model.Step, len(inputs))
	for i, input := range inputs {
		steps[i] = model.Step{
			ID:          types.NewStepID(),
			Description: input.Description,
			Order:       i + 1,
		}
	}
	return steps
}
