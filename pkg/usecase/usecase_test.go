package usecase_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/briareus/pkg/domain/model"
	"github.com/secmon-lab/briareus/pkg/domain/model/auth"
	"github.com/secmon-lab/briareus/pkg/domain/types"
	"github.com/secmon-lab/briareus/pkg/repository/memory"
	"github.com/secmon-lab/briareus/pkg/usecase"
)

const (
	testTenant     = types.TenantID("acme")
	otherTenant    = types.TenantID("globex")
	unlistedTenant = types.TenantID("initech")
)

func newTestRegistry(t *testing.T) *model.TenantRegistry {
	t.Helper()
	registry, err := model.NewTenantRegistry([]model.Tenant{
		{ID: testTenant, Name: "Acme Corp"},
		{ID: otherTenant, Name: "Globex"},
	})
	gt.NoError(t, err).Required()
	return registry
}

func newUseCases(t *testing.T, opts ...usecase.Option) *usecase.UseCases {
	t.Helper()
	return usecase.New(memory.New(), newTestRegistry(t), opts...)
}

func endUser(id types.UserID) *auth.Token {
	return &auth.Token{Sub: id, Role: types.RoleEndUser, TenantID: testTenant}
}

func helpdeskAnalyst(id types.UserID) *auth.Token {
	return &auth.Token{Sub: id, Role: types.RoleHelpdeskAnalyst, TenantID: testTenant}
}

func securityAnalyst(id types.UserID) *auth.Token {
	return &auth.Token{Sub: id, Role: types.RoleSecurityAnalyst, TenantID: testTenant}
}

func tenantAdmin(id types.UserID) *auth.Token {
	return &auth.Token{Sub: id, Role: types.RoleTenantAdmin, TenantID: testTenant}
}

func superAdmin(id types.UserID) *auth.Token {
	return &auth.Token{Sub: id, Role: types.RoleSuperAdmin, TenantID: testTenant}
}

func helpdeskTicketInput() usecase.CreateTicketInput {
	return usecase.CreateTicketInput{
		Title:       "Laptop will not boot",
		Description: "Black screen on power on",
		Category:    types.CategoryHardwareIssue,
		Severity:    types.SeverityMedium,
		Priority:    types.PriorityMedium,
	}
}

func securityTicketInput() usecase.CreateTicketInput {
	return usecase.CreateTicketInput{
		Title:       "Suspicious process on host-42",
		Description: "Unknown binary beaconing outbound",
		Category:    types.CategorySecurityIncident,
		Severity:    types.SeverityHigh,
		Priority:    types.PriorityHigh,
	}
}

func testAlertInput() usecase.CreateAlertInput {
	return usecase.CreateAlertInput{
		Title:       "Malware signature hit",
		Description: "EDR flagged a dropper on host-42",
		Category:    types.CategoryMalwareDetection,
		Severity:    types.SeverityHigh,
	}
}

func testPlaybookInput() usecase.CreatePlaybookInput {
	return usecase.CreatePlaybookInput{
		Name:          "Malware containment",
		Description:   "Isolate and collect",
		ThreatType:    types.CategoryMalwareDetection,
		SeverityLevel: types.SeverityHigh,
		Steps: []usecase.StepInput{
			{Description: "Isolate host from network"},
			{Description: "Collect memory image"},
			{Description: "Reimage host"},
		},
	}
}
