package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/briareus/pkg/domain/interfaces"
	"github.com/secmon-lab/briareus/pkg/domain/model"
	"github.com/secmon-lab/briareus/pkg/domain/types"
	"github.com/secmon-lab/briareus/pkg/repository/firestore"
	"github.com/secmon-lab/briareus/pkg/repository/memory"
)

func newMemoryRepository(t *testing.T) interfaces.Repository {
	t.Helper()
	return memory.New()
}

func newFirestoreRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}
	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")

	ctx := context.Background()
	repo, err := firestore.New(ctx, projectID, databaseID)
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

// newTenantID returns a tenant ID unique to this test run so that
// suites sharing a Firestore database never observe each other's data.
func newTenantID(t *testing.T) types.TenantID {
	t.Helper()
	id := types.TenantID(fmt.Sprintf("test-%d", time.Now().UnixNano()))
	gt.NoError(t, id.Validate()).Required()
	return id
}

func newTestTicket(tenantID types.TenantID) *model.Ticket {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &model.Ticket{
		ID:                     types.NewTicketID(),
		TenantID:               tenantID,
		Title:                  "VPN connection drops",
		Description:            "VPN session terminates after a few minutes",
		Category:               types.CategoryNetworkIssue,
		Severity:               types.SeverityMedium,
		Priority:               types.PriorityMedium,
		Status:                 types.TicketStatusNew,
		CreatedBy:              "user-1",
		Tags:                   []string{"vpn"},
		CreatedAt:              now,
		UpdatedAt:              now,
		QueuePositionUpdatedAt: now,
	}
}

func newTestAlert(tenantID types.TenantID) *model.Alert {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &model.Alert{
		ID:          types.NewAlertID(),
		TenantID:    tenantID,
		Title:       "Suspicious login burst",
		Description: "Multiple failed logins followed by a success",
		Category:    types.CategorySecurityIncident,
		Severity:    types.SeverityHigh,
		Status:      types.AlertStatusNew,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func newTestPlaybook(tenantID types.TenantID) *model.Playbook {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &model.Playbook{
		ID:            types.NewPlaybookID(),
		TenantID:      tenantID,
		Name:          "Malware containment",
		Description:   "Isolate the host and collect artifacts",
		ThreatType:    types.CategoryMalwareDetection,
		SeverityLevel: types.SeverityHigh,
		Steps: []model.Step{
			{ID: types.NewStepID(), Description: "Isolate host from network", Order: 1},
			{ID: types.NewStepID(), Description: "Collect memory image", Order: 2},
		},
		Status:    types.PlaybookStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func newTestExecution(tenantID types.TenantID, playbookID types.PlaybookID, alertID types.AlertID) *model.Execution {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &model.Execution{
		ID:          types.NewExecutionID(),
		PlaybookID:  playbookID,
		AlertID:     alertID,
		TenantID:    tenantID,
		Status:      types.ExecutionStatusInProgress,
		StartedBy:   "analyst-1",
		StartedAt:   now,
		StepResults: map[types.StepID]model.StepResult{},
	}
}
