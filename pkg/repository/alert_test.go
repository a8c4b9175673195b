package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/briareus/pkg/domain/interfaces"
	"github.com/secmon-lab/briareus/pkg/domain/types"
)

func runAlertRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create stores alert at version 1", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		tenantID := newTenantID(t)

		alert := newTestAlert(tenantID)
		created, err := repo.Alert().Create(ctx, alert)
		gt.NoError(t, err).Required()

		gt.Value(t, created.Version).Equal(int64(1))
		gt.Value(t, created.Severity).Equal(types.SeverityHigh)
		gt.Value(t, created.Status).Equal(types.AlertStatusNew)
	})

	t.Run("Get retrieves stored alert", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		tenantID := newTenantID(t)

		created, err := repo.Alert().Create(ctx, newTestAlert(tenantID))
		gt.NoError(t, err).Required()

		retrieved, err := repo.Alert().Get(ctx, tenantID, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, retrieved.ID).Equal(created.ID)
		gt.Value(t, retrieved.Category).Equal(created.Category)
		gt.Value(t, retrieved.EscalatedIncidentID).Equal(types.TicketID(""))
	})

	t.Run("Get returns ErrNotFound for missing alert", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Alert().Get(ctx, newTenantID(t), types.NewAlertID())
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()
	})

	t.Run("List returns only the tenant's alerts", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		tenantA := newTenantID(t)
		tenantB := types.TenantID(string(tenantA) + "-other")

		alertA, err := repo.Alert().Create(ctx, newTestAlert(tenantA))
		gt.NoError(t, err).Required()
		_, err = repo.Alert().Create(ctx, newTestAlert(tenantB))
		gt.NoError(t, err).Required()

		alerts, err := repo.Alert().List(ctx, tenantA)
		gt.NoError(t, err).Required()
		gt.Array(t, alerts).Length(1)
		gt.Value(t, alerts[0].ID).Equal(alertA.ID)
	})

	t.Run("Put records escalation when version matches", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		tenantID := newTenantID(t)

		created, err := repo.Alert().Create(ctx, newTestAlert(tenantID))
		gt.NoError(t, err).Required()

		incidentID := types.NewTicketID()
		escalated := created.Clone()
		escalated.Status = types.AlertStatusEscalated
		escalated.EscalatedIncidentID = incidentID

		updated, err := repo.Alert().Put(ctx, escalated, created.Version)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Version).Equal(created.Version + 1)

		retrieved, err := repo.Alert().Get(ctx, tenantID, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, retrieved.Status).Equal(types.AlertStatusEscalated)
		gt.Value(t, retrieved.EscalatedIncidentID).Equal(incidentID)
	})

	t.Run("Put keeps the stored creation time", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		tenantID := newTenantID(t)

		created, err := repo.Alert().Create(ctx, newTestAlert(tenantID))
		gt.NoError(t, err).Required()

		modified := created.Clone()
		modified.Status = types.AlertStatusEscalated
		modified.CreatedAt = created.CreatedAt.Add(-24 * time.Hour)

		updated, err := repo.Alert().Put(ctx, modified, created.Version)
		gt.NoError(t, err).Required()
		gt.Bool(t, updated.CreatedAt.Equal(created.CreatedAt)).True()

		retrieved, err := repo.Alert().Get(ctx, tenantID, created.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, retrieved.CreatedAt.Equal(created.CreatedAt)).True()
	})

	t.Run("Put returns ErrVersionMismatch on stale version", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		tenantID := newTenantID(t)

		created, err := repo.Alert().Create(ctx, newTestAlert(tenantID))
		gt.NoError(t, err).Required()

		first := created.Clone()
		first.Status = types.AlertStatusEscalated
		first.EscalatedIncidentID = types.NewTicketID()
		_, err = repo.Alert().Put(ctx, first, created.Version)
		gt.NoError(t, err).Required()

		second := created.Clone()
		second.Status = types.AlertStatusEscalated
		second.EscalatedIncidentID = types.NewTicketID()
		_, err = repo.Alert().Put(ctx, second, created.Version)
		gt.Bool(t, errors.Is(err, interfaces.ErrVersionMismatch)).True()

		retrieved, err := repo.Alert().Get(ctx, tenantID, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, retrieved.EscalatedIncidentID).Equal(first.EscalatedIncidentID)
	})

	t.Run("Put returns ErrNotFound for missing alert", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Alert().Put(ctx, newTestAlert(newTenantID(t)), 1)
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()
	})
}

func TestMemoryAlertRepository(t *testing.T) {
	runAlertRepositoryTest(t, newMemoryRepository)
}

func TestFirestoreAlertRepository(t *testing.T) {
	runAlertRepositoryTest(t, newFirestoreRepository)
}
