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

func runTicketRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create stores ticket at version 1", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		tenantID := newTenantID(t)

		ticket := newTestTicket(tenantID)
		created, err := repo.Ticket().Create(ctx, ticket)
		gt.NoError(t, err).Required()

		gt.Value(t, created.Version).Equal(int64(1))
		gt.Value(t, created.ID).Equal(ticket.ID)
		gt.Value(t, created.Title).Equal(ticket.Title)
	})

	t.Run("Create rejects duplicate ID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		tenantID := newTenantID(t)

		ticket := newTestTicket(tenantID)
		_, err := repo.Ticket().Create(ctx, ticket)
		gt.NoError(t, err).Required()

		_, err = repo.Ticket().Create(ctx, ticket)
		gt.Bool(t, errors.Is(err, interfaces.ErrAlreadyExists)).True()
	})

	t.Run("Get retrieves stored ticket", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		tenantID := newTenantID(t)

		created, err := repo.Ticket().Create(ctx, newTestTicket(tenantID))
		gt.NoError(t, err).Required()

		retrieved, err := repo.Ticket().Get(ctx, tenantID, created.ID)
		gt.NoError(t, err).Required()

		gt.Value(t, retrieved.ID).Equal(created.ID)
		gt.Value(t, retrieved.Category).Equal(created.Category)
		gt.Value(t, retrieved.Priority).Equal(created.Priority)
		gt.Array(t, retrieved.Tags).Length(1)
		gt.Value(t, retrieved.Tags[0]).Equal("vpn")
		gt.Bool(t, retrieved.CreatedAt.Equal(created.CreatedAt)).True()
		gt.Bool(t, retrieved.QueuePositionUpdatedAt.Equal(created.QueuePositionUpdatedAt)).True()
	})

	t.Run("Get returns ErrNotFound for missing ticket", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		tenantID := newTenantID(t)

		_, err := repo.Ticket().Get(ctx, tenantID, types.NewTicketID())
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()
	})

	t.Run("Get does not cross tenant boundaries", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		tenantA := newTenantID(t)
		tenantB := types.TenantID(string(tenantA) + "-other")

		created, err := repo.Ticket().Create(ctx, newTestTicket(tenantA))
		gt.NoError(t, err).Required()

		_, err = repo.Ticket().Get(ctx, tenantB, created.ID)
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()
	})

	t.Run("List returns only the tenant's tickets", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		tenantA := newTenantID(t)
		tenantB := types.TenantID(string(tenantA) + "-other")

		ticketA1, err := repo.Ticket().Create(ctx, newTestTicket(tenantA))
		gt.NoError(t, err).Required()
		ticketA2, err := repo.Ticket().Create(ctx, newTestTicket(tenantA))
		gt.NoError(t, err).Required()
		_, err = repo.Ticket().Create(ctx, newTestTicket(tenantB))
		gt.NoError(t, err).Required()

		tickets, err := repo.Ticket().List(ctx, tenantA)
		gt.NoError(t, err).Required()
		gt.Array(t, tickets).Length(2)

		found := map[types.TicketID]bool{}
		for _, ticket := range tickets {
			found[ticket.ID] = true
		}
		gt.Bool(t, found[ticketA1.ID]).True()
		gt.Bool(t, found[ticketA2.ID]).True()
	})

	t.Run("List returns empty slice for unknown tenant", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		tickets, err := repo.Ticket().List(ctx, newTenantID(t))
		gt.NoError(t, err).Required()
		gt.Array(t, tickets).Length(0)
	})

	t.Run("Put replaces ticket when version matches", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		tenantID := newTenantID(t)

		created, err := repo.Ticket().Create(ctx, newTestTicket(tenantID))
		gt.NoError(t, err).Required()

		modified := created.Clone()
		modified.Status = types.TicketStatusInProgress
		modified.AssignedTo = "analyst-1"

		updated, err := repo.Ticket().Put(ctx, modified, created.Version)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Version).Equal(created.Version + 1)
		gt.Value(t, updated.Status).Equal(types.TicketStatusInProgress)

		retrieved, err := repo.Ticket().Get(ctx, tenantID, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, retrieved.AssignedTo).Equal(types.UserID("analyst-1"))
		gt.Value(t, retrieved.Version).Equal(created.Version + 1)
	})

	t.Run("Put keeps the stored creation time", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		tenantID := newTenantID(t)

		created, err := repo.Ticket().Create(ctx, newTestTicket(tenantID))
		gt.NoError(t, err).Required()

		// A caller must not be able to rewrite history through an update.
		modified := created.Clone()
		modified.AssignedTo = "analyst-1"
		modified.CreatedAt = created.CreatedAt.Add(-24 * time.Hour)

		updated, err := repo.Ticket().Put(ctx, modified, created.Version)
		gt.NoError(t, err).Required()
		gt.Bool(t, updated.CreatedAt.Equal(created.CreatedAt)).True()

		retrieved, err := repo.Ticket().Get(ctx, tenantID, created.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, retrieved.CreatedAt.Equal(created.CreatedAt)).True()
	})

	t.Run("Put returns ErrVersionMismatch on stale version", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		tenantID := newTenantID(t)

		created, err := repo.Ticket().Create(ctx, newTestTicket(tenantID))
		gt.NoError(t, err).Required()

		first := created.Clone()
		first.AssignedTo = "analyst-1"
		_, err = repo.Ticket().Put(ctx, first, created.Version)
		gt.NoError(t, err).Required()

		// Second writer still holds version 1.
		second := created.Clone()
		second.AssignedTo = "analyst-2"
		_, err = repo.Ticket().Put(ctx, second, created.Version)
		gt.Bool(t, errors.Is(err, interfaces.ErrVersionMismatch)).True()

		// The first writer's assignment must survive.
		retrieved, err := repo.Ticket().Get(ctx, tenantID, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, retrieved.AssignedTo).Equal(types.UserID("analyst-1"))
	})

	t.Run("Put returns ErrNotFound for missing ticket", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		tenantID := newTenantID(t)

		ticket := newTestTicket(tenantID)
		_, err := repo.Ticket().Put(ctx, ticket, 1)
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()
	})

	t.Run("Delete removes ticket", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		tenantID := newTenantID(t)

		created, err := repo.Ticket().Create(ctx, newTestTicket(tenantID))
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.Ticket().Delete(ctx, tenantID, created.ID)).Required()

		_, err = repo.Ticket().Get(ctx, tenantID, created.ID)
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()
	})

	t.Run("Delete returns ErrNotFound for missing ticket", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		err := repo.Ticket().Delete(ctx, newTenantID(t), types.NewTicketID())
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()
	})
}

func TestMemoryTicketRepository(t *testing.T) {
	runTicketRepositoryTest(t, newMemoryRepository)
}

func TestFirestoreTicketRepository(t *testing.T) {
	runTicketRepositoryTest(t, newFirestoreRepository)
}
