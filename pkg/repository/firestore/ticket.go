package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareus/pkg/domain/interfaces"
	"github.com/secmon-lab/briareus/pkg/domain/model"
	"github.com/secmon-lab/briareus/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type ticketRepository struct {
	client *firestore.Client
}

type ticketDoc struct {
	ID                     string    `firestore:"id"`
	TenantID               string    `firestore:"tenant_id"`
	Title                  string    `firestore:"title"`
	Description            string    `firestore:"description"`
	Category               string    `firestore:"category"`
	Severity               string    `firestore:"severity"`
	Priority               string    `firestore:"priority"`
	Status                 string    `firestore:"status"`
	CreatedBy              string    `firestore:"created_by"`
	AssignedTo             string    `firestore:"assigned_to"`
	Tags                   []string  `firestore:"tags"`
	CreatedAt              time.Time `firestore:"created_at"`
	UpdatedAt              time.Time `firestore:"updated_at"`
	QueuePositionUpdatedAt time.Time `firestore:"queue_position_updated_at"`
	Version                int64     `firestore:"version"`
}

func toTicketDoc(t *model.Ticket) *ticketDoc {
	return &ticketDoc{
		ID:                     string(t.ID),
		TenantID:               string(t.TenantID),
		Title:                  t.Title,
		Description:            t.Description,
		Category:               string(t.Category),
		Severity:               string(t.Severity),
		Priority:               string(t.Priority),
		Status:                 string(t.Status),
		CreatedBy:              string(t.CreatedBy),
		AssignedTo:             string(t.AssignedTo),
		Tags:                   t.Tags,
		CreatedAt:              t.CreatedAt,
		UpdatedAt:              t.UpdatedAt,
		QueuePositionUpdatedAt: t.QueuePositionUpdatedAt,
		Version:                t.Version,
	}
}

func (d *ticketDoc) toModel() *model.Ticket {
	return &model.Ticket{
		ID:                     types.TicketID(d.ID),
		TenantID:               types.TenantID(d.TenantID),
		Title:                  d.Title,
		Description:            d.Description,
		Category:               types.Category(d.Category),
		Severity:               types.Severity(d.Severity),
		Priority:               types.Priority(d.Priority),
		Status:                 types.TicketStatus(d.Status),
		CreatedBy:              types.UserID(d.CreatedBy),
		AssignedTo:             types.UserID(d.AssignedTo),
		Tags:                   d.Tags,
		CreatedAt:              d.CreatedAt,
		UpdatedAt:              d.UpdatedAt,
		QueuePositionUpdatedAt: d.QueuePositionUpdatedAt,
		Version:                d.Version,
	}
}

func (r *ticketRepository) collection(tenantID types.TenantID) *firestore.CollectionRef {
	return tenantDoc(r.client, tenantID).Collection("tickets")
}

func (r *ticketRepository) Create(ctx context.Context, ticket *model.Ticket) (*model.Ticket, error) {
	created := ticket.Clone()
	created.Version = 1

	docRef := r.collection(ticket.TenantID).Doc(string(ticket.ID))
	if _, err := docRef.Create(ctx, toTicketDoc(created)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(interfaces.ErrAlreadyExists, "ticket already exists", goerr.V("id", ticket.ID))
		}
		return nil, goerr.Wrap(err, "failed to create ticket", goerr.V("id", ticket.ID))
	}

	return created, nil
}

func (r *ticketRepository) Get(ctx context.Context, tenantID types.TenantID, id types.TicketID) (*model.Ticket, error) {
	docSnap, err := r.collection(tenantID).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "ticket not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get ticket", goerr.V("id", id))
	}

	var doc ticketDoc
	if err := docSnap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode ticket", goerr.V("id", id))
	}

	return doc.toModel(), nil
}

func (r *ticketRepository) List(ctx context.Context, tenantID types.TenantID) ([]*model.Ticket, error) {
	iter := r.collection(tenantID).Documents(ctx)
	defer iter.Stop()

	tickets := []*model.Ticket{}
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate tickets")
		}

		var doc ticketDoc
		if err := docSnap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode ticket", goerr.V("doc_id", docSnap.Ref.ID))
		}

		tickets = append(tickets, doc.toModel())
	}

	return tickets, nil
}

func (r *ticketRepository) Put(ctx context.Context, ticket *model.Ticket, expectedVersion int64) (*model.Ticket, error) {
	docRef := r.collection(ticket.TenantID).Doc(string(ticket.ID))

	updated := ticket.Clone()
	updated.Version = expectedVersion + 1

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docSnap, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(interfaces.ErrNotFound, "ticket not found", goerr.V("id", ticket.ID))
			}
			return goerr.Wrap(err, "failed to get ticket for update", goerr.V("id", ticket.ID))
		}

		var stored ticketDoc
		if err := docSnap.DataTo(&stored); err != nil {
			return goerr.Wrap(err, "failed to decode ticket", goerr.V("id", ticket.ID))
		}
		if stored.Version != expectedVersion {
			return goerr.Wrap(interfaces.ErrVersionMismatch, "ticket was modified concurrently",
				goerr.V("id", ticket.ID),
				goerr.V("expected", expectedVersion),
				goerr.V("actual", stored.Version))
		}

		// Creation time is immutable once stored.
		updated.CreatedAt = stored.CreatedAt

		return tx.Set(docRef, toTicketDoc(updated))
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (r *ticketRepository) Delete(ctx context.Context, tenantID types.TenantID, id types.TicketID) error {
	docRef := r.collection(tenantID).Doc(string(id))

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(interfaces.ErrNotFound, "ticket not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to check ticket existence", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete ticket", goerr.V("id", id))
	}

	return nil
}
