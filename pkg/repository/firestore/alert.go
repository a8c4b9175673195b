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

type alertRepository struct {
	client *firestore.Client
}

type alertDoc struct {
	ID                  string    `firestore:"id"`
	TenantID            string    `firestore:"tenant_id"`
	Title               string    `firestore:"title"`
	Description         string    `firestore:"description"`
	Category            string    `firestore:"category"`
	Severity            string    `firestore:"severity"`
	Status              string    `firestore:"status"`
	AssignedTo          string    `firestore:"assigned_to"`
	EscalatedIncidentID string    `firestore:"escalated_incident_id"`
	CreatedAt           time.Time `firestore:"created_at"`
	UpdatedAt           time.Time `firestore:"updated_at"`
	Version             int64     `firestore:"version"`
}

func toAlertDoc(a *model.Alert) *alertDoc {
	return &alertDoc{
		ID:                  string(a.ID),
		TenantID:            string(a.TenantID),
		Title:               a.Title,
		Description:         a.Description,
		Category:            string(a.Category),
		Severity:            string(a.Severity),
		Status:              string(a.Status),
		AssignedTo:          string(a.AssignedTo),
		EscalatedIncidentID: string(a.EscalatedIncidentID),
		CreatedAt:           a.CreatedAt,
		UpdatedAt:           a.UpdatedAt,
		Version:             a.Version,
	}
}

func (d *alertDoc) toModel() *model.Alert {
	return &model.Alert{
		ID:                  types.AlertID(d.ID),
		TenantID:            types.TenantID(d.TenantID),
		Title:               d.Title,
		Description:         d.Description,
		Category:            types.Category(d.Category),
		Severity:            types.Severity(d.Severity),
		Status:              types.AlertStatus(d.Status),
		AssignedTo:          types.UserID(d.AssignedTo),
		EscalatedIncidentID: types.TicketID(d.EscalatedIncidentID),
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
		Version:             d.Version,
	}
}

func (r *alertRepository) collection(tenantID types.TenantID) *firestore.CollectionRef {
	return tenantDoc(r.client, tenantID).Collection("alerts")
}

func (r *alertRepository) Create(ctx context.Context, alert *model.Alert) (*model.Alert, error) {
	created := alert.Clone()
	created.Version = 1

	docRef := r.collection(alert.TenantID).Doc(string(alert.ID))
	if _, err := docRef.Create(ctx, toAlertDoc(created)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(interfaces.ErrAlreadyExists, "alert already exists", goerr.V("id", alert.ID))
		}
		return nil, goerr.Wrap(err, "failed to create alert", goerr.V("id", alert.ID))
	}

	return created, nil
}

func (r *alertRepository) Get(ctx context.Context, tenantID types.TenantID, id types.AlertID) (*model.Alert, error) {
	docSnap, err := r.collection(tenantID).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "alert not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get alert", goerr.V("id", id))
	}

	var doc alertDoc
	if err := docSnap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode alert", goerr.V("id", id))
	}

	return doc.toModel(), nil
}

func (r *alertRepository) List(ctx context.Context, tenantID types.TenantID) ([]*model.Alert, error) {
	iter := r.collection(tenantID).Documents(ctx)
	defer iter.Stop()

	alerts := []*model.Alert{}
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate alerts")
		}

		var doc alertDoc
		if err := docSnap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode alert", goerr.V("doc_id", docSnap.Ref.ID))
		}

		alerts = append(alerts, doc.toModel())
	}

	return alerts, nil
}

func (r *alertRepository) Put(ctx context.Context, alert *model.Alert, expectedVersion int64) (*model.Alert, error) {
	docRef := r.collection(alert.TenantID).Doc(string(alert.ID))

	updated := alert.Clone()
	updated.Version = expectedVersion + 1

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docSnap, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(interfaces.ErrNotFound, "alert not found", goerr.V("id", alert.ID))
			}
			return goerr.Wrap(err, "failed to get alert for update", goerr.V("id", alert.ID))
		}

		var stored alertDoc
		if err := docSnap.DataTo(&stored); err != nil {
			return goerr.Wrap(err, "failed to decode alert", goerr.V("id", alert.ID))
		}
		if stored.Version != expectedVersion {
			return goerr.Wrap(interfaces.ErrVersionMismatch, "alert was modified concurrently",
				goerr.V("id", alert.ID),
				goerr.V("expected", expectedVersion),
				goerr.V("actual", stored.Version))
		}

		// Creation time is immutable once stored.
		updated.CreatedAt = stored.CreatedAt

		return tx.Set(docRef, toAlertDoc(updated))
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}
