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

type executionRepository struct {
	client *firestore.Client
}

type stepResultDoc struct {
	CompletedBy        string    `firestore:"completed_by"`
	CompletedAt        time.Time `firestore:"completed_at"`
	VerificationStatus string    `firestore:"verification_status"`
	Notes              string    `firestore:"notes"`
}

type executionDoc struct {
	ID          string                   `firestore:"id"`
	PlaybookID  string                   `firestore:"playbook_id"`
	AlertID     string                   `firestore:"alert_id"`
	TenantID    string                   `firestore:"tenant_id"`
	Status      string                   `firestore:"status"`
	StartedBy   string                   `firestore:"started_by"`
	StartedAt   time.Time                `firestore:"started_at"`
	CompletedAt time.Time                `firestore:"completed_at"`
	Notes       string                   `firestore:"notes"`
	StepResults map[string]stepResultDoc `firestore:"step_results"`
	Version     int64                    `firestore:"version"`
}

func toExecutionDoc(e *model.Execution) *executionDoc {
	results := make(map[string]stepResultDoc, len(e.StepResults))
	for id, result := range e.StepResults {
		results[string(id)] = stepResultDoc{
			CompletedBy:        string(result.CompletedBy),
			CompletedAt:        result.CompletedAt,
			VerificationStatus: string(result.VerificationStatus),
			Notes:              result.Notes,
		}
	}
	return &executionDoc{
		ID:          string(e.ID),
		PlaybookID:  string(e.PlaybookID),
		AlertID:     string(e.AlertID),
		TenantID:    string(e.TenantID),
		Status:      string(e.Status),
		StartedBy:   string(e.StartedBy),
		StartedAt:   e.StartedAt,
		CompletedAt: e.CompletedAt,
		Notes:       e.Notes,
		StepResults: results,
		Version:     e.Version,
	}
}

func (d *executionDoc) toModel() *model.Execution {
	results := make(map[types.StepID]model.StepResult, len(d.StepResults))
	for id, result := range d.StepResults {
		results[types.StepID(id)] = model.StepResult{
			CompletedBy:        types.UserID(result.CompletedBy),
			CompletedAt:        result.CompletedAt,
			VerificationStatus: types.VerificationStatus(result.VerificationStatus),
			Notes:              result.Notes,
		}
	}
	return &model.Execution{
		ID:          types.ExecutionID(d.ID),
		PlaybookID:  types.PlaybookID(d.PlaybookID),
		AlertID:     types.AlertID(d.AlertID),
		TenantID:    types.TenantID(d.TenantID),
		Status:      types.ExecutionStatus(d.Status),
		StartedBy:   types.UserID(d.StartedBy),
		StartedAt:   d.StartedAt,
		CompletedAt: d.CompletedAt,
		Notes:       d.Notes,
		StepResults: results,
		Version:     d.Version,
	}
}

func (r *executionRepository) collection(tenantID types.TenantID) *firestore.CollectionRef {
	return tenantDoc(r.client, tenantID).Collection("executions")
}

func (r *executionRepository) Create(ctx context.Context, execution *model.Execution) (*model.Execution, error) {
	created := execution.Clone()
	created.Version = 1

	docRef := r.collection(execution.TenantID).Doc(string(execution.ID))
	if _, err := docRef.Create(ctx, toExecutionDoc(created)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(interfaces.ErrAlreadyExists, "execution already exists", goerr.V("id", execution.ID))
		}
		return nil, goerr.Wrap(err, "failed to create execution", goerr.V("id", execution.ID))
	}

	return created, nil
}

func (r *executionRepository) Get(ctx context.Context, tenantID types.TenantID, id types.ExecutionID) (*model.Execution, error) {
	docSnap, err := r.collection(tenantID).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "execution not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get execution", goerr.V("id", id))
	}

	var doc executionDoc
	if err := docSnap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode execution", goerr.V("id", id))
	}

	return doc.toModel(), nil
}

func (r *executionRepository) List(ctx context.Context, tenantID types.TenantID) ([]*model.Execution, error) {
	return r.list(ctx, r.collection(tenantID).Query)
}

func (r *executionRepository) ListByAlert(ctx context.Context, tenantID types.TenantID, alertID types.AlertID) ([]*model.Execution, error) {
	query := r.collection(tenantID).Where("alert_id", "==", string(alertID))
	return r.list(ctx, query)
}

func (r *executionRepository) list(ctx context.Context, query firestore.Query) ([]*model.Execution, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	executions := []*model.Execution{}
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate executions")
		}

		var doc executionDoc
		if err := docSnap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode execution", goerr.V("doc_id", docSnap.Ref.ID))
		}

		executions = append(executions, doc.toModel())
	}

	return executions, nil
}

func (r *executionRepository) Put(ctx context.Context, execution *model.Execution, expectedVersion int64) (*model.Execution, error) {
	docRef := r.collection(execution.TenantID).Doc(string(execution.ID))

	updated := execution.Clone()
	updated.Version = expectedVersion + 1

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docSnap, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(interfaces.ErrNotFound, "execution not found", goerr.V("id", execution.ID))
			}
			return goerr.Wrap(err, "failed to get execution for update", goerr.V("id", execution.ID))
		}

		var stored executionDoc
		if err := docSnap.DataTo(&stored); err != nil {
			return goerr.Wrap(err, "failed to decode execution", goerr.V("id", execution.ID))
		}
		if stored.Version != expectedVersion {
			return goerr.Wrap(interfaces.ErrVersionMismatch, "execution was modified concurrently",
				goerr.V("id", execution.ID),
				goerr.V("expected", expectedVersion),
				goerr.V("actual", stored.Version))
		}

		// Start time is immutable once stored.
		updated.StartedAt = stored.StartedAt

		return tx.Set(docRef, toExecutionDoc(updated))
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}
