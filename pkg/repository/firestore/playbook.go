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

type playbookRepository struct {
	client *firestore.Client
}

type stepDoc struct {
	ID          string `firestore:"id"`
	Description string `firestore:"description"`
	Order       int    `firestore:"order"`
}

type playbookDoc struct {
	ID            string    `firestore:"id"`
	TenantID      string    `firestore:"tenant_id"`
	Name          string    `firestore:"name"`
	Description   string    `firestore:"description"`
	ThreatType    string    `firestore:"threat_type"`
	SeverityLevel string    `firestore:"severity_level"`
	Steps         []stepDoc `firestore:"steps"`
	Status        string    `firestore:"status"`
	IsTemplate    bool      `firestore:"is_template"`
	CreatedAt     time.Time `firestore:"created_at"`
	UpdatedAt     time.Time `firestore:"updated_at"`
	Version       int64     `firestore:"version"`
}

func toPlaybookDoc(p *model.Playbook) *playbookDoc {
	steps := make([]stepDoc, len(p.Steps))
	for i, step := range p.Steps {
		steps[i] = stepDoc{
			ID:          string(step.ID),
			Description: step.Description,
			Order:       step.Order,
		}
	}
	return &playbookDoc{
		ID:            string(p.ID),
		TenantID:      string(p.TenantID),
		Name:          p.Name,
		Description:   p.Description,
		ThreatType:    string(p.ThreatType),
		SeverityLevel: string(p.SeverityLevel),
		Steps:         steps,
		Status:        string(p.Status),
		IsTemplate:    p.IsTemplate,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		Version:       p.Version,
	}
}

func (d *playbookDoc) toModel() *model.Playbook {
	steps := make([]model.Step, len(d.Steps))
	for i, step := range d.Steps {
		steps[i] = model.Step{
			ID:          types.StepID(step.ID),
			Description: step.Description,
			Order:       step.Order,
		}
	}
	return &model.Playbook{
		ID:            types.PlaybookID(d.ID),
		TenantID:      types.TenantID(d.TenantID),
		Name:          d.Name,
		Description:   d.Description,
		ThreatType:    types.Category(d.ThreatType),
		SeverityLevel: types.Severity(d.SeverityLevel),
		Steps:         steps,
		Status:        types.PlaybookStatus(d.Status),
		IsTemplate:    d.IsTemplate,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
		Version:       d.Version,
	}
}

func (r *playbookRepository) collection(tenantID types.TenantID) *firestore.CollectionRef {
	return tenantDoc(r.client, tenantID).Collection("playbooks")
}

func (r *playbookRepository) Create(ctx context.Context, playbook *model.Playbook) (*model.Playbook, error) {
	created := playbook.Clone()
	created.Version = 1

	docRef := r.collection(playbook.TenantID).Doc(string(playbook.ID))
	if _, err := docRef.Create(ctx, toPlaybookDoc(created)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(interfaces.ErrAlreadyExists, "playbook already exists", goerr.V("id", playbook.ID))
		}
		return nil, goerr.Wrap(err, "failed to create playbook", goerr.V("id", playbook.ID))
	}

	return created, nil
}

func (r *playbookRepository) Get(ctx context.Context, tenantID types.TenantID, id types.PlaybookID) (*model.Playbook, error) {
	docSnap, err := r.collection(tenantID).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "playbook not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get playbook", goerr.V("id", id))
	}

	var doc playbookDoc
	if err := docSnap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode playbook", goerr.V("id", id))
	}

	return doc.toModel(), nil
}

func (r *playbookRepository) List(ctx context.Context, tenantID types.TenantID) ([]*model.Playbook, error) {
	iter := r.collection(tenantID).Documents(ctx)
	defer iter.Stop()

	playbooks := []*model.Playbook{}
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate playbooks")
		}

		var doc playbookDoc
		if err := docSnap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode playbook", goerr.V("doc_id", docSnap.Ref.ID))
		}

		playbooks = append(playbooks, doc.toModel())
	}

	return playbooks, nil
}

func (r *playbookRepository) Put(ctx context.Context, playbook *model.Playbook, expectedVersion int64) (*model.Playbook, error) {
	docRef := r.collection(playbook.TenantID).Doc(string(playbook.ID))

	updated := playbook.Clone()
	updated.Version = expectedVersion + 1

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docSnap, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(interfaces.ErrNotFound, "playbook not found", goerr.V("id", playbook.ID))
			}
			return goerr.Wrap(err, "failed to get playbook for update", goerr.V("id", playbook.ID))
		}

		var stored playbookDoc
		if err := docSnap.DataTo(&stored); err != nil {
			return goerr.Wrap(err, "failed to decode playbook", goerr.V("id", playbook.ID))
		}
		if stored.Version != expectedVersion {
			return goerr.Wrap(interfaces.ErrVersionMismatch, "playbook was modified concurrently",
				goerr.V("id", playbook.ID),
				goerr.V("expected", expectedVersion),
				goerr.V("actual", stored.Version))
		}

		// Creation time is immutable once stored.
		updated.CreatedAt = stored.CreatedAt

		return tx.Set(docRef, toPlaybookDoc(updated))
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}
