package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareus/pkg/domain/interfaces"
	"github.com/secmon-lab/briareus/pkg/domain/types"
)

// Client is the Firestore-backed repository. Documents live under
// tenants/{tenant}/<entity>/{id}, so tenant isolation is structural:
// a read scoped to one tenant can never observe another tenant's data.
type Client struct {
	client    *firestore.Client
	ticket    *ticketRepository
	alert     *alertRepository
	playbook  *playbookRepository
	execution *executionRepository
}

var _ interfaces.Repository = &Client{}

func New(ctx context.Context, projectID, databaseID string) (*Client, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project_id", projectID),
			goerr.V("database_id", databaseID))
	}

	return &Client{
		client:    client,
		ticket:    &ticketRepository{client: client},
		alert:     &alertRepository{client: client},
		playbook:  &playbookRepository{client: client},
		execution: &executionRepository{client: client},
	}, nil
}

func (c *Client) Ticket() interfaces.TicketRepository {
	return c.ticket
}

func (c *Client) Alert() interfaces.AlertRepository {
	return c.alert
}

func (c *Client) Playbook() interfaces.PlaybookRepository {
	return c.playbook
}

func (c *Client) Execution() interfaces.ExecutionRepository {
	return c.execution
}

func (c *Client) Close() error {
	if err := c.client.Close(); err != nil {
		return goerr.Wrap(err, "failed to close firestore client")
	}
	return nil
}

func tenantDoc(client *firestore.Client, tenantID types.TenantID) *firestore.DocumentRef {
	return client.Collection("tenants").Doc(string(tenantID))
}
