package memory

import (
	"github.com/secmon-lab/briareus/pkg/domain/interfaces"
)

// Memory is the in-memory repository used for development and tests.
type Memory struct {
	ticket    *ticketRepository
	alert     *alertRepository
	playbook  *playbookRepository
	execution *executionRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		ticket:    newTicketRepository(),
		alert:     newAlertRepository(),
		playbook:  newPlaybookRepository(),
		execution: newExecutionRepository(),
	}
}

func (m *Memory) Ticket() interfaces.TicketRepository {
	return m.ticket
}

func (m *Memory) Alert() interfaces.AlertRepository {
	return m.alert
}

func (m *Memory) Playbook() interfaces.PlaybookRepository {
	return m.playbook
}

func (m *Memory) Execution() interfaces.ExecutionRepository {
	return m.execution
}

func (m *Memory) Close() error {
	return nil
}
