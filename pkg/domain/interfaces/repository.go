package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Ticket() TicketRepository
	Alert() AlertRepository
	Playbook() PlaybookRepository
	Execution() ExecutionRepository

	Close() error
}
