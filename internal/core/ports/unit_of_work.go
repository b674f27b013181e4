package ports

import (
	"context"
)

// UnitOfWorkFactory creates new UnitOfWork instances for each command.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is a business transaction boundary. Events queued on aggregates
// written through its repositories are stored in the outbox on Commit.
type UnitOfWork interface {
	// Begin starts a new transaction. Calling it twice is a no-op.
	Begin(ctx context.Context) error

	// Commit commits the current transaction.
	// Returns error if no active transaction or commit fails.
	Commit(ctx context.Context) error

	// Rollback rolls back the current transaction.
	// Returns error if no active transaction or rollback fails.
	Rollback(ctx context.Context) error

	DeliveryRepository() DeliveryRepository
	AuditLog() AuditLog
	RequestRepository() RequestRepository
	LotRepository() LotRepository
	KitCatalog() KitCatalog
	OutboxRepository() OutboxRepository
}
