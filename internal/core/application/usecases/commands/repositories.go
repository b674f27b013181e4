// Package commands contains the operations that change delivery state.
// Every handler follows the same shape: validate the command, open a unit of
// work, apply domain rules, persist, commit.
package commands

import (
	"context"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/ports"
)

// Unit of Work interfaces give each handler only the repositories it uses.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	DeliveryRepoFactory interface {
		DeliveryRepository() ports.DeliveryRepository
	}

	AuditLogFactory interface {
		AuditLog() ports.AuditLog
	}

	RequestRepoFactory interface {
		RequestRepository() ports.RequestRepository
	}

	StockRepoFactory interface {
		LotRepository() ports.LotRepository
		KitCatalog() ports.KitCatalog
	}

	OutboxRepoFactory interface {
		OutboxRepository() ports.OutboxRepository
	}

	// WorkflowUoW spans everything a delivery transition may write: the
	// delivery, its audit trail, the request it fulfils and the stock ledger.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   d, err := uow.DeliveryRepository().Get(ctx, id)
	//   // ... transition, stock, fulfillment
	//
	//   err = uow.Commit(ctx)
	WorkflowUoW interface {
		TxManager
		DeliveryRepoFactory
		AuditLogFactory
		RequestRepoFactory
		StockRepoFactory
	}

	WorkflowUoWFactory interface {
		Create() WorkflowUoW
	}

	// OutboxUoW is used by the relay, which only reads and marks outbox rows.
	OutboxUoW interface {
		TxManager
		OutboxRepoFactory
	}

	OutboxUoWFactory interface {
		Create() OutboxUoW
	}
)
