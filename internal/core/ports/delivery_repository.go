// Package ports defines the contracts between the delivery workflow and its
// infrastructure: repositories, the audit log, the outbox and the outbound
// publishers used by the relay.
package ports

import (
	"context"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/delivery"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
)

// DeliveryRepository defines the persistence contract for delivery aggregates.
type DeliveryRepository interface {
	// Add persists a new delivery with its line items.
	Add(ctx context.Context, aggregate *delivery.Delivery) error

	// Update persists a transition. The write only succeeds when the stored
	// version still equals aggregate.OriginalVersion(); otherwise it fails with
	// *errs.ConflictError and nothing is written.
	Update(ctx context.Context, aggregate *delivery.Delivery) error

	// Get returns *errs.ObjectNotFoundError for unknown ids.
	Get(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error)

	// ListByRequest returns every delivery of a request, cancelled ones included.
	ListByRequest(ctx context.Context, requestID kernel.UUID) ([]*delivery.Delivery, error)
}

// AuditLog is the append-only transition ledger. There is deliberately no
// update or delete.
type AuditLog interface {
	Append(ctx context.Context, records ...delivery.HistoryRecord) error

	// ListByDelivery returns the records of a delivery oldest first.
	ListByDelivery(ctx context.Context, deliveryID kernel.UUID) ([]delivery.HistoryRecord, error)
}
