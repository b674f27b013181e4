package commands

import (
	"context"
	"time"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/delivery"
)

// MarkReadyCommandHandler moves IN_PREPARATION to READY. This is the only
// point where stock leaves the ledger.
//
// Example:
//
//	cmd, _ := NewMarkReadyCommand(deliveryID, clerk, "packed in 3 boxes")
//	d, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, errs.ErrInsufficientStock) {
//	    // delivery is still IN_PREPARATION, nothing was deducted
//	}
type MarkReadyCommandHandler struct {
	workflow DeliveryWorkflow
}

func NewMarkReadyCommandHandler(uowFactory WorkflowUoWFactory) MarkReadyCommandHandler {
	return MarkReadyCommandHandler{workflow: NewDeliveryWorkflow(uowFactory)}
}

// Handle re-checks the request quantities, allocates every line item from
// locked lots and records the allocations on the delivery. A shortage on any
// lot fails the whole action.
func (h MarkReadyCommandHandler) Handle(ctx context.Context, cmd MarkReadyCommand) (*delivery.Delivery, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	return h.workflow.run(ctx, cmd.DeliveryID(), cmd.Actor(), delivery.MarkReady,
		func(ctx context.Context, uow WorkflowUoW, d *delivery.Delivery, at time.Time) (delivery.HistoryRecord, error) {
			if err := h.workflow.checkQuantities(ctx, uow, d); err != nil {
				return delivery.HistoryRecord{}, err
			}
			deductions, err := h.workflow.deductStock(ctx, uow, d, at)
			if err != nil {
				return delivery.HistoryRecord{}, err
			}
			return d.MarkReady(cmd.Actor().ID(), cmd.Notes(), deductions, at)
		})
}
