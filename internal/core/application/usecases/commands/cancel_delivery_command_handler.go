package commands

import (
	"context"
	"time"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/delivery"
)

// CancelDeliveryCommandHandler moves any non-terminal delivery to CANCELLED.
// Cancelling a READY delivery restores the deducted stock; before READY
// nothing was deducted and stock is not touched.
type CancelDeliveryCommandHandler struct {
	workflow DeliveryWorkflow
}

func NewCancelDeliveryCommandHandler(uowFactory WorkflowUoWFactory) CancelDeliveryCommandHandler {
	return CancelDeliveryCommandHandler{workflow: NewDeliveryWorkflow(uowFactory)}
}

func (h CancelDeliveryCommandHandler) Handle(ctx context.Context, cmd CancelDeliveryCommand) (*delivery.Delivery, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	return h.workflow.run(ctx, cmd.DeliveryID(), cmd.Actor(), delivery.Cancel,
		func(ctx context.Context, uow WorkflowUoW, d *delivery.Delivery, at time.Time) (delivery.HistoryRecord, error) {
			record, deducted, err := d.Cancel(cmd.Actor().ID(), cmd.Reason(), at)
			if err != nil {
				return delivery.HistoryRecord{}, err
			}
			if len(deducted) == 0 {
				return record, nil
			}
			return record, h.workflow.reverseStock(ctx, uow, deducted)
		})
}
