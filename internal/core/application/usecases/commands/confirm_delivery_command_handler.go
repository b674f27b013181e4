package commands

import (
	"context"
	"time"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/delivery"
)

// ConfirmDeliveryCommandHandler moves READY to DELIVERED and adds the
// delivered quantities to the request, which becomes DELIVERED or
// PARTIALLY_DELIVERED.
type ConfirmDeliveryCommandHandler struct {
	workflow DeliveryWorkflow
}

func NewConfirmDeliveryCommandHandler(uowFactory WorkflowUoWFactory) ConfirmDeliveryCommandHandler {
	return ConfirmDeliveryCommandHandler{workflow: NewDeliveryWorkflow(uowFactory)}
}

func (h ConfirmDeliveryCommandHandler) Handle(ctx context.Context, cmd ConfirmDeliveryCommand) (*delivery.Delivery, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	return h.workflow.run(ctx, cmd.DeliveryID(), cmd.Actor(), delivery.ConfirmDelivery,
		func(ctx context.Context, uow WorkflowUoW, d *delivery.Delivery, at time.Time) (delivery.HistoryRecord, error) {
			record, err := d.ConfirmDelivery(cmd.Actor().ID(), cmd.Reception(), cmd.Notes(), at)
			if err != nil {
				return delivery.HistoryRecord{}, err
			}

			requests := uow.RequestRepository()
			req, err := requests.GetForUpdate(ctx, d.RequestID())
			if err != nil {
				return delivery.HistoryRecord{}, err
			}
			if err = h.workflow.fulfillment.RecordDelivery(req, d); err != nil {
				return delivery.HistoryRecord{}, err
			}
			return record, requests.Update(ctx, req)
		})
}
