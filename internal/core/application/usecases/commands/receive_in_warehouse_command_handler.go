package commands

import (
	"context"
	"time"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/delivery"
)

// ReceiveInWarehouseCommandHandler moves AUTHORIZED to RECEIVED_WAREHOUSE. The step has no stock or fulfillment side effect.
type ReceiveInWarehouseCommandHandler struct {
	workflow DeliveryWorkflow
}

func NewReceiveInWarehouseCommandHandler(uowFactory WorkflowUoWFactory) ReceiveInWarehouseCommandHandler {
	return ReceiveInWarehouseCommandHandler{workflow: NewDeliveryWorkflow(uowFactory)}
}

func (h ReceiveInWarehouseCommandHandler) Handle(ctx context.Context, cmd ReceiveInWarehouseCommand) (*delivery.Delivery, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	return h.workflow.run(ctx, cmd.DeliveryID(), cmd.Actor(), delivery.ReceiveInWarehouse,
		func(_ context.Context, _ WorkflowUoW, d *delivery.Delivery, at time.Time) (delivery.HistoryRecord, error) {
			return d.ReceiveInWarehouse(cmd.Actor().ID(), cmd.Notes(), at)
		})
}
