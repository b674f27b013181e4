package commands

import (
	"context"
	"time"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/delivery"
)

// StartPreparationCommandHandler moves RECEIVED_WAREHOUSE to IN_PREPARATION.
type StartPreparationCommandHandler struct {
	workflow DeliveryWorkflow
}

func NewStartPreparationCommandHandler(uowFactory WorkflowUoWFactory) StartPreparationCommandHandler {
	return StartPreparationCommandHandler{workflow: NewDeliveryWorkflow(uowFactory)}
}

func (h StartPreparationCommandHandler) Handle(ctx context.Context, cmd StartPreparationCommand) (*delivery.Delivery, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	return h.workflow.run(ctx, cmd.DeliveryID(), cmd.Actor(), delivery.StartPreparation,
		func(_ context.Context, _ WorkflowUoW, d *delivery.Delivery, at time.Time) (delivery.HistoryRecord, error) {
			return d.StartPreparation(cmd.Actor().ID(), cmd.Notes(), at)
		})
}
