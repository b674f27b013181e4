package commands

import (
	"context"
	"time"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/delivery"
)

// AuthorizeDeliveryCommandHandler moves PENDING_AUTHORIZATION to AUTHORIZED.
type AuthorizeDeliveryCommandHandler struct {
	workflow DeliveryWorkflow
}

func NewAuthorizeDeliveryCommandHandler(uowFactory WorkflowUoWFactory) AuthorizeDeliveryCommandHandler {
	return AuthorizeDeliveryCommandHandler{workflow: NewDeliveryWorkflow(uowFactory)}
}

// Handle applies the authorized quantities and re-checks them against the
// request before the new state is written.
func (h AuthorizeDeliveryCommandHandler) Handle(ctx context.Context, cmd AuthorizeDeliveryCommand) (*delivery.Delivery, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	return h.workflow.run(ctx, cmd.DeliveryID(), cmd.Actor(), delivery.Authorize,
		func(ctx context.Context, uow WorkflowUoW, d *delivery.Delivery, at time.Time) (delivery.HistoryRecord, error) {
			record, err := d.Authorize(cmd.Actor().ID(), cmd.Notes(), cmd.Quantities(), at)
			if err != nil {
				return delivery.HistoryRecord{}, err
			}
			return record, h.workflow.checkQuantities(ctx, uow, d)
		})
}
