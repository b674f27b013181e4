package commands

import (
	"context"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/delivery"
)

// CreateDeliveryCommandHandler creates deliveries in PENDING_AUTHORIZATION.
// The request is locked for the duration of the transaction so two cycles of
// the same request cannot both claim its last units.
type CreateDeliveryCommandHandler struct {
	workflow DeliveryWorkflow
}

func NewCreateDeliveryCommandHandler(uowFactory WorkflowUoWFactory) CreateDeliveryCommandHandler {
	return CreateDeliveryCommandHandler{workflow: NewDeliveryWorkflow(uowFactory)}
}

// Handle checks that the actor may create deliveries, that the request is
// APPROVED or PARTIALLY_DELIVERED and that the new quantities fit what is
// left of it, then stores the delivery with its first history record.
func (h CreateDeliveryCommandHandler) Handle(ctx context.Context, cmd CreateDeliveryCommand) (*delivery.Delivery, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	w := h.workflow
	if err := w.guard.MayPerform(delivery.Create, nil, cmd.Actor()); err != nil {
		return nil, err
	}

	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	req, err := uow.RequestRepository().GetForUpdate(ctx, cmd.RequestID())
	if err != nil {
		return nil, err
	}
	if err = w.fulfillment.CheckOpen(req); err != nil {
		return nil, err
	}

	at := w.now()
	d, record, err := delivery.NewDelivery(
		cmd.DeliveryID(), cmd.RequestID(), cmd.Actor().ID(), cmd.Details(), cmd.Notes(), at)
	if err != nil {
		return nil, err
	}

	if err = w.checkAgainst(ctx, uow, req, d); err != nil {
		return nil, err
	}
	d.RecordEvent(w.router.WorkItemFor(d, at))

	if err = uow.DeliveryRepository().Add(ctx, d); err != nil {
		return nil, err
	}
	if err = uow.AuditLog().Append(ctx, record); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return d, nil
}
