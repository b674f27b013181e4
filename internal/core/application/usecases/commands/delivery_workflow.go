package commands

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/actor"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/delivery"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/request"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/stock"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/services"
	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/guard"
)

// DeliveryWorkflow is the engine shared by every delivery command handler.
//
// A transition always runs the same sequence inside one unit of work:
//
//	load delivery → status check → duty segregation guard → action step
//	(stock, fulfillment) → work item event → versioned update → audit append → commit
//
// Any failure rolls the unit of work back, so a rejected action leaves the
// delivery, its history, the request and the stock ledger unchanged.
type DeliveryWorkflow struct {
	uowFactory  WorkflowUoWFactory
	guard       services.DutySegregationGuard
	inventory   services.InventoryCoordinator
	fulfillment services.FulfillmentTracker
	router      services.NotificationRouter
	now         func() time.Time
}

// NewDeliveryWorkflow creates the engine on top of a workflow unit of work factory.
func NewDeliveryWorkflow(uowFactory WorkflowUoWFactory) DeliveryWorkflow {
	return DeliveryWorkflow{
		uowFactory:  uowFactory,
		guard:       services.NewDutySegregationGuard(),
		inventory:   services.NewInventoryCoordinator(),
		fulfillment: services.NewFulfillmentTracker(),
		router:      services.NewNotificationRouter(),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// step is the action specific part of a transition. It runs after the status
// and guard checks and must call exactly one transition method on d.
type step func(ctx context.Context, uow WorkflowUoW, d *delivery.Delivery, at time.Time) (delivery.HistoryRecord, error)

func (w DeliveryWorkflow) run(
	ctx context.Context,
	deliveryID kernel.UUID,
	a actor.Actor,
	action delivery.Action,
	apply step,
) (*delivery.Delivery, error) {
	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	deliveries := uow.DeliveryRepository()
	d, err := deliveries.Get(ctx, deliveryID)
	if err != nil {
		return nil, err
	}

	if err = d.CanPerform(action); err != nil {
		return nil, err
	}
	if err = w.guard.MayPerform(action, d, a); err != nil {
		return nil, err
	}

	at := w.now()
	record, err := apply(ctx, uow, d, at)
	if err != nil {
		return nil, err
	}
	d.RecordEvent(w.router.WorkItemFor(d, at))

	if err = deliveries.Update(ctx, d); err != nil {
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

// checkQuantities locks the request of d and verifies that d, together with
// the other live deliveries of the request, stays within the requested
// quantities. It refreshes the partial flag while the delivery is still open
// to changes.
func (w DeliveryWorkflow) checkQuantities(ctx context.Context, uow WorkflowUoW, d *delivery.Delivery) error {
	req, err := uow.RequestRepository().GetForUpdate(ctx, d.RequestID())
	if err != nil {
		return err
	}
	return w.checkAgainst(ctx, uow, req, d)
}

func (w DeliveryWorkflow) checkAgainst(
	ctx context.Context,
	uow WorkflowUoW,
	req *request.Request,
	d *delivery.Delivery,
) error {
	siblings, err := uow.DeliveryRepository().ListByRequest(ctx, d.RequestID())
	if err != nil {
		return err
	}

	committed := w.fulfillment.Committed(siblings, d.ID())
	if err = w.fulfillment.CheckAllocation(req, committed, d.Quantities()); err != nil {
		return err
	}
	d.SetPartial(w.fulfillment.IsPartial(req, committed, d.Quantities()))
	return nil
}

// deductStock allocates the line items of d from locked lots and writes the
// decremented lots back.
func (w DeliveryWorkflow) deductStock(
	ctx context.Context,
	uow WorkflowUoW,
	d *delivery.Delivery,
	at time.Time,
) ([]delivery.Deduction, error) {
	details := d.Details()

	var kitIDs []kernel.UUID
	for _, detail := range details {
		if !detail.Item().IsProduct() {
			kitIDs = append(kitIDs, detail.Item().ID())
		}
	}

	kits := map[kernel.UUID][]stock.KitComponent{}
	if len(kitIDs) > 0 {
		var err error
		if kits, err = uow.KitCatalog().Components(ctx, kitIDs); err != nil {
			return nil, err
		}
	}

	reqs, err := w.inventory.Requirements(details, kits)
	if err != nil {
		return nil, err
	}

	lotIDs, productIDs := w.inventory.LotIDs(reqs)
	lotRepo := uow.LotRepository()
	lots, err := lotRepo.LockForAllocation(ctx, lotIDs, productIDs)
	if err != nil {
		return nil, err
	}

	deductions, err := w.inventory.Deduct(reqs, lots, at)
	if err != nil {
		return nil, err
	}

	if err = lotRepo.Update(ctx, changed(lots)...); err != nil {
		return nil, err
	}
	return deductions, nil
}

// reverseStock puts back exactly what deductions took.
func (w DeliveryWorkflow) reverseStock(ctx context.Context, uow WorkflowUoW, deductions []delivery.Deduction) error {
	lotRepo := uow.LotRepository()
	lots, err := lotRepo.LockForAllocation(ctx, services.DeductedLotIDs(deductions), nil)
	if err != nil {
		return err
	}
	if err = w.inventory.Reverse(deductions, lots); err != nil {
		return err
	}
	return lotRepo.Update(ctx, changed(lots)...)
}

func changed(lots []*stock.Lot) []*stock.Lot {
	out := make([]*stock.Lot, 0, len(lots))
	for _, l := range lots {
		if l.Version() != l.OriginalVersion() {
			out = append(out, l)
		}
	}
	return out
}

// transitionInput carries what every action on an existing delivery needs.
type transitionInput struct {
	deliveryID kernel.UUID
	actor      actor.Actor
	notes      string
	guard      guard.ConstructorGuard
}

func newTransitionInput(deliveryID kernel.UUID, a actor.Actor, notes string) (transitionInput, error) {
	if err := errors.Join(deliveryID.Validate(), a.Validate()); err != nil {
		return transitionInput{}, err
	}
	return transitionInput{
		deliveryID: deliveryID,
		actor:      a,
		notes:      strings.TrimSpace(notes),
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (t transitionInput) DeliveryID() kernel.UUID {
	return t.deliveryID
}

func (t transitionInput) Actor() actor.Actor {
	return t.actor
}

func (t transitionInput) Notes() string {
	return t.notes
}
