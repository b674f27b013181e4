package services

import (
	"errors"
	"fmt"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/delivery"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/request"
	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/errs"
)

// FulfillmentTracker keeps the deliveries of a request within what the request
// asked for and writes delivered quantities back to it.
//
// The quantities a request has committed are the line quantities of all its
// deliveries that are not CANCELLED, DELIVERED ones included.
type FulfillmentTracker struct{}

func NewFulfillmentTracker() FulfillmentTracker {
	return FulfillmentTracker{}
}

// CheckOpen fails unless req accepts a new delivery cycle.
func (t FulfillmentTracker) CheckOpen(req *request.Request) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if !req.Status().AllowsNewDelivery() {
		return errs.NewValueIsInvalidErrorWithCause("request status",
			fmt.Errorf("request %s is %s, deliveries need APPROVED or PARTIALLY_DELIVERED", req.Code(), req.Status()))
	}
	return nil
}

// Committed sums the line quantities of deliveries, skipping cancelled ones
// and the delivery identified by exclude.
func (t FulfillmentTracker) Committed(deliveries []*delivery.Delivery, exclude kernel.UUID) map[kernel.ItemRef]int {
	committed := make(map[kernel.ItemRef]int)
	for _, d := range deliveries {
		if d.Status() == delivery.Cancelled || d.ID().IsEqual(exclude) {
			continue
		}
		for item, qty := range d.Quantities() {
			committed[item] += qty
		}
	}
	return committed
}

// CheckAllocation fails with a validation error when quantities, added to
// committed, exceed a requested quantity or name an item the request does not
// contain.
func (t FulfillmentTracker) CheckAllocation(
	req *request.Request,
	committed, quantities map[kernel.ItemRef]int,
) error {
	if err := req.Validate(); err != nil {
		return err
	}

	var problems []error
	for item, qty := range quantities {
		line, ok := req.Line(item)
		if !ok {
			problems = append(problems, errs.NewValueIsInvalidErrorWithCause(
				"item", fmt.Errorf("%s is not part of request %s", item, req.Code())))
			continue
		}
		if total := committed[item] + qty; total > line.Requested() {
			problems = append(problems, errs.NewQuantityExceededError(item.String(), total, line.Requested()))
		}
	}
	return errors.Join(problems...)
}

// IsPartial reports whether req still has quantities left once committed and
// quantities are delivered.
func (t FulfillmentTracker) IsPartial(req *request.Request, committed, quantities map[kernel.ItemRef]int) bool {
	for _, line := range req.Lines() {
		if committed[line.Item()]+quantities[line.Item()] < line.Requested() {
			return true
		}
	}
	return false
}

// RecordDelivery adds the quantities of a DELIVERED delivery to req.
func (t FulfillmentTracker) RecordDelivery(req *request.Request, d *delivery.Delivery) error {
	if err := errors.Join(req.Validate(), d.Validate()); err != nil {
		return err
	}
	if !d.RequestID().IsEqual(req.ID()) {
		return errs.NewValueIsInvalidErrorWithCause("requestId",
			fmt.Errorf("delivery %s belongs to another request", d.Code()))
	}
	if d.Status() != delivery.Delivered {
		return errs.NewInvalidTransitionError("record fulfillment", d.Status().String())
	}
	return req.RecordDelivered(d.Quantities())
}
