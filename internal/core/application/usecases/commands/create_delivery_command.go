package commands

import (
	"errors"
	"strings"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/actor"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/delivery"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/errs"
	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/guard"
)

var ErrCreateDeliveryCommandIsNotConstructed = errors.New(
	"CreateDeliveryCommand must be created via NewCreateDeliveryCommand constructor",
)

// DeliveryLine is one line item asked for in a new delivery.
type DeliveryLine struct {
	Item     kernel.ItemRef
	LotID    *kernel.UUID
	Quantity int
}

// CreateDeliveryCommand opens a delivery cycle for an approved request.
//
// Example:
//
//	lines := []DeliveryLine{{Item: kernel.ProductRef(riceID), Quantity: 10}}
//	cmd, err := NewCreateDeliveryCommand(kernel.NewUUID(), requestID, warehouseClerk, lines, "first cycle")
//	if err != nil {
//	    return err
//	}
//	d, err := handler.Handle(ctx, cmd)
type CreateDeliveryCommand struct {
	deliveryID kernel.UUID
	requestID  kernel.UUID
	actor      actor.Actor
	details    []delivery.Detail
	notes      string
	guard      guard.ConstructorGuard
}

// NewCreateDeliveryCommand validates ids, the actor and every line.
func NewCreateDeliveryCommand(
	deliveryID, requestID kernel.UUID,
	a actor.Actor,
	lines []DeliveryLine,
	notes string,
) (CreateDeliveryCommand, error) {
	var linesErr error
	details := make([]delivery.Detail, 0, len(lines))
	if len(lines) == 0 {
		linesErr = errs.NewValueIsRequiredError("deliveryDetails")
	}
	for _, l := range lines {
		d, err := delivery.NewDetail(l.Item, l.LotID, l.Quantity)
		if err != nil {
			linesErr = errors.Join(linesErr, err)
			continue
		}
		details = append(details, d)
	}

	if err := errors.Join(deliveryID.Validate(), requestID.Validate(), a.Validate(), linesErr); err != nil {
		return CreateDeliveryCommand{}, err
	}

	return CreateDeliveryCommand{
		deliveryID: deliveryID,
		requestID:  requestID,
		actor:      a,
		details:    details,
		notes:      strings.TrimSpace(notes),
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c CreateDeliveryCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}

func (c CreateDeliveryCommand) RequestID() kernel.UUID {
	return c.requestID
}

func (c CreateDeliveryCommand) Actor() actor.Actor {
	return c.actor
}

func (c CreateDeliveryCommand) Details() []delivery.Detail {
	return append([]delivery.Detail(nil), c.details...)
}

func (c CreateDeliveryCommand) Notes() string {
	return c.notes
}

func (c CreateDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrCreateDeliveryCommandIsNotConstructed)
}
