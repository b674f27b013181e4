package commands

import (
	"errors"
	"fmt"
	"maps"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/actor"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/errs"
)

var ErrAuthorizeDeliveryCommandIsNotConstructed = errors.New(
	"AuthorizeDeliveryCommand must be created via NewAuthorizeDeliveryCommand constructor",
)

// AuthorizeDeliveryCommand approves a pending delivery. Quantities optionally
// lowers the quantity of some line items, which makes it a partial
// authorization; nil authorizes everything as requested.
type AuthorizeDeliveryCommand struct {
	transitionInput
	quantities map[kernel.ItemRef]int
}

func NewAuthorizeDeliveryCommand(
	deliveryID kernel.UUID,
	a actor.Actor,
	quantities map[kernel.ItemRef]int,
	notes string,
) (AuthorizeDeliveryCommand, error) {
	var qtyErr error
	for item, qty := range quantities {
		if qty <= 0 {
			qtyErr = errors.Join(qtyErr, errs.NewValueIsInvalidErrorWithCause(
				"authorized quantity", fmt.Errorf("%s: %d is not greater than 0", item, qty)))
		}
	}

	in, err := newTransitionInput(deliveryID, a, notes)
	if err = errors.Join(err, qtyErr); err != nil {
		return AuthorizeDeliveryCommand{}, err
	}
	return AuthorizeDeliveryCommand{transitionInput: in, quantities: maps.Clone(quantities)}, nil
}

func (c AuthorizeDeliveryCommand) Quantities() map[kernel.ItemRef]int {
	return maps.Clone(c.quantities)
}

func (c AuthorizeDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrAuthorizeDeliveryCommandIsNotConstructed)
}
