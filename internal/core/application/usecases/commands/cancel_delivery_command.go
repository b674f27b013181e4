package commands

import (
	"errors"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/actor"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/errs"
)

var ErrCancelDeliveryCommandIsNotConstructed = errors.New(
	"CancelDeliveryCommand must be created via NewCancelDeliveryCommand constructor",
)

// CancelDeliveryCommand stops a delivery. The reason is mandatory and becomes
// the notes of the history record.
type CancelDeliveryCommand struct {
	transitionInput
}

func NewCancelDeliveryCommand(deliveryID kernel.UUID, a actor.Actor, reason string) (CancelDeliveryCommand, error) {
	in, err := newTransitionInput(deliveryID, a, reason)
	if err == nil && in.notes == "" {
		err = errs.NewValueIsRequiredError("reason")
	}
	if err != nil {
		return CancelDeliveryCommand{}, err
	}
	return CancelDeliveryCommand{transitionInput: in}, nil
}

func (c CancelDeliveryCommand) Reason() string {
	return c.notes
}

func (c CancelDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrCancelDeliveryCommandIsNotConstructed)
}
