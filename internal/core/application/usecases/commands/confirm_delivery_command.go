package commands

import (
	"errors"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/actor"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/delivery"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
)

var ErrConfirmDeliveryCommandIsNotConstructed = errors.New(
	"ConfirmDeliveryCommand must be created via NewConfirmDeliveryCommand constructor",
)

// ConfirmDeliveryCommand records the hand-off to the beneficiary.
type ConfirmDeliveryCommand struct {
	transitionInput
	reception delivery.Reception
}

// NewConfirmDeliveryCommand requires the receiver name and document.
func NewConfirmDeliveryCommand(
	deliveryID kernel.UUID,
	a actor.Actor,
	receivedBy, receiverDocument, receiverSignature, receptionNotes string,
	notes string,
) (ConfirmDeliveryCommand, error) {
	reception, receptionErr := delivery.NewReception(receivedBy, receiverDocument, receiverSignature, receptionNotes)
	in, err := newTransitionInput(deliveryID, a, notes)
	if err = errors.Join(err, receptionErr); err != nil {
		return ConfirmDeliveryCommand{}, err
	}
	return ConfirmDeliveryCommand{transitionInput: in, reception: reception}, nil
}

func (c ConfirmDeliveryCommand) Reception() delivery.Reception {
	return c.reception
}

func (c ConfirmDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrConfirmDeliveryCommandIsNotConstructed)
}
