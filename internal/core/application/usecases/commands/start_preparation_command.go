package commands

import (
	"errors"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/actor"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
)

var ErrStartPreparationCommandIsNotConstructed = errors.New(
	"StartPreparationCommand must be created via NewStartPreparationCommand constructor",
)

// StartPreparationCommand marks that packing started. The preparer is later
// barred from dispatching the same delivery.
type StartPreparationCommand struct {
	transitionInput
}

func NewStartPreparationCommand(deliveryID kernel.UUID, a actor.Actor, notes string) (StartPreparationCommand, error) {
	in, err := newTransitionInput(deliveryID, a, notes)
	if err != nil {
		return StartPreparationCommand{}, err
	}
	return StartPreparationCommand{transitionInput: in}, nil
}

func (c StartPreparationCommand) Validate() error {
	return c.guard.Validate(ErrStartPreparationCommandIsNotConstructed)
}
