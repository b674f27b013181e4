package commands

import (
	"errors"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/actor"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
)

var ErrReceiveInWarehouseCommandIsNotConstructed = errors.New(
	"ReceiveInWarehouseCommand must be created via NewReceiveInWarehouseCommand constructor",
)

// ReceiveInWarehouseCommand records that the goods were received in the warehouse.
type ReceiveInWarehouseCommand struct {
	transitionInput
}

func NewReceiveInWarehouseCommand(deliveryID kernel.UUID, a actor.Actor, notes string) (ReceiveInWarehouseCommand, error) {
	in, err := newTransitionInput(deliveryID, a, notes)
	if err != nil {
		return ReceiveInWarehouseCommand{}, err
	}
	return ReceiveInWarehouseCommand{transitionInput: in}, nil
}

func (c ReceiveInWarehouseCommand) Validate() error {
	return c.guard.Validate(ErrReceiveInWarehouseCommandIsNotConstructed)
}
