package commands

import (
	"errors"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/actor"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
)

var ErrMarkReadyCommandIsNotConstructed = errors.New(
	"MarkReadyCommand must be created via NewMarkReadyCommand constructor",
)

// MarkReadyCommand closes the preparation of a delivery and deducts its stock.
type MarkReadyCommand struct {
	transitionInput
}

func NewMarkReadyCommand(deliveryID kernel.UUID, a actor.Actor, notes string) (MarkReadyCommand, error) {
	in, err := newTransitionInput(deliveryID, a, notes)
	if err != nil {
		return MarkReadyCommand{}, err
	}
	return MarkReadyCommand{transitionInput: in}, nil
}

func (c MarkReadyCommand) Validate() error {
	return c.guard.Validate(ErrMarkReadyCommandIsNotConstructed)
}
