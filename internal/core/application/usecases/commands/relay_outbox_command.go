package commands

import (
	"errors"

	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/errs"
	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/guard"
)

var ErrRelayOutboxCommandIsNotConstructed = errors.New(
	"RelayOutboxCommand must be created via NewRelayOutboxCommand constructor",
)

// RelayOutboxCommand publishes one batch of pending outbox messages.
type RelayOutboxCommand struct {
	batchSize   int
	maxAttempts int
	guard       guard.ConstructorGuard
}

func NewRelayOutboxCommand(batchSize, maxAttempts int) (RelayOutboxCommand, error) {
	if batchSize < 1 || batchSize > 1000 {
		return RelayOutboxCommand{}, errs.NewValueIsOutOfRangeError("batchSize", batchSize, 1, 1000)
	}
	if maxAttempts < 1 {
		return RelayOutboxCommand{}, errs.NewValueIsOutOfRangeError("maxAttempts", maxAttempts, 1, "unbounded")
	}
	return RelayOutboxCommand{
		batchSize:   batchSize,
		maxAttempts: maxAttempts,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c RelayOutboxCommand) BatchSize() int {
	return c.batchSize
}

func (c RelayOutboxCommand) MaxAttempts() int {
	return c.maxAttempts
}

func (c RelayOutboxCommand) Validate() error {
	return c.guard.Validate(ErrRelayOutboxCommandIsNotConstructed)
}
