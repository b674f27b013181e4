package actor

import (
	"errors"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/errs"
	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/guard"
)

var ErrActorIsNotConstructed = errors.New("Actor must be created via NewActor constructor")

// Actor is the acting user of a workflow action.
type Actor struct {
	id           kernel.UUID
	capabilities Capabilities
	guard        guard.ConstructorGuard
}

// NewActor requires a valid id and at least one capability.
func NewActor(id kernel.UUID, capabilities Capabilities) (Actor, error) {
	var capErr error
	if capabilities.IsEmpty() {
		capErr = errs.NewValueIsRequiredError("capabilities")
	}
	if err := errors.Join(id.Validate(), capErr); err != nil {
		return Actor{}, err
	}

	return Actor{
		id:           id,
		capabilities: capabilities,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (a Actor) ID() kernel.UUID {
	return a.id
}

func (a Actor) Capabilities() Capabilities {
	return a.capabilities
}

// Can reports whether the actor holds c, directly or through Admin.
func (a Actor) Can(c Capability) bool {
	return a.capabilities.Has(c)
}

// Is reports whether the actor is the person identified by id.
func (a Actor) Is(id *kernel.UUID) bool {
	return id != nil && a.id.IsEqual(*id)
}

func (a Actor) Validate() error {
	return a.guard.Validate(ErrActorIsNotConstructed)
}
