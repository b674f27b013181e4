package delivery

import (
	"fmt"

	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/errs"
)

// Action is a named workflow operation on a delivery.
type Action int

const (
	UnknownAction Action = iota
	Create
	Authorize
	ReceiveInWarehouse
	StartPreparation
	MarkReady
	ConfirmDelivery
	Cancel
)

type edge struct {
	from Status
	to   Status
}

// edges holds the single legal source of every forward action.
// Cancel has many sources and Create has none.
var edges = map[Action]edge{
	Authorize:          {from: PendingAuthorization, to: Authorized},
	ReceiveInWarehouse: {from: Authorized, to: ReceivedWarehouse},
	StartPreparation:   {from: ReceivedWarehouse, to: InPreparation},
	MarkReady:          {from: InPreparation, to: Ready},
	ConfirmDelivery:    {from: Ready, to: Delivered},
}

func (a Action) String() string {
	switch a {
	case Create:
		return "create"
	case Authorize:
		return "authorize"
	case ReceiveInWarehouse:
		return "receiveInWarehouse"
	case StartPreparation:
		return "startPreparation"
	case MarkReady:
		return "markReady"
	case ConfirmDelivery:
		return "confirmDelivery"
	case Cancel:
		return "cancel"
	case UnknownAction:
		return "unknown"
	default:
		return "unknown"
	}
}

func (a Action) Validate() error {
	if a <= UnknownAction || a > Cancel {
		return errs.NewValueIsInvalidErrorWithCause("action", fmt.Errorf("%d is not a valid action", a))
	}
	return nil
}

// Source returns the single status the action can start from.
// It reports false for Create and Cancel.
func (a Action) Source() (Status, bool) {
	e, ok := edges[a]
	return e.from, ok
}

// Target returns the status the action produces.
func (a Action) Target() Status {
	switch a {
	case Create:
		return PendingAuthorization
	case Cancel:
		return Cancelled
	default:
		return edges[a].to
	}
}
