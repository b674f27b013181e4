package services_test

import (
	"testing"
	"time"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/actor"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/delivery"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func newActor(t *testing.T, id kernel.UUID, caps ...actor.Capability) actor.Actor {
	t.Helper()
	a, err := actor.NewActor(id, actor.NewCapabilities(caps...))
	require.NoError(t, err)
	return a
}

// people holds one id per checkpoint of a walked delivery.
type people struct {
	creator, authorizer, receiver, preparer, readier kernel.UUID
}

func newPeople() people {
	return people{
		creator:    kernel.NewUUID(),
		authorizer: kernel.NewUUID(),
		receiver:   kernel.NewUUID(),
		preparer:   kernel.NewUUID(),
		readier:    kernel.NewUUID(),
	}
}

func productDelivery(t *testing.T, creator kernel.UUID, product kernel.UUID, qty int) *delivery.Delivery {
	t.Helper()
	detail, err := delivery.NewDetail(kernel.ProductRef(product), nil, qty)
	require.NoError(t, err)
	d, _, err := delivery.NewDelivery(kernel.NewUUID(), kernel.NewUUID(), creator, []delivery.Detail{detail}, "", now)
	require.NoError(t, err)
	return d
}

// walk advances d to target, each checkpoint signed by the matching person.
func walk(t *testing.T, d *delivery.Delivery, p people, target delivery.Status) {
	t.Helper()
	for d.Status() != target {
		var err error
		switch d.Status() {
		case delivery.PendingAuthorization:
			_, err = d.Authorize(p.authorizer, "", nil, now)
		case delivery.Authorized:
			_, err = d.ReceiveInWarehouse(p.receiver, "", now)
		case delivery.ReceivedWarehouse:
			_, err = d.StartPreparation(p.preparer, "", now)
		case delivery.InPreparation:
			var ded delivery.Deduction
			ded, err = delivery.NewDeduction(kernel.NewUUID(), d.Details()[0].Item().ID(), d.Details()[0].Quantity())
			require.NoError(t, err)
			_, err = d.MarkReady(p.readier, "", []delivery.Deduction{ded}, now)
		default:
			t.Fatalf("cannot walk from %s to %s", d.Status(), target)
		}
		require.NoError(t, err)
	}
}
