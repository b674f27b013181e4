package delivery_test

import (
	"strings"
	"testing"
	"time"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/delivery"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type fixture struct {
	product kernel.ItemRef
	kit     kernel.ItemRef
	lot     kernel.UUID
	creator kernel.UUID
}

func newFixture() fixture {
	return fixture{
		product: kernel.ProductRef(kernel.NewUUID()),
		kit:     kernel.KitRef(kernel.NewUUID()),
		lot:     kernel.NewUUID(),
		creator: kernel.NewUUID(),
	}
}

func (f fixture) details(t *testing.T) []delivery.Detail {
	t.Helper()
	lot := f.lot
	p, err := delivery.NewDetail(f.product, &lot, 10)
	require.NoError(t, err)
	k, err := delivery.NewDetail(f.kit, nil, 2)
	require.NoError(t, err)
	return []delivery.Detail{p, k}
}

func (f fixture) newDelivery(t *testing.T) *delivery.Delivery {
	t.Helper()
	d, _, err := delivery.NewDelivery(kernel.NewUUID(), kernel.NewUUID(), f.creator, f.details(t), "", now)
	require.NoError(t, err)
	return d
}

func (f fixture) deductions(t *testing.T) []delivery.Deduction {
	t.Helper()
	ded, err := delivery.NewDeduction(f.lot, f.product.ID(), 10)
	require.NoError(t, err)
	return []delivery.Deduction{ded}
}

// walkTo advances d to target using fresh actors for every step.
func (f fixture) walkTo(t *testing.T, d *delivery.Delivery, target delivery.Status) {
	t.Helper()
	steps := []struct {
		status delivery.Status
		run    func() error
	}{
		{delivery.Authorized, func() error {
			_, err := d.Authorize(kernel.NewUUID(), "ok", nil, now)
			return err
		}},
		{delivery.ReceivedWarehouse, func() error {
			_, err := d.ReceiveInWarehouse(kernel.NewUUID(), "", now)
			return err
		}},
		{delivery.InPreparation, func() error {
			_, err := d.StartPreparation(kernel.NewUUID(), "", now)
			return err
		}},
		{delivery.Ready, func() error {
			_, err := d.MarkReady(kernel.NewUUID(), "", f.deductions(t), now)
			return err
		}},
		{delivery.Delivered, func() error {
			r, err := delivery.NewReception("Ana Ruiz", "CC-123", "", "")
			require.NoError(t, err)
			_, err = d.ConfirmDelivery(kernel.NewUUID(), r, "", now)
			return err
		}},
	}
	for _, s := range steps {
		if d.Status() == target {
			return
		}
		require.NoError(t, s.run())
	}
}

func TestNewDelivery(t *testing.T) {
	f := newFixture()

	t.Run("creates pending delivery with creation record", func(t *testing.T) {
		id := kernel.NewUUID()
		requestID := kernel.NewUUID()

		d, record, err := delivery.NewDelivery(id, requestID, f.creator, f.details(t), "first cycle", now)

		require.NoError(t, err)
		require.NoError(t, d.Validate())
		assert.Equal(t, delivery.PendingAuthorization, d.Status())
		assert.Equal(t, "ENT-20260314-"+id.Short(), d.Code())
		assert.True(t, d.RequestID().IsEqual(requestID))
		assert.True(t, d.CreatedBy().IsEqual(f.creator))
		assert.Nil(t, d.AuthorizedBy())
		assert.Equal(t, 1, d.Version())
		assert.Equal(t, 0, d.OriginalVersion())
		assert.Len(t, d.Details(), 2)

		assert.Nil(t, record.From())
		assert.Equal(t, delivery.PendingAuthorization, record.To())
		assert.Equal(t, "first cycle", record.Notes())
		assert.True(t, record.DeliveryID().IsEqual(id))

		events := d.PullEvents()
		require.Len(t, events, 1)
		e, ok := events[0].(delivery.TransitionRecorded)
		require.True(t, ok)
		assert.Equal(t, "create", e.Action)
		assert.Empty(t, e.From)
		assert.Empty(t, d.PullEvents())
	})

	t.Run("joins validation errors", func(t *testing.T) {
		_, _, err := delivery.NewDelivery(kernel.UUID{}, kernel.UUID{}, kernel.UUID{}, nil, "", now)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "requestId")
		assert.Contains(t, err.Error(), "deliveryDetails")
		assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	})

	t.Run("rejects duplicate items", func(t *testing.T) {
		a, err := delivery.NewDetail(f.product, nil, 1)
		require.NoError(t, err)
		b, err := delivery.NewDetail(f.product, nil, 2)
		require.NoError(t, err)

		_, _, err = delivery.NewDelivery(kernel.NewUUID(), kernel.NewUUID(), f.creator, []delivery.Detail{a, b}, "", now)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Contains(t, err.Error(), "more than one line")
	})
}

func TestNewDetail(t *testing.T) {
	f := newFixture()

	t.Run("lot only on products", func(t *testing.T) {
		lot := kernel.NewUUID()

		_, err := delivery.NewDetail(f.kit, &lot, 1)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("quantity must be positive", func(t *testing.T) {
		_, err := delivery.NewDetail(f.product, nil, 0)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "0 is not greater than 0")
	})

	t.Run("requested equals quantity", func(t *testing.T) {
		d, err := delivery.NewDetail(f.product, nil, 7)

		require.NoError(t, err)
		assert.Equal(t, 7, d.RequestedQuantity())
		assert.False(t, d.IsReduced())
		assert.Nil(t, d.LotID())
	})
}

func TestDelivery_Authorize(t *testing.T) {
	f := newFixture()
	authorizer := kernel.NewUUID()

	t.Run("full authorization", func(t *testing.T) {
		d := f.newDelivery(t)

		record, err := d.Authorize(authorizer, "approved", nil, now)

		require.NoError(t, err)
		assert.Equal(t, delivery.Authorized, d.Status())
		assert.Equal(t, delivery.PendingAuthorization, *record.From())
		assert.Equal(t, delivery.Authorized, record.To())
		assert.True(t, d.AuthorizedBy().IsEqual(authorizer))
		assert.False(t, d.IsPartialAuth())
		assert.Equal(t, 12, d.AuthorizedQuantity())
		assert.Equal(t, 1, d.Version(), "not yet inserted, the insert carries the change")
	})

	t.Run("persisted delivery gains one version per write", func(t *testing.T) {
		stored, err := delivery.RestoreDelivery(f.newDelivery(t).State())
		require.NoError(t, err)
		require.Equal(t, 1, stored.OriginalVersion())

		_, err = stored.Authorize(authorizer, "approved", nil, now)
		require.NoError(t, err)
		assert.Equal(t, 2, stored.Version())

		_, err = stored.ReceiveInWarehouse(kernel.NewUUID(), "", now)
		require.NoError(t, err)
		assert.Equal(t, 2, stored.Version())
		assert.Equal(t, 1, stored.OriginalVersion())
	})

	t.Run("partial authorization lowers quantities", func(t *testing.T) {
		d := f.newDelivery(t)

		_, err := d.Authorize(authorizer, "", map[kernel.ItemRef]int{f.product: 4}, now)

		require.NoError(t, err)
		assert.True(t, d.IsPartialAuth())
		assert.Equal(t, 6, d.AuthorizedQuantity())
		assert.Equal(t, 4, d.Quantities()[f.product])
		for _, detail := range d.Details() {
			if detail.Item() == f.product {
				assert.Equal(t, 10, detail.RequestedQuantity())
			}
		}
	})

	t.Run("cannot raise quantities", func(t *testing.T) {
		d := f.newDelivery(t)

		_, err := d.Authorize(authorizer, "", map[kernel.ItemRef]int{f.product: 11}, now)

		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
		assert.Equal(t, delivery.PendingAuthorization, d.Status())
		assert.Equal(t, 10, d.Quantities()[f.product])
	})

	t.Run("unknown item", func(t *testing.T) {
		d := f.newDelivery(t)

		_, err := d.Authorize(authorizer, "", map[kernel.ItemRef]int{kernel.ProductRef(kernel.NewUUID()): 1}, now)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("twice fails with invalid transition", func(t *testing.T) {
		d := f.newDelivery(t)
		_, err := d.Authorize(authorizer, "", nil, now)
		require.NoError(t, err)

		_, err = d.Authorize(authorizer, "", nil, now)

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
	})
}

func TestDelivery_MarkReady(t *testing.T) {
	f := newFixture()

	t.Run("records deductions", func(t *testing.T) {
		d := f.newDelivery(t)
		f.walkTo(t, d, delivery.InPreparation)

		_, err := d.MarkReady(kernel.NewUUID(), "", f.deductions(t), now)

		require.NoError(t, err)
		assert.Equal(t, delivery.Ready, d.Status())
		require.Len(t, d.Deductions(), 1)
		assert.Equal(t, 10, d.Deductions()[0].Quantity())
	})

	t.Run("requires deductions", func(t *testing.T) {
		d := f.newDelivery(t)
		f.walkTo(t, d, delivery.InPreparation)

		_, err := d.MarkReady(kernel.NewUUID(), "", nil, now)

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.Equal(t, delivery.InPreparation, d.Status())
	})

	t.Run("from wrong status", func(t *testing.T) {
		d := f.newDelivery(t)

		_, err := d.MarkReady(kernel.NewUUID(), "", f.deductions(t), now)

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Empty(t, d.Deductions())
	})
}

func TestDelivery_ConfirmDelivery(t *testing.T) {
	f := newFixture()

	t.Run("stores reception", func(t *testing.T) {
		d := f.newDelivery(t)
		f.walkTo(t, d, delivery.Delivered)

		require.NotNil(t, d.Reception())
		assert.Equal(t, "Ana Ruiz", d.Reception().ReceivedBy())
		assert.NotNil(t, d.DeliveredBy())
		assert.True(t, d.Status().IsTerminal())
	})

	t.Run("reception requires identity", func(t *testing.T) {
		_, err := delivery.NewReception("  ", "", "sig", "")

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.Contains(t, err.Error(), "receivedBy")
		assert.Contains(t, err.Error(), "receiverDocument")
	})

	t.Run("zero reception rejected", func(t *testing.T) {
		d := f.newDelivery(t)
		f.walkTo(t, d, delivery.Ready)

		_, err := d.ConfirmDelivery(kernel.NewUUID(), delivery.Reception{}, "", now)

		require.ErrorIs(t, err, delivery.ErrReceptionIsNotConstructed)
		assert.Equal(t, delivery.Ready, d.Status())
	})
}

func TestDelivery_Cancel(t *testing.T) {
	f := newFixture()
	admin := kernel.NewUUID()

	t.Run("before ready returns nothing to reverse", func(t *testing.T) {
		for _, target := range []delivery.Status{
			delivery.PendingAuthorization,
			delivery.Authorized,
			delivery.ReceivedWarehouse,
			delivery.InPreparation,
		} {
			d := f.newDelivery(t)
			f.walkTo(t, d, target)

			record, toReverse, err := d.Cancel(admin, "duplicate", now)

			require.NoError(t, err)
			assert.Empty(t, toReverse)
			assert.Equal(t, delivery.Cancelled, d.Status())
			assert.Equal(t, target, *record.From())
			assert.Equal(t, "duplicate", record.Notes())
		}
	})

	t.Run("from ready returns recorded deductions", func(t *testing.T) {
		d := f.newDelivery(t)
		f.walkTo(t, d, delivery.Ready)

		_, toReverse, err := d.Cancel(admin, "beneficiary relocated", now)

		require.NoError(t, err)
		require.Len(t, toReverse, 1)
		assert.Equal(t, f.lot, toReverse[0].LotID())
		cancellation := d.State().Cancellation
		require.NotNil(t, cancellation)
		assert.True(t, cancellation.By.IsEqual(admin))
		assert.Equal(t, "beneficiary relocated", cancellation.Notes)
	})

	t.Run("reason required", func(t *testing.T) {
		d := f.newDelivery(t)

		_, _, err := d.Cancel(admin, " ", now)

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.Equal(t, delivery.PendingAuthorization, d.Status())
	})

	t.Run("terminal statuses are immutable", func(t *testing.T) {
		d := f.newDelivery(t)
		f.walkTo(t, d, delivery.Delivered)

		_, _, err := d.Cancel(admin, "late", now)

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
	})
}

func TestRestoreDelivery(t *testing.T) {
	f := newFixture()

	t.Run("round trips through State", func(t *testing.T) {
		d := f.newDelivery(t)
		f.walkTo(t, d, delivery.Ready)

		restored, err := delivery.RestoreDelivery(d.State())

		require.NoError(t, err)
		assert.Equal(t, d.State(), restored.State())
		assert.Equal(t, d.Version(), restored.OriginalVersion())
		assert.Empty(t, restored.PullEvents())
	})

	t.Run("rejects status without checkpoints", func(t *testing.T) {
		d := f.newDelivery(t)
		state := d.State()
		state.Status = delivery.Ready

		_, err := delivery.RestoreDelivery(state)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "READY requires authorization")
	})

	t.Run("rejects foreign code", func(t *testing.T) {
		state := f.newDelivery(t).State()
		state.Code = "ORD-1"

		_, err := delivery.RestoreDelivery(state)

		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "code"))
	})
}

func TestIsValidWalk(t *testing.T) {
	f := newFixture()
	d, created, err := delivery.NewDelivery(kernel.NewUUID(), kernel.NewUUID(), f.creator, f.details(t), "", now)
	require.NoError(t, err)

	records := []delivery.HistoryRecord{created}
	auth, err := d.Authorize(kernel.NewUUID(), "", nil, now)
	require.NoError(t, err)
	records = append(records, auth)
	cancel, _, err := d.Cancel(kernel.NewUUID(), "stop", now)
	require.NoError(t, err)
	records = append(records, cancel)

	assert.True(t, delivery.IsValidWalk(records))
	assert.False(t, delivery.IsValidWalk([]delivery.HistoryRecord{auth}))
	assert.False(t, delivery.IsValidWalk([]delivery.HistoryRecord{created, cancel}))
}
