package delivery

import (
	"errors"
	"fmt"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/errs"
)

// Detail is a delivery line item: a product or kit, an optional stock lot and
// the quantity that will leave the warehouse.
//
// requestedQuantity keeps the quantity asked for at creation, quantity is the
// one in force after a partial authorization.
type Detail struct {
	id                kernel.UUID
	item              kernel.ItemRef
	lotID             *kernel.UUID
	quantity          int
	requestedQuantity int
}

// NewDetail builds a line item for a new delivery. A lot can only be pinned on
// PRODUCT lines; kits are always allocated from their component lots.
func NewDetail(item kernel.ItemRef, lotID *kernel.UUID, quantity int) (Detail, error) {
	return RestoreDetail(kernel.NewUUID(), item, lotID, quantity, quantity)
}

// RestoreDetail rebuilds a persisted line item.
func RestoreDetail(
	id kernel.UUID,
	item kernel.ItemRef,
	lotID *kernel.UUID,
	quantity, requestedQuantity int,
) (Detail, error) {
	var lotErr error
	if lotID != nil {
		lotErr = lotID.Validate()
		if lotErr == nil && !item.IsProduct() {
			lotErr = errs.NewValueIsInvalidErrorWithCause("lotId", errors.New("a lot can only be set on PRODUCT items"))
		}
	}

	var qtyErr error
	switch {
	case quantity <= 0:
		qtyErr = errs.NewValueIsInvalidErrorWithCause("quantity", fmt.Errorf("%d is not greater than 0", quantity))
	case requestedQuantity < quantity:
		qtyErr = errs.NewValueIsOutOfRangeError("quantity", quantity, 1, requestedQuantity)
	}

	if err := errors.Join(id.Validate(), item.Validate(), lotErr, qtyErr); err != nil {
		return Detail{}, err
	}

	var lot *kernel.UUID
	if lotID != nil {
		l := *lotID
		lot = &l
	}

	return Detail{
		id:                id,
		item:              item,
		lotID:             lot,
		quantity:          quantity,
		requestedQuantity: requestedQuantity,
	}, nil
}

func (d Detail) ID() kernel.UUID {
	return d.id
}

func (d Detail) Item() kernel.ItemRef {
	return d.item
}

// LotID returns the pinned lot, or nil when the line is allocated FEFO.
func (d Detail) LotID() *kernel.UUID {
	if d.lotID == nil {
		return nil
	}
	l := *d.lotID
	return &l
}

func (d Detail) Quantity() int {
	return d.quantity
}

func (d Detail) RequestedQuantity() int {
	return d.requestedQuantity
}

// IsReduced reports whether authorization lowered the quantity.
func (d Detail) IsReduced() bool {
	return d.quantity < d.requestedQuantity
}

func (d Detail) withQuantity(quantity int) (Detail, error) {
	if quantity <= 0 || quantity > d.requestedQuantity {
		return Detail{}, errs.NewValueIsOutOfRangeError(
			"authorized quantity of "+d.item.String(), quantity, 1, d.requestedQuantity)
	}
	d.quantity = quantity
	return d, nil
}

// QuantitiesByItem sums line quantities per item.
func QuantitiesByItem(details []Detail) map[kernel.ItemRef]int {
	out := make(map[kernel.ItemRef]int, len(details))
	for _, d := range details {
		out[d.item] += d.quantity
	}
	return out
}
