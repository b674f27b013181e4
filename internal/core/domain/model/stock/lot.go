package stock

import (
	"errors"
	"fmt"
	"time"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/errs"
)

var ErrLotIsNotConstructed = errors.New("Lot must be created via NewLot constructor")

// Lot is a batch of one product sharing entry and expiry dates.
type Lot struct {
	id              kernel.UUID
	productID       kernel.UUID
	quantity        int
	expiryDate      *time.Time
	entryDate       time.Time
	version         int
	originalVersion int
	isConstructed   bool
}

// NewLot registers a lot with version 1.
func NewLot(id, productID kernel.UUID, quantity int, expiryDate *time.Time, entryDate time.Time) (*Lot, error) {
	return RestoreLot(id, productID, quantity, expiryDate, entryDate, 1)
}

// RestoreLot rebuilds a persisted lot.
func RestoreLot(
	id, productID kernel.UUID,
	quantity int,
	expiryDate *time.Time,
	entryDate time.Time,
	version int,
) (*Lot, error) {
	var qtyErr, versionErr error
	if quantity < 0 {
		qtyErr = errs.NewValueIsInvalidErrorWithCause("lot quantity", fmt.Errorf("%d is negative", quantity))
	}
	if version <= 0 {
		versionErr = errs.NewValueIsInvalidErrorWithCause("version", fmt.Errorf("%d is not greater than 0", version))
	}
	if err := errors.Join(id.Validate(), productID.Validate(), qtyErr, versionErr); err != nil {
		return nil, err
	}

	var expiry *time.Time
	if expiryDate != nil {
		e := *expiryDate
		expiry = &e
	}

	return &Lot{
		id:              id,
		productID:       productID,
		quantity:        quantity,
		expiryDate:      expiry,
		entryDate:       entryDate,
		version:         version,
		originalVersion: version,
		isConstructed:   true,
	}, nil
}

func (l *Lot) Validate() error {
	if l == nil || !l.isConstructed {
		return ErrLotIsNotConstructed
	}
	return nil
}

func (l *Lot) ID() kernel.UUID {
	return l.id
}

func (l *Lot) ProductID() kernel.UUID {
	return l.productID
}

func (l *Lot) Quantity() int {
	return l.quantity
}

// ExpiryDate returns nil for non-perishable lots.
func (l *Lot) ExpiryDate() *time.Time {
	if l.expiryDate == nil {
		return nil
	}
	e := *l.expiryDate
	return &e
}

func (l *Lot) EntryDate() time.Time {
	return l.entryDate
}

func (l *Lot) Version() int {
	return l.version
}

func (l *Lot) OriginalVersion() int {
	return l.originalVersion
}

// ExpiresBefore orders lots first expiry first: lots with an expiry date come
// before lots without one, then earlier entry, then id.
func (l *Lot) ExpiresBefore(other *Lot) bool {
	switch {
	case l.expiryDate != nil && other.expiryDate == nil:
		return true
	case l.expiryDate == nil && other.expiryDate != nil:
		return false
	case l.expiryDate != nil && !l.expiryDate.Equal(*other.expiryDate):
		return l.expiryDate.Before(*other.expiryDate)
	case !l.entryDate.Equal(other.entryDate):
		return l.entryDate.Before(other.entryDate)
	default:
		return l.id.String() < other.id.String()
	}
}

// Deduct removes quantity units or fails with InsufficientStockError leaving
// the lot untouched.
func (l *Lot) Deduct(quantity int) error {
	if quantity <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("deduct quantity", fmt.Errorf("%d is not greater than 0", quantity))
	}
	if quantity > l.quantity {
		return errs.NewInsufficientStockError(l.productID.String(), l.id.String(), quantity, l.quantity)
	}
	l.quantity -= quantity
	l.version = l.originalVersion + 1
	return nil
}

// Restore puts back quantity units previously deducted.
func (l *Lot) Restore(quantity int) error {
	if quantity <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("restore quantity", fmt.Errorf("%d is not greater than 0", quantity))
	}
	l.quantity += quantity
	l.version = l.originalVersion + 1
	return nil
}
