package delivery

import (
	"errors"
	"fmt"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/errs"
)

// Deduction is one allocation taken from a stock lot when the delivery became READY.
// Cancelling a READY delivery puts back exactly these quantities.
type Deduction struct {
	lotID     kernel.UUID
	productID kernel.UUID
	quantity  int
}

func NewDeduction(lotID, productID kernel.UUID, quantity int) (Deduction, error) {
	var qtyErr error
	if quantity <= 0 {
		qtyErr = errs.NewValueIsInvalidErrorWithCause("deduction quantity", fmt.Errorf("%d is not greater than 0", quantity))
	}
	if err := errors.Join(lotID.Validate(), productID.Validate(), qtyErr); err != nil {
		return Deduction{}, err
	}
	return Deduction{lotID: lotID, productID: productID, quantity: quantity}, nil
}

func (d Deduction) LotID() kernel.UUID {
	return d.lotID
}

func (d Deduction) ProductID() kernel.UUID {
	return d.productID
}

func (d Deduction) Quantity() int {
	return d.quantity
}
