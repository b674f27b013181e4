package stock

import (
	"fmt"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/errs"
)

// KitComponent is one product of a kit and how many units one kit holds.
type KitComponent struct {
	ProductID kernel.UUID
	Quantity  int
}

func (c KitComponent) Validate() error {
	if err := c.ProductID.Validate(); err != nil {
		return err
	}
	if c.Quantity <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("component quantity", fmt.Errorf("%d is not greater than 0", c.Quantity))
	}
	return nil
}
