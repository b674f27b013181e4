package queries

import (
	"errors"
	"time"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/delivery"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/guard"
)

var (
	ErrGetDeliveryHistoryQueryIsNotConstructed = errors.New(
		"GetDeliveryHistoryQuery must be created via NewGetDeliveryHistoryQuery constructor",
	)
)

// GetDeliveryHistoryQuery reads the audit trail of a delivery, oldest first.
type GetDeliveryHistoryQuery struct {
	deliveryID kernel.UUID
	guard      guard.ConstructorGuard
}

func NewGetDeliveryHistoryQuery(deliveryID kernel.UUID) (GetDeliveryHistoryQuery, error) {
	if err := deliveryID.Validate(); err != nil {
		return GetDeliveryHistoryQuery{}, err
	}
	return GetDeliveryHistoryQuery{
		deliveryID: deliveryID,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (q GetDeliveryHistoryQuery) DeliveryID() kernel.UUID {
	return q.deliveryID
}

func (q GetDeliveryHistoryQuery) Validate() error {
	return q.guard.Validate(ErrGetDeliveryHistoryQueryIsNotConstructed)
}

// GetDeliveryHistoryQueryResponse is one transition. From is nil on the
// creation record.
type GetDeliveryHistoryQueryResponse struct {
	ID        kernel.UUID
	From      *delivery.Status
	To        delivery.Status
	UserID    kernel.UUID
	Notes     string
	CreatedAt time.Time
}
