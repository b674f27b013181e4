// Package queries reads delivery state with plain SQL, bypassing the aggregates.
package queries

import (
	"errors"
	"time"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/delivery"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/guard"
)

var (
	ErrGetDeliveryQueryIsNotConstructed = errors.New(
		"GetDeliveryQuery must be created via NewGetDeliveryQuery constructor",
	)
)

// GetDeliveryQuery reads one delivery with its line items and deductions.
//
// Example:
//
//	query, err := NewGetDeliveryQuery(id)
//	view, err := handler.Handle(ctx, query)
//	if errors.Is(err, errs.ErrObjectNotFound) {
//	    // unknown delivery
//	}
type GetDeliveryQuery struct {
	deliveryID kernel.UUID
	guard      guard.ConstructorGuard
}

func NewGetDeliveryQuery(deliveryID kernel.UUID) (GetDeliveryQuery, error) {
	if err := deliveryID.Validate(); err != nil {
		return GetDeliveryQuery{}, err
	}
	return GetDeliveryQuery{
		deliveryID: deliveryID,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (q GetDeliveryQuery) DeliveryID() kernel.UUID {
	return q.deliveryID
}

func (q GetDeliveryQuery) Validate() error {
	return q.guard.Validate(ErrGetDeliveryQueryIsNotConstructed)
}

// GetDeliveryQueryResponse is the read model of a delivery. Checkpoints that
// have not happened yet are nil.
type GetDeliveryQueryResponse struct {
	ID                 kernel.UUID
	Code               string
	RequestID          kernel.UUID
	Status             delivery.Status
	Created            Checkpoint
	Authorization      *Checkpoint
	IsPartialAuth      bool
	AuthorizedQuantity int
	Warehouse          *Checkpoint
	Preparation        *Checkpoint
	Ready              *Checkpoint
	Dispatch           *Checkpoint
	Cancellation       *Checkpoint
	Reception          *Reception
	IsPartial          bool
	Details            []DetailLine
	Deductions         []DeductionLine
	Version            int
	UpdatedAt          time.Time
}

// Checkpoint is who performed a workflow step and when.
type Checkpoint struct {
	By    kernel.UUID
	At    time.Time
	Notes string
}

type Reception struct {
	ReceivedBy        string
	ReceiverDocument  string
	ReceiverSignature string
	Notes             string
}

type DetailLine struct {
	ID                kernel.UUID
	Item              kernel.ItemRef
	LotID             *kernel.UUID
	Quantity          int
	RequestedQuantity int
}

type DeductionLine struct {
	LotID     kernel.UUID
	ProductID kernel.UUID
	Quantity  int
}
