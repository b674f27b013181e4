// Package deliveryrepo persists delivery aggregates: one row per delivery with
// its checkpoints embedded, plus child tables for line items and the stock
// deductions taken at READY.
package deliveryrepo

import (
	"time"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/delivery"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// DeliveryDTO is the deliveries row. Checkpoints are embedded with a prefix
// per step so a nil step maps to NULL columns.
type DeliveryDTO struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code      string    `gorm:"type:varchar(32);not null;uniqueIndex"`
	RequestID uuid.UUID `gorm:"type:uuid;not null;index"`
	Status    int       `gorm:"type:smallint;not null;index"`

	Created            StepDTO `gorm:"embedded;embeddedPrefix:created_"`
	Authorization      StepDTO `gorm:"embedded;embeddedPrefix:authorization_"`
	IsPartialAuth      bool    `gorm:"not null;default:false"`
	AuthorizedQuantity int     `gorm:"not null;default:0"`
	Warehouse          StepDTO `gorm:"embedded;embeddedPrefix:warehouse_"`
	Preparation        StepDTO `gorm:"embedded;embeddedPrefix:preparation_"`
	Ready              StepDTO `gorm:"embedded;embeddedPrefix:ready_"`
	Dispatch           StepDTO `gorm:"embedded;embeddedPrefix:dispatch_"`
	Cancellation       StepDTO `gorm:"embedded;embeddedPrefix:cancellation_"`

	Reception ReceptionDTO `gorm:"embedded;embeddedPrefix:reception_"`
	IsPartial bool         `gorm:"not null;default:false"`

	Version   int       `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:false"`

	Details    []DetailDTO    `gorm:"foreignKey:DeliveryID;constraint:OnDelete:CASCADE"`
	Deductions []DeductionDTO `gorm:"foreignKey:DeliveryID;constraint:OnDelete:CASCADE"`
}

func (DeliveryDTO) TableName() string {
	return "deliveries"
}

// StepDTO is one checkpoint. By is NULL when the step has not happened.
type StepDTO struct {
	By    *uuid.UUID `gorm:"type:uuid"`
	At    *time.Time
	Notes string `gorm:"type:text;not null;default:''"`
}

// ReceptionDTO holds the beneficiary data captured on DELIVERED.
type ReceptionDTO struct {
	ReceivedBy        string `gorm:"type:varchar(200);not null;default:''"`
	ReceiverDocument  string `gorm:"type:varchar(50);not null;default:''"`
	ReceiverSignature string `gorm:"type:text;not null;default:''"`
	Notes             string `gorm:"type:text;not null;default:''"`
}

// DetailDTO is a delivery_details row. Position keeps the line order.
type DetailDTO struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey"`
	DeliveryID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	Position          int        `gorm:"not null"`
	ItemKind          string     `gorm:"type:varchar(16);not null"`
	ItemID            uuid.UUID  `gorm:"type:uuid;not null;index"`
	LotID             *uuid.UUID `gorm:"type:uuid"`
	Quantity          int        `gorm:"not null"`
	RequestedQuantity int        `gorm:"not null"`
}

func (DetailDTO) TableName() string {
	return "delivery_details"
}

// DeductionDTO is a delivery_deductions row.
type DeductionDTO struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	DeliveryID uuid.UUID `gorm:"type:uuid;not null;index"`
	Position   int       `gorm:"not null"`
	LotID      uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID  uuid.UUID `gorm:"type:uuid;not null"`
	Quantity   int       `gorm:"not null"`
}

func (DeductionDTO) TableName() string {
	return "delivery_deductions"
}

func fromDomain(aggregate *delivery.Delivery) DeliveryDTO {
	s := aggregate.State()
	id := s.ID.Bytes()

	dto := DeliveryDTO{
		ID:                 id,
		Code:               s.Code,
		RequestID:          s.RequestID.Bytes(),
		Status:             int(s.Status),
		Created:            stepFromDomain(&s.Created),
		Authorization:      stepFromDomain(s.Authorization),
		IsPartialAuth:      s.IsPartialAuth,
		AuthorizedQuantity: s.AuthorizedQuantity,
		Warehouse:          stepFromDomain(s.Warehouse),
		Preparation:        stepFromDomain(s.Preparation),
		Ready:              stepFromDomain(s.Ready),
		Dispatch:           stepFromDomain(s.Dispatch),
		Cancellation:       stepFromDomain(s.Cancellation),
		IsPartial:          s.IsPartial,
		Version:            s.Version,
		UpdatedAt:          s.UpdatedAt,
		Details:            detailsFromDomain(id, s.Details),
		Deductions:         deductionsFromDomain(id, s.Deductions),
	}

	if r := s.Reception; r != nil {
		dto.Reception = ReceptionDTO{
			ReceivedBy:        r.ReceivedBy(),
			ReceiverDocument:  r.ReceiverDocument(),
			ReceiverSignature: r.ReceiverSignature(),
			Notes:             r.Notes(),
		}
	}

	return dto
}

func stepFromDomain(step *delivery.Step) StepDTO {
	if step == nil {
		return StepDTO{}
	}
	by := step.By.Bytes()
	at := step.At
	return StepDTO{By: &by, At: &at, Notes: step.Notes}
}

func detailsFromDomain(deliveryID uuid.UUID, details []delivery.Detail) []DetailDTO {
	out := make([]DetailDTO, 0, len(details))
	for i, d := range details {
		var lotID *uuid.UUID
		if lot := d.LotID(); lot != nil {
			raw := lot.Bytes()
			lotID = &raw
		}
		out = append(out, DetailDTO{
			ID:                d.ID().Bytes(),
			DeliveryID:        deliveryID,
			Position:          i,
			ItemKind:          d.Item().Kind().String(),
			ItemID:            d.Item().ID().Bytes(),
			LotID:             lotID,
			Quantity:          d.Quantity(),
			RequestedQuantity: d.RequestedQuantity(),
		})
	}
	return out
}

func deductionsFromDomain(deliveryID uuid.UUID, deductions []delivery.Deduction) []DeductionDTO {
	out := make([]DeductionDTO, 0, len(deductions))
	for i, d := range deductions {
		out = append(out, DeductionDTO{
			DeliveryID: deliveryID,
			Position:   i,
			LotID:      d.LotID().Bytes(),
			ProductID:  d.ProductID().Bytes(),
			Quantity:   d.Quantity(),
		})
	}
	return out
}

// toDomain rebuilds the aggregate with RestoreDelivery. Details and
// Deductions must already be sorted by Position.
func toDomain(dto DeliveryDTO) (*delivery.Delivery, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	requestID, err := kernel.UUIDFromBytes(dto.RequestID[:])
	if err != nil {
		return nil, err
	}

	created, err := stepToDomain(dto.Created)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, kernel.ErrUUIDIsNotConstructed
	}

	s := delivery.State{
		ID:                 id,
		Code:               dto.Code,
		RequestID:          requestID,
		Status:             delivery.Status(dto.Status),
		Created:            *created,
		IsPartialAuth:      dto.IsPartialAuth,
		AuthorizedQuantity: dto.AuthorizedQuantity,
		IsPartial:          dto.IsPartial,
		Version:            dto.Version,
		UpdatedAt:          dto.UpdatedAt,
	}

	steps := []struct {
		src StepDTO
		dst **delivery.Step
	}{
		{dto.Authorization, &s.Authorization},
		{dto.Warehouse, &s.Warehouse},
		{dto.Preparation, &s.Preparation},
		{dto.Ready, &s.Ready},
		{dto.Dispatch, &s.Dispatch},
		{dto.Cancellation, &s.Cancellation},
	}
	for _, st := range steps {
		if *st.dst, err = stepToDomain(st.src); err != nil {
			return nil, err
		}
	}

	if dto.Reception.ReceivedBy != "" {
		r, recErr := delivery.NewReception(
			dto.Reception.ReceivedBy,
			dto.Reception.ReceiverDocument,
			dto.Reception.ReceiverSignature,
			dto.Reception.Notes,
		)
		if recErr != nil {
			return nil, recErr
		}
		s.Reception = &r
	}

	if s.Details, err = detailsToDomain(dto.Details); err != nil {
		return nil, err
	}
	if s.Deductions, err = deductionsToDomain(dto.Deductions); err != nil {
		return nil, err
	}

	return delivery.RestoreDelivery(s)
}

func stepToDomain(dto StepDTO) (*delivery.Step, error) {
	if dto.By == nil {
		return nil, nil
	}
	by, err := kernel.UUIDFromBytes((*dto.By)[:])
	if err != nil {
		return nil, err
	}
	step := &delivery.Step{By: by, Notes: dto.Notes}
	if dto.At != nil {
		step.At = dto.At.UTC()
	}
	return step, nil
}

func detailsToDomain(dtos []DetailDTO) ([]delivery.Detail, error) {
	out := make([]delivery.Detail, 0, len(dtos))
	for _, dto := range dtos {
		id, err := kernel.UUIDFromBytes(dto.ID[:])
		if err != nil {
			return nil, err
		}
		kind, err := kernel.ParseItemKind(dto.ItemKind)
		if err != nil {
			return nil, err
		}
		itemID, err := kernel.UUIDFromBytes(dto.ItemID[:])
		if err != nil {
			return nil, err
		}
		item, err := kernel.NewItemRef(kind, itemID)
		if err != nil {
			return nil, err
		}

		var lotID *kernel.UUID
		if dto.LotID != nil {
			lot, lotErr := kernel.UUIDFromBytes((*dto.LotID)[:])
			if lotErr != nil {
				return nil, lotErr
			}
			lotID = &lot
		}

		detail, err := delivery.RestoreDetail(id, item, lotID, dto.Quantity, dto.RequestedQuantity)
		if err != nil {
			return nil, err
		}
		out = append(out, detail)
	}
	return out, nil
}

func deductionsToDomain(dtos []DeductionDTO) ([]delivery.Deduction, error) {
	out := make([]delivery.Deduction, 0, len(dtos))
	for _, dto := range dtos {
		lotID, err := kernel.UUIDFromBytes(dto.LotID[:])
		if err != nil {
			return nil, err
		}
		productID, err := kernel.UUIDFromBytes(dto.ProductID[:])
		if err != nil {
			return nil, err
		}
		d, err := delivery.NewDeduction(lotID, productID, dto.Quantity)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
