// Package historyrepo stores the append-only delivery transition ledger.
package historyrepo

import (
	"time"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/delivery"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// HistoryDTO is a delivery_history row. FromStatus is NULL on the creation record.
type HistoryDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	DeliveryID uuid.UUID `gorm:"type:uuid;not null;index:idx_delivery_history_delivery,priority:1"`
	FromStatus *int      `gorm:"type:smallint"`
	ToStatus   int       `gorm:"type:smallint;not null"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Notes      string    `gorm:"type:text;not null;default:''"`
	CreatedAt  time.Time `gorm:"not null;index:idx_delivery_history_delivery,priority:2"`
}

func (HistoryDTO) TableName() string {
	return "delivery_history"
}

func fromDomain(record delivery.HistoryRecord) HistoryDTO {
	var from *int
	if f := record.From(); f != nil {
		v := int(*f)
		from = &v
	}

	return HistoryDTO{
		ID:         record.ID().Bytes(),
		DeliveryID: record.DeliveryID().Bytes(),
		FromStatus: from,
		ToStatus:   int(record.To()),
		UserID:     record.UserID().Bytes(),
		Notes:      record.Notes(),
		CreatedAt:  record.CreatedAt(),
	}
}

func toDomain(dto HistoryDTO) (delivery.HistoryRecord, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return delivery.HistoryRecord{}, err
	}
	deliveryID, err := kernel.UUIDFromBytes(dto.DeliveryID[:])
	if err != nil {
		return delivery.HistoryRecord{}, err
	}
	userID, err := kernel.UUIDFromBytes(dto.UserID[:])
	if err != nil {
		return delivery.HistoryRecord{}, err
	}

	var from *delivery.Status
	if dto.FromStatus != nil {
		f := delivery.Status(*dto.FromStatus)
		from = &f
	}

	return delivery.RestoreHistoryRecord(
		id,
		deliveryID,
		from,
		delivery.Status(dto.ToStatus),
		userID,
		dto.Notes,
		dto.CreatedAt.UTC(),
	)
}
