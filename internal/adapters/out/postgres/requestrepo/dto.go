// Package requestrepo stores the local snapshot of beneficiary requests and
// their delivered quantities.
package requestrepo

import (
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/request"

	"github.com/google/uuid"
)

type RequestDTO struct {
	ID      uuid.UUID        `gorm:"type:uuid;primaryKey"`
	Code    string           `gorm:"type:varchar(32);not null;uniqueIndex"`
	Status  int              `gorm:"type:smallint;not null"`
	Version int              `gorm:"not null"`
	Lines   []RequestLineDTO `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE"`
}

func (RequestDTO) TableName() string {
	return "requests"
}

// RequestLineDTO is keyed by request and item, so an item appears once per request.
type RequestLineDTO struct {
	RequestID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ItemKind          string    `gorm:"type:varchar(16);primaryKey"`
	ItemID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Position          int       `gorm:"not null"`
	QuantityRequested int       `gorm:"not null"`
	QuantityDelivered int       `gorm:"not null;default:0"`
}

func (RequestLineDTO) TableName() string {
	return "request_lines"
}

func fromDomain(aggregate *request.Request) RequestDTO {
	id := aggregate.ID().Bytes()

	lines := make([]RequestLineDTO, 0, len(aggregate.Lines()))
	for i, l := range aggregate.Lines() {
		lines = append(lines, RequestLineDTO{
			RequestID:         id,
			ItemKind:          l.Item().Kind().String(),
			ItemID:            l.Item().ID().Bytes(),
			Position:          i,
			QuantityRequested: l.Requested(),
			QuantityDelivered: l.Delivered(),
		})
	}

	return RequestDTO{
		ID:      id,
		Code:    aggregate.Code(),
		Status:  int(aggregate.Status()),
		Version: aggregate.Version(),
		Lines:   lines,
	}
}

func toDomain(dto RequestDTO) (*request.Request, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	lines := make([]request.Line, 0, len(dto.Lines))
	for _, l := range dto.Lines {
		kind, kindErr := kernel.ParseItemKind(l.ItemKind)
		if kindErr != nil {
			return nil, kindErr
		}
		itemID, idErr := kernel.UUIDFromBytes(l.ItemID[:])
		if idErr != nil {
			return nil, idErr
		}
		item, itemErr := kernel.NewItemRef(kind, itemID)
		if itemErr != nil {
			return nil, itemErr
		}
		line, lineErr := request.NewLine(item, l.QuantityRequested, l.QuantityDelivered)
		if lineErr != nil {
			return nil, lineErr
		}
		lines = append(lines, line)
	}

	return request.RestoreRequest(id, dto.Code, request.Status(dto.Status), lines, dto.Version)
}
