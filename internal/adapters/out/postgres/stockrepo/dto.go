// Package stockrepo stores stock lots and kit compositions.
package stockrepo

import (
	"time"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/stock"

	"github.com/google/uuid"
)

type LotDTO struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ProductID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	Quantity   int        `gorm:"not null;check:chk_stock_lots_quantity,quantity >= 0"`
	ExpiryDate *time.Time `gorm:"type:date"`
	EntryDate  time.Time  `gorm:"not null"`
	Version    int        `gorm:"not null"`
}

func (LotDTO) TableName() string {
	return "stock_lots"
}

type KitComponentDTO struct {
	KitID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Quantity  int       `gorm:"not null"`
}

func (KitComponentDTO) TableName() string {
	return "kit_components"
}

func lotFromDomain(lot *stock.Lot) LotDTO {
	return LotDTO{
		ID:         lot.ID().Bytes(),
		ProductID:  lot.ProductID().Bytes(),
		Quantity:   lot.Quantity(),
		ExpiryDate: lot.ExpiryDate(),
		EntryDate:  lot.EntryDate(),
		Version:    lot.Version(),
	}
}

func lotToDomain(dto LotDTO) (*stock.Lot, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	productID, err := kernel.UUIDFromBytes(dto.ProductID[:])
	if err != nil {
		return nil, err
	}

	var expiry *time.Time
	if dto.ExpiryDate != nil {
		e := dto.ExpiryDate.UTC()
		expiry = &e
	}

	return stock.RestoreLot(id, productID, dto.Quantity, expiry, dto.EntryDate.UTC(), dto.Version)
}

func componentToDomain(dto KitComponentDTO) (kernel.UUID, stock.KitComponent, error) {
	kitID, err := kernel.UUIDFromBytes(dto.KitID[:])
	if err != nil {
		return kernel.UUID{}, stock.KitComponent{}, err
	}
	productID, err := kernel.UUIDFromBytes(dto.ProductID[:])
	if err != nil {
		return kernel.UUID{}, stock.KitComponent{}, err
	}

	c := stock.KitComponent{ProductID: productID, Quantity: dto.Quantity}
	if err = c.Validate(); err != nil {
		return kernel.UUID{}, stock.KitComponent{}, err
	}
	return kitID, c, nil
}
