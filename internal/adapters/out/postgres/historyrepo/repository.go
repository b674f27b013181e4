package historyrepo

import (
	"context"

	"github.com/ticinfraestructura/sigah-sub000/internal/adapters/out/postgres/pgerr"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/delivery"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/ports"

	"gorm.io/gorm"
)

var _ ports.AuditLog = &GormAuditLog{}

// GormAuditLog implements ports.AuditLog. Rows are only ever inserted.
type GormAuditLog struct {
	db *gorm.DB
}

func NewGormAuditLog(db *gorm.DB) *GormAuditLog {
	return &GormAuditLog{db: db}
}

func (l *GormAuditLog) Append(ctx context.Context, records ...delivery.HistoryRecord) error {
	if len(records) == 0 {
		return nil
	}

	dtos := make([]HistoryDTO, 0, len(records))
	for _, r := range records {
		dtos = append(dtos, fromDomain(r))
	}

	if err := l.db.WithContext(ctx).Create(&dtos).Error; err != nil {
		return pgerr.Translate(err, "history", records[0].DeliveryID().String())
	}
	return nil
}

// ListByDelivery orders by time, then by target status. Statuses only grow
// along a walk, so the tie-break keeps records written in the same instant
// in walk order.
func (l *GormAuditLog) ListByDelivery(ctx context.Context, deliveryID kernel.UUID) ([]delivery.HistoryRecord, error) {
	if err := deliveryID.Validate(); err != nil {
		return nil, err
	}

	var dtos []HistoryDTO
	if err := l.db.WithContext(ctx).
		Where("delivery_id = ?", deliveryID.Bytes()).
		Order("created_at, to_status").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	records := make([]delivery.HistoryRecord, 0, len(dtos))
	for _, dto := range dtos {
		r, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}
