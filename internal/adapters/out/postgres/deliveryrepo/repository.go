package deliveryrepo

import (
	"context"
	"errors"

	"github.com/ticinfraestructura/sigah-sub000/internal/adapters/out/postgres/pgerr"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/delivery"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/ports"
	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ ports.DeliveryRepository = &GormDeliveryRepository{}

// GormDeliveryRepository implements ports.DeliveryRepository using GORM.
type GormDeliveryRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker collects aggregates whose events go to the outbox on commit.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormDeliveryRepository(db *gorm.DB, tracker aggregateTracker) *GormDeliveryRepository {
	return &GormDeliveryRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add inserts the delivery with its line items. A duplicate id or code is a conflict.
func (r *GormDeliveryRepository) Add(ctx context.Context, aggregate *delivery.Delivery) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return pgerr.Translate(err, "delivery", aggregate.ID().String())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update writes the delivery row guarded by the loaded version and replaces
// its line items and deductions.
func (r *GormDeliveryRepository) Update(ctx context.Context, aggregate *delivery.Delivery) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	db := r.db.WithContext(ctx)

	result := db.Model(&DeliveryDTO{}).
		Where("id = ? AND version = ?", dto.ID, aggregate.OriginalVersion()).
		Select("*").
		Omit("ID", clause.Associations).
		Updates(&dto)
	if result.Error != nil {
		return pgerr.Translate(result.Error, "delivery", aggregate.ID().String())
	}
	if result.RowsAffected == 0 {
		return r.missingOrStale(ctx, aggregate.ID())
	}

	if err := db.Where("delivery_id = ?", dto.ID).Delete(&DetailDTO{}).Error; err != nil {
		return err
	}
	if err := db.Where("delivery_id = ?", dto.ID).Delete(&DeductionDTO{}).Error; err != nil {
		return err
	}
	if len(dto.Details) > 0 {
		if err := db.Create(&dto.Details).Error; err != nil {
			return pgerr.Translate(err, "delivery", aggregate.ID().String())
		}
	}
	if len(dto.Deductions) > 0 {
		if err := db.Create(&dto.Deductions).Error; err != nil {
			return err
		}
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormDeliveryRepository) missingOrStale(ctx context.Context, id kernel.UUID) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&DeliveryDTO{}).Where("id = ?", id.Bytes()).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errs.NewObjectNotFoundError("deliveryID", id.String())
	}
	return errs.NewConflictError("delivery", id.String())
}

// Get retrieves a delivery with its line items and deductions.
func (r *GormDeliveryRepository) Get(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto DeliveryDTO
	if err := r.withChildren(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("deliveryID", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// ListByRequest returns every delivery of a request oldest first.
func (r *GormDeliveryRepository) ListByRequest(ctx context.Context, requestID kernel.UUID) ([]*delivery.Delivery, error) {
	if err := requestID.Validate(); err != nil {
		return nil, err
	}

	var dtos []DeliveryDTO
	if err := r.withChildren(ctx).
		Where("request_id = ?", requestID.Bytes()).
		Order("created_at, id").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	deliveries := make([]*delivery.Delivery, 0, len(dtos))
	for _, dto := range dtos {
		d, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		deliveries = append(deliveries, d)
	}

	return deliveries, nil
}

func (r *GormDeliveryRepository) withChildren(ctx context.Context) *gorm.DB {
	byPosition := func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	}
	return r.db.WithContext(ctx).
		Preload("Details", byPosition).
		Preload("Deductions", byPosition)
}
