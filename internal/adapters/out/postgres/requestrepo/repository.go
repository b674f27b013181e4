package requestrepo

import (
	"context"
	"errors"

	"github.com/ticinfraestructura/sigah-sub000/internal/adapters/out/postgres/pgerr"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/request"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/ports"
	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ ports.RequestRepository = &GormRequestRepository{}

// GormRequestRepository implements ports.RequestRepository using GORM.
type GormRequestRepository struct {
	db *gorm.DB
}

func NewGormRequestRepository(db *gorm.DB) *GormRequestRepository {
	return &GormRequestRepository{db: db}
}

func (r *GormRequestRepository) Add(ctx context.Context, aggregate *request.Request) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return pgerr.Translate(err, "request", aggregate.ID().String())
	}
	return nil
}

func (r *GormRequestRepository) Get(ctx context.Context, id kernel.UUID) (*request.Request, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate takes a row lock on the request. The lock is released when the
// surrounding transaction ends.
func (r *GormRequestRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*request.Request, error) {
	return r.get(ctx, id, true)
}

func (r *GormRequestRepository) get(ctx context.Context, id kernel.UUID, lock bool) (*request.Request, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	db := r.db.WithContext(ctx)
	query := db
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var dto RequestDTO
	if err := query.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("requestID", id.String())
		}
		return nil, pgerr.Translate(err, "request", id.String())
	}

	if err := db.Where("request_id = ?", dto.ID).Order("position").Find(&dto.Lines).Error; err != nil {
		return nil, err
	}

	return toDomain(dto)
}

// Update writes status and delivered quantities when the stored version still
// matches the loaded one.
func (r *GormRequestRepository) Update(ctx context.Context, aggregate *request.Request) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	db := r.db.WithContext(ctx)

	result := db.Model(&RequestDTO{}).
		Where("id = ? AND version = ?", dto.ID, aggregate.OriginalVersion()).
		Updates(map[string]any{
			"status":  dto.Status,
			"version": dto.Version,
		})
	if result.Error != nil {
		return pgerr.Translate(result.Error, "request", aggregate.ID().String())
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&RequestDTO{}).Where("id = ?", dto.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errs.NewObjectNotFoundError("requestID", aggregate.ID().String())
		}
		return errs.NewConflictError("request", aggregate.ID().String())
	}

	for _, line := range dto.Lines {
		if err := db.Model(&RequestLineDTO{}).
			Where("request_id = ? AND item_kind = ? AND item_id = ?", line.RequestID, line.ItemKind, line.ItemID).
			Update("quantity_delivered", line.QuantityDelivered).Error; err != nil {
			return err
		}
	}
	return nil
}
