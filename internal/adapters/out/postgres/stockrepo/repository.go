package stockrepo

import (
	"context"

	"github.com/ticinfraestructura/sigah-sub000/internal/adapters/out/postgres/pgerr"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/stock"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/ports"
	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	_ ports.LotRepository = &GormLotRepository{}
	_ ports.KitCatalog    = &GormKitCatalog{}
)

// GormLotRepository implements ports.LotRepository using GORM.
type GormLotRepository struct {
	db *gorm.DB
}

func NewGormLotRepository(db *gorm.DB) *GormLotRepository {
	return &GormLotRepository{db: db}
}

func (r *GormLotRepository) Add(ctx context.Context, lots ...*stock.Lot) error {
	if len(lots) == 0 {
		return nil
	}

	dtos := make([]LotDTO, 0, len(lots))
	for _, lot := range lots {
		if err := lot.Validate(); err != nil {
			return err
		}
		dtos = append(dtos, lotFromDomain(lot))
	}

	if err := r.db.WithContext(ctx).Create(&dtos).Error; err != nil {
		return pgerr.Translate(err, "lot", lots[0].ID().String())
	}
	return nil
}

// LockForAllocation selects FOR UPDATE ordered by id, so two transactions
// allocating overlapping lots acquire the locks in the same order.
func (r *GormLotRepository) LockForAllocation(
	ctx context.Context,
	lotIDs, productIDs []kernel.UUID,
) ([]*stock.Lot, error) {
	if len(lotIDs) == 0 && len(productIDs) == 0 {
		return nil, nil
	}

	query := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
	switch {
	case len(lotIDs) > 0 && len(productIDs) > 0:
		query = query.Where("id IN ? OR product_id IN ?", rawIDs(lotIDs), rawIDs(productIDs))
	case len(lotIDs) > 0:
		query = query.Where("id IN ?", rawIDs(lotIDs))
	default:
		query = query.Where("product_id IN ?", rawIDs(productIDs))
	}

	var dtos []LotDTO
	if err := query.Order("id").Find(&dtos).Error; err != nil {
		return nil, pgerr.Translate(err, "lot", "allocation")
	}

	lots := make([]*stock.Lot, 0, len(dtos))
	for _, dto := range dtos {
		lot, err := lotToDomain(dto)
		if err != nil {
			return nil, err
		}
		lots = append(lots, lot)
	}
	return lots, nil
}

// Update writes quantities with a version check per lot.
func (r *GormLotRepository) Update(ctx context.Context, lots ...*stock.Lot) error {
	db := r.db.WithContext(ctx)
	for _, lot := range lots {
		if err := lot.Validate(); err != nil {
			return err
		}

		result := db.Model(&LotDTO{}).
			Where("id = ? AND version = ?", lot.ID().Bytes(), lot.OriginalVersion()).
			Updates(map[string]any{
				"quantity": lot.Quantity(),
				"version":  lot.Version(),
			})
		if result.Error != nil {
			return pgerr.Translate(result.Error, "lot", lot.ID().String())
		}
		if result.RowsAffected == 0 {
			return errs.NewConflictError("lot", lot.ID().String())
		}
	}
	return nil
}

// GormKitCatalog implements ports.KitCatalog using GORM.
type GormKitCatalog struct {
	db *gorm.DB
}

func NewGormKitCatalog(db *gorm.DB) *GormKitCatalog {
	return &GormKitCatalog{db: db}
}

// Put replaces the composition of a kit. Kits are maintained by the stock
// ledger; Put seeds the table for tests and local setups.
func (c *GormKitCatalog) Put(ctx context.Context, kitID kernel.UUID, components ...stock.KitComponent) error {
	if err := kitID.Validate(); err != nil {
		return err
	}

	dtos := make([]KitComponentDTO, 0, len(components))
	for _, comp := range components {
		if err := comp.Validate(); err != nil {
			return err
		}
		dtos = append(dtos, KitComponentDTO{
			KitID:     kitID.Bytes(),
			ProductID: comp.ProductID.Bytes(),
			Quantity:  comp.Quantity,
		})
	}

	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("kit_id = ?", kitID.Bytes()).Delete(&KitComponentDTO{}).Error; err != nil {
			return err
		}
		if len(dtos) == 0 {
			return nil
		}
		return tx.Create(&dtos).Error
	})
}

func (c *GormKitCatalog) Components(
	ctx context.Context,
	kitIDs []kernel.UUID,
) (map[kernel.UUID][]stock.KitComponent, error) {
	out := make(map[kernel.UUID][]stock.KitComponent, len(kitIDs))
	if len(kitIDs) == 0 {
		return out, nil
	}

	var dtos []KitComponentDTO
	if err := c.db.WithContext(ctx).
		Where("kit_id IN ?", rawIDs(kitIDs)).
		Order("kit_id, product_id").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	for _, dto := range dtos {
		kitID, comp, err := componentToDomain(dto)
		if err != nil {
			return nil, err
		}
		out[kitID] = append(out[kitID], comp)
	}
	return out, nil
}

func rawIDs(ids []kernel.UUID) []any {
	out := make([]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Bytes())
	}
	return out
}
