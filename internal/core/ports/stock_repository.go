package ports

import (
	"context"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/stock"
)

// LotRepository is the stock ledger seen by the inventory coordinator.
type LotRepository interface {
	// Add seeds lots. The stock ledger owns lot creation; the workflow only
	// moves quantities on existing rows.
	Add(ctx context.Context, lots ...*stock.Lot) error

	// LockForAllocation loads the lots in lotIDs plus every lot of productIDs,
	// locking them in id order until the transaction ends. Concurrent
	// allocations touching the same lot are serialized.
	LockForAllocation(ctx context.Context, lotIDs, productIDs []kernel.UUID) ([]*stock.Lot, error)

	// Update writes lot quantities with an optimistic version check.
	Update(ctx context.Context, lots ...*stock.Lot) error
}

// KitCatalog resolves kits to their component products.
type KitCatalog interface {
	// Components returns the composition of each kit found. Unknown kits are
	// absent from the map.
	Components(ctx context.Context, kitIDs []kernel.UUID) (map[kernel.UUID][]stock.KitComponent, error)
}
