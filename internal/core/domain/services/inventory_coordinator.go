package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/delivery"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/stock"
	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/errs"
)

// Requirement is the stock a delivery needs from one product, optionally
// pinned to a lot.
type Requirement struct {
	ProductID kernel.UUID
	LotID     *kernel.UUID
	Quantity  int
}

// InventoryCoordinator plans and applies the stock movements of the workflow.
// Stock is only touched at two points: Deduct when a delivery becomes READY
// and Reverse when a READY delivery is cancelled. There is no reservation
// before READY.
type InventoryCoordinator struct{}

func NewInventoryCoordinator() InventoryCoordinator {
	return InventoryCoordinator{}
}

// Requirements expands line items into per-product requirements. KIT lines
// consume quantity × component quantity of every component product; kits maps
// a kit id to its components.
func (c InventoryCoordinator) Requirements(
	details []delivery.Detail,
	kits map[kernel.UUID][]stock.KitComponent,
) ([]Requirement, error) {
	pinned := make([]Requirement, 0, len(details))
	free := make(map[kernel.UUID]int)
	var freeOrder []kernel.UUID

	addFree := func(productID kernel.UUID, qty int) {
		if _, ok := free[productID]; !ok {
			freeOrder = append(freeOrder, productID)
		}
		free[productID] += qty
	}

	for _, d := range details {
		item := d.Item()
		if item.IsProduct() {
			if lot := d.LotID(); lot != nil {
				pinned = append(pinned, Requirement{ProductID: item.ID(), LotID: lot, Quantity: d.Quantity()})
				continue
			}
			addFree(item.ID(), d.Quantity())
			continue
		}

		components, ok := kits[item.ID()]
		if !ok {
			return nil, errs.NewObjectNotFoundError("kit", item.ID().String())
		}
		if len(components) == 0 {
			return nil, errs.NewValueIsInvalidErrorWithCause("kit", fmt.Errorf("kit %s has no components", item.ID()))
		}
		for _, comp := range components {
			if err := comp.Validate(); err != nil {
				return nil, err
			}
			addFree(comp.ProductID, comp.Quantity*d.Quantity())
		}
	}

	reqs := pinned
	for _, productID := range freeOrder {
		reqs = append(reqs, Requirement{ProductID: productID, Quantity: free[productID]})
	}
	return reqs, nil
}

// LotIDs returns the lots pinned by reqs and the products that need a first
// expiry first allocation, so the caller can load and lock exactly those.
func (c InventoryCoordinator) LotIDs(reqs []Requirement) (lotIDs, productIDs []kernel.UUID) {
	for _, r := range reqs {
		if r.LotID != nil {
			lotIDs = append(lotIDs, *r.LotID)
		} else {
			productIDs = append(productIDs, r.ProductID)
		}
	}
	return lotIDs, productIDs
}

type allocation struct {
	lot *stock.Lot
	qty int
}

// Deduct allocates reqs from lots and decrements them. Pinned requirements take
// their own lot; the rest are served first expiry first, skipping lots already
// expired at at. Either every requirement is covered and every lot is
// decremented, or no lot changes and the error lists each shortage.
func (c InventoryCoordinator) Deduct(reqs []Requirement, lots []*stock.Lot, at time.Time) ([]delivery.Deduction, error) {
	if len(reqs) == 0 {
		return nil, errs.NewValueIsRequiredError("stock requirements")
	}

	byID := make(map[kernel.UUID]*stock.Lot, len(lots))
	byProduct := make(map[kernel.UUID][]*stock.Lot)
	for _, l := range lots {
		if err := l.Validate(); err != nil {
			return nil, err
		}
		byID[l.ID()] = l
		byProduct[l.ProductID()] = append(byProduct[l.ProductID()], l)
	}
	for _, ls := range byProduct {
		sort.Slice(ls, func(i, j int) bool { return ls[i].ExpiresBefore(ls[j]) })
	}

	available := make(map[kernel.UUID]int, len(lots))
	for _, l := range lots {
		available[l.ID()] = l.Quantity()
	}

	var (
		plan     []allocation
		problems []error
	)
	for _, r := range reqs {
		if r.LotID != nil {
			lot, ok := byID[*r.LotID]
			switch {
			case !ok:
				problems = append(problems, errs.NewObjectNotFoundError("lot", r.LotID.String()))
			case !lot.ProductID().IsEqual(r.ProductID):
				problems = append(problems, errs.NewValueIsInvalidErrorWithCause("lotId",
					fmt.Errorf("lot %s does not hold product %s", lot.ID(), r.ProductID)))
			case available[lot.ID()] < r.Quantity:
				problems = append(problems, errs.NewInsufficientStockError(
					r.ProductID.String(), lot.ID().String(), r.Quantity, available[lot.ID()]))
			default:
				available[lot.ID()] -= r.Quantity
				plan = append(plan, allocation{lot: lot, qty: r.Quantity})
			}
			continue
		}

		missing := r.Quantity
		var taken []allocation
		for _, lot := range byProduct[r.ProductID] {
			if missing == 0 {
				break
			}
			if exp := lot.ExpiryDate(); exp != nil && exp.Before(at) {
				continue
			}
			qty := min(available[lot.ID()], missing)
			if qty == 0 {
				continue
			}
			taken = append(taken, allocation{lot: lot, qty: qty})
			missing -= qty
		}
		if missing > 0 {
			problems = append(problems, errs.NewInsufficientStockError(
				r.ProductID.String(), "", r.Quantity, r.Quantity-missing))
			continue
		}
		for _, a := range taken {
			available[a.lot.ID()] -= a.qty
		}
		plan = append(plan, taken...)
	}
	if err := errors.Join(problems...); err != nil {
		return nil, err
	}

	return c.apply(plan)
}

func (c InventoryCoordinator) apply(plan []allocation) ([]delivery.Deduction, error) {
	merged := make(map[kernel.UUID]int, len(plan))
	var order []*stock.Lot
	for _, a := range plan {
		if _, ok := merged[a.lot.ID()]; !ok {
			order = append(order, a.lot)
		}
		merged[a.lot.ID()] += a.qty
	}

	deductions := make([]delivery.Deduction, 0, len(order))
	for _, lot := range order {
		qty := merged[lot.ID()]
		if err := lot.Deduct(qty); err != nil {
			return nil, err
		}
		ded, err := delivery.NewDeduction(lot.ID(), lot.ProductID(), qty)
		if err != nil {
			return nil, err
		}
		deductions = append(deductions, ded)
	}
	return deductions, nil
}

// Reverse restores exactly the quantities recorded in deductions. Every lot
// must be present in lots; otherwise nothing is restored.
func (c InventoryCoordinator) Reverse(deductions []delivery.Deduction, lots []*stock.Lot) error {
	byID := make(map[kernel.UUID]*stock.Lot, len(lots))
	for _, l := range lots {
		if err := l.Validate(); err != nil {
			return err
		}
		byID[l.ID()] = l
	}

	for _, d := range deductions {
		if _, ok := byID[d.LotID()]; !ok {
			return errs.NewObjectNotFoundError("lot", d.LotID().String())
		}
	}
	for _, d := range deductions {
		if err := byID[d.LotID()].Restore(d.Quantity()); err != nil {
			return err
		}
	}
	return nil
}

// DeductedLotIDs lists the lots touched by deductions.
func DeductedLotIDs(deductions []delivery.Deduction) []kernel.UUID {
	ids := make([]kernel.UUID, 0, len(deductions))
	seen := make(map[kernel.UUID]struct{}, len(deductions))
	for _, d := range deductions {
		if _, ok := seen[d.LotID()]; ok {
			continue
		}
		seen[d.LotID()] = struct{}{}
		ids = append(ids, d.LotID())
	}
	return ids
}
