package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/delivery"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/request"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/stock"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/ports"
	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/errs"
)

type deliveryRepository struct {
	uow *UnitOfWork
}

func (r deliveryRepository) Add(_ context.Context, aggregate *delivery.Delivery) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	w, err := r.uow.state()
	if err != nil {
		return err
	}

	if _, exists := w.deliveries[aggregate.ID()]; exists {
		return errs.NewConflictError("delivery", aggregate.ID().String())
	}
	for _, s := range w.deliveries {
		if s.Code == aggregate.Code() {
			return errs.NewConflictError("delivery code", aggregate.Code())
		}
	}

	w.deliveries[aggregate.ID()] = aggregate.State()
	r.uow.track(aggregate.ID(), aggregate)
	return nil
}

func (r deliveryRepository) Update(_ context.Context, aggregate *delivery.Delivery) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	w, err := r.uow.state()
	if err != nil {
		return err
	}

	stored, ok := w.deliveries[aggregate.ID()]
	if !ok {
		return errs.NewObjectNotFoundError("deliveryID", aggregate.ID().String())
	}
	if stored.Version != aggregate.OriginalVersion() {
		return errs.NewConflictError("delivery", aggregate.ID().String())
	}

	w.deliveries[aggregate.ID()] = aggregate.State()
	r.uow.track(aggregate.ID(), aggregate)
	return nil
}

func (r deliveryRepository) Get(_ context.Context, id kernel.UUID) (*delivery.Delivery, error) {
	w, err := r.uow.state()
	if err != nil {
		return nil, err
	}
	s, ok := w.deliveries[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("deliveryID", id.String())
	}
	return delivery.RestoreDelivery(s)
}

func (r deliveryRepository) ListByRequest(_ context.Context, requestID kernel.UUID) ([]*delivery.Delivery, error) {
	w, err := r.uow.state()
	if err != nil {
		return nil, err
	}

	var states []delivery.State
	for _, s := range w.deliveries {
		if s.RequestID == requestID {
			states = append(states, s)
		}
	}
	slices.SortFunc(states, func(a, b delivery.State) int {
		if c := a.Created.At.Compare(b.Created.At); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})

	out := make([]*delivery.Delivery, 0, len(states))
	for _, s := range states {
		d, err := delivery.RestoreDelivery(s)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

type auditLog struct {
	uow *UnitOfWork
}

func (l auditLog) Append(_ context.Context, records ...delivery.HistoryRecord) error {
	w, err := l.uow.state()
	if err != nil {
		return err
	}
	w.history = append(w.history, records...)
	return nil
}

func (l auditLog) ListByDelivery(_ context.Context, deliveryID kernel.UUID) ([]delivery.HistoryRecord, error) {
	w, err := l.uow.state()
	if err != nil {
		return nil, err
	}
	var out []delivery.HistoryRecord
	for _, h := range w.history {
		if h.DeliveryID() == deliveryID {
			out = append(out, h)
		}
	}
	return out, nil
}

type requestRepository struct {
	uow *UnitOfWork
}

func (r requestRepository) Add(_ context.Context, aggregate *request.Request) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	w, err := r.uow.state()
	if err != nil {
		return err
	}
	if _, exists := w.requests[aggregate.ID()]; exists {
		return errs.NewConflictError("request", aggregate.ID().String())
	}
	w.requests[aggregate.ID()] = requestFromDomain(aggregate)
	return nil
}

func (r requestRepository) Get(_ context.Context, id kernel.UUID) (*request.Request, error) {
	w, err := r.uow.state()
	if err != nil {
		return nil, err
	}
	row, ok := w.requests[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("requestID", id.String())
	}
	return row.restore()
}

// GetForUpdate is Get: the unit of work already holds the store exclusively.
func (r requestRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*request.Request, error) {
	return r.Get(ctx, id)
}

func (r requestRepository) Update(_ context.Context, aggregate *request.Request) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	w, err := r.uow.state()
	if err != nil {
		return err
	}
	row, ok := w.requests[aggregate.ID()]
	if !ok {
		return errs.NewObjectNotFoundError("requestID", aggregate.ID().String())
	}
	if row.version != aggregate.OriginalVersion() {
		return errs.NewConflictError("request", aggregate.ID().String())
	}
	w.requests[aggregate.ID()] = requestFromDomain(aggregate)
	return nil
}

func requestFromDomain(r *request.Request) requestRow {
	return requestRow{
		id:      r.ID(),
		code:    r.Code(),
		status:  r.Status(),
		lines:   r.Lines(),
		version: r.Version(),
	}
}

type lotRepository struct {
	uow *UnitOfWork
}

func (r lotRepository) Add(_ context.Context, lots ...*stock.Lot) error {
	w, err := r.uow.state()
	if err != nil {
		return err
	}
	for _, l := range lots {
		if err = l.Validate(); err != nil {
			return err
		}
		if _, exists := w.lots[l.ID()]; exists {
			return errs.NewConflictError("lot", l.ID().String())
		}
	}
	for _, l := range lots {
		w.lots[l.ID()] = lotFromDomain(l)
	}
	return nil
}

func (r lotRepository) LockForAllocation(
	_ context.Context,
	lotIDs, productIDs []kernel.UUID,
) ([]*stock.Lot, error) {
	w, err := r.uow.state()
	if err != nil {
		return nil, err
	}

	var rows []lotRow
	for _, row := range w.lots {
		if slices.Contains(lotIDs, row.id) || slices.Contains(productIDs, row.productID) {
			rows = append(rows, row)
		}
	}
	slices.SortFunc(rows, func(a, b lotRow) int {
		return cmp.Compare(a.id.String(), b.id.String())
	})

	out := make([]*stock.Lot, 0, len(rows))
	for _, row := range rows {
		l, err := row.restore()
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func (r lotRepository) Update(_ context.Context, lots ...*stock.Lot) error {
	w, err := r.uow.state()
	if err != nil {
		return err
	}
	for _, l := range lots {
		row, ok := w.lots[l.ID()]
		if !ok {
			return errs.NewObjectNotFoundError("lotID", l.ID().String())
		}
		if row.version != l.OriginalVersion() {
			return errs.NewConflictError("lot", l.ID().String())
		}
	}
	for _, l := range lots {
		w.lots[l.ID()] = lotFromDomain(l)
	}
	return nil
}

func lotFromDomain(l *stock.Lot) lotRow {
	return lotRow{
		id:         l.ID(),
		productID:  l.ProductID(),
		quantity:   l.Quantity(),
		expiryDate: l.ExpiryDate(),
		entryDate:  l.EntryDate(),
		version:    l.Version(),
	}
}

type kitCatalog struct {
	uow *UnitOfWork
}

func (c kitCatalog) Components(_ context.Context, kitIDs []kernel.UUID) (map[kernel.UUID][]stock.KitComponent, error) {
	w, err := c.uow.state()
	if err != nil {
		return nil, err
	}
	out := make(map[kernel.UUID][]stock.KitComponent, len(kitIDs))
	for _, id := range kitIDs {
		if components, ok := w.kits[id]; ok {
			out[id] = slices.Clone(components)
		}
	}
	return out, nil
}

type outboxRepository struct {
	uow *UnitOfWork
}

func (r outboxRepository) Add(_ context.Context, messages ...ports.OutboxMessage) error {
	w, err := r.uow.state()
	if err != nil {
		return err
	}
	w.outbox = append(w.outbox, messages...)
	return nil
}

func (r outboxRepository) ListUnpublished(_ context.Context, limit, maxAttempts int) ([]ports.OutboxMessage, error) {
	w, err := r.uow.state()
	if err != nil {
		return nil, err
	}
	var out []ports.OutboxMessage
	for _, m := range w.outbox {
		if m.PublishedAt == nil && m.Attempts < maxAttempts {
			out = append(out, m)
		}
	}
	slices.SortStableFunc(out, func(a, b ports.OutboxMessage) int {
		return a.OccurredAt.Compare(b.OccurredAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r outboxRepository) MarkPublished(_ context.Context, at time.Time, ids ...kernel.UUID) error {
	w, err := r.uow.state()
	if err != nil {
		return err
	}
	for i, m := range w.outbox {
		if slices.Contains(ids, m.ID) {
			published := at
			m.PublishedAt = &published
			w.outbox[i] = m
		}
	}
	return nil
}

func (r outboxRepository) MarkFailed(_ context.Context, id kernel.UUID, cause error) error {
	w, err := r.uow.state()
	if err != nil {
		return err
	}
	for i, m := range w.outbox {
		if m.ID == id {
			m.Attempts++
			m.LastError = cause.Error()
			w.outbox[i] = m
			return nil
		}
	}
	return errs.NewObjectNotFoundError("outboxMessageID", id.String())
}
