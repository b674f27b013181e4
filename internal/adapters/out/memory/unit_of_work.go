package memory

import (
	"context"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/delivery"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/ports"
)

var _ ports.UnitOfWork = &UnitOfWork{}

type eventSource interface {
	PullEvents() []delivery.Event
}

// UnitOfWork is a single transaction on a Store. It is not safe for
// concurrent use; create one per command.
type UnitOfWork struct {
	store   *Store
	working *data
	tracked []trackedAggregate
}

type trackedAggregate struct {
	id        kernel.UUID
	aggregate eventSource
}

func (u *UnitOfWork) Begin(_ context.Context) error {
	if u.working != nil {
		return nil
	}
	w := u.store.begin()
	u.working = &w
	return nil
}

// Commit moves the events of tracked aggregates to the outbox and publishes
// the working copy.
func (u *UnitOfWork) Commit(_ context.Context) error {
	if u.working == nil {
		return ErrNoTransaction
	}

	at := u.store.now()
	for _, t := range u.tracked {
		for _, e := range t.aggregate.PullEvents() {
			msg, err := ports.NewOutboxMessage(t.id, e, at)
			if err != nil {
				u.discard()
				return err
			}
			u.working.outbox = append(u.working.outbox, msg)
		}
	}

	u.store.commit(*u.working)
	u.working = nil
	u.tracked = nil
	return nil
}

func (u *UnitOfWork) Rollback(_ context.Context) error {
	if u.working == nil {
		return ErrNoTransaction
	}
	u.discard()
	return nil
}

func (u *UnitOfWork) discard() {
	u.working = nil
	u.tracked = nil
	u.store.release()
}

func (u *UnitOfWork) track(id kernel.UUID, aggregate eventSource) {
	u.tracked = append(u.tracked, trackedAggregate{id: id, aggregate: aggregate})
}

func (u *UnitOfWork) state() (*data, error) {
	if u.working == nil {
		return nil, ErrNoTransaction
	}
	return u.working, nil
}

func (u *UnitOfWork) DeliveryRepository() ports.DeliveryRepository {
	return deliveryRepository{uow: u}
}

func (u *UnitOfWork) AuditLog() ports.AuditLog {
	return auditLog{uow: u}
}

func (u *UnitOfWork) RequestRepository() ports.RequestRepository {
	return requestRepository{uow: u}
}

func (u *UnitOfWork) LotRepository() ports.LotRepository {
	return lotRepository{uow: u}
}

func (u *UnitOfWork) KitCatalog() ports.KitCatalog {
	return kitCatalog{uow: u}
}

func (u *UnitOfWork) OutboxRepository() ports.OutboxRepository {
	return outboxRepository{uow: u}
}
