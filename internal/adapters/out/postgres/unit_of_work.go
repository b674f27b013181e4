// Package postgres provides the GORM implementation of ports.UnitOfWork.
//
// A unit of work wraps one database transaction. Repositories handed out by
// it run inside that transaction once Begin was called, and on Commit the
// events queued on every tracked aggregate are written to outbox_messages in
// the same transaction as the change that raised them.
//
// Usage:
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	if err := uow.DeliveryRepository().Update(ctx, d); err != nil {
//	    return err
//	}
//	return uow.Commit(ctx)
//
// Each UnitOfWork instance is meant for a single goroutine and a single command.
package postgres

import (
	"context"
	"time"

	"github.com/ticinfraestructura/sigah-sub000/internal/adapters/out/postgres/deliveryrepo"
	"github.com/ticinfraestructura/sigah-sub000/internal/adapters/out/postgres/historyrepo"
	"github.com/ticinfraestructura/sigah-sub000/internal/adapters/out/postgres/outboxrepo"
	"github.com/ticinfraestructura/sigah-sub000/internal/adapters/out/postgres/pgerr"
	"github.com/ticinfraestructura/sigah-sub000/internal/adapters/out/postgres/requestrepo"
	"github.com/ticinfraestructura/sigah-sub000/internal/adapters/out/postgres/stockrepo"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/delivery"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/ports"

	"gorm.io/gorm"
)

var _ ports.UnitOfWork = &GormUnitOfWork{}

// eventSource is implemented by aggregates that queue domain events.
type eventSource interface {
	PullEvents() []delivery.Event
}

type trackedAggregate struct {
	ID        kernel.UUID
	Aggregate any
}

// GormUnitOfWorkFactory creates UnitOfWork instances sharing one connection pool.
type GormUnitOfWorkFactory struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db, now: time.Now}
}

// Create returns a fresh unit of work with no open transaction.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:                f.db,
		now:               f.now,
		trackedAggregates: make([]trackedAggregate, 0),
	}
}

// GormUnitOfWork coordinates one database transaction and the aggregates
// written during it.
type GormUnitOfWork struct {
	db                *gorm.DB
	tx                *gorm.DB
	now               func() time.Time
	trackedAggregates []trackedAggregate
}

// Begin opens the transaction. Calling it again while open is a no-op.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		err := uow.tx.Error
		uow.tx = nil
		return err
	}

	return nil
}

// Commit writes the pending events of tracked aggregates to the outbox and
// commits. Returns gorm.ErrInvalidTransaction when no transaction is open.
// A serialization failure or deadlock at commit is reported as a conflict.
func (uow *GormUnitOfWork) Commit(ctx context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	if err := uow.flushEvents(ctx); err != nil {
		_ = uow.tx.Rollback().Error
		uow.reset()
		return err
	}

	err := uow.tx.Commit().Error
	uow.reset()
	return pgerr.Translate(err, "transaction", "commit")
}

// Rollback discards the transaction. Returns gorm.ErrInvalidTransaction when
// no transaction is open, which makes a deferred Rollback after Commit harmless.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.reset()
	return err
}

func (uow *GormUnitOfWork) flushEvents(ctx context.Context) error {
	at := uow.now()

	var messages []ports.OutboxMessage
	for _, tracked := range uow.trackedAggregates {
		source, ok := tracked.Aggregate.(eventSource)
		if !ok {
			continue
		}
		for _, event := range source.PullEvents() {
			msg, err := ports.NewOutboxMessage(tracked.ID, event, at)
			if err != nil {
				return err
			}
			messages = append(messages, msg)
		}
	}

	return outboxrepo.NewGormOutboxRepository(uow.tx).Add(ctx, messages...)
}

func (uow *GormUnitOfWork) reset() {
	uow.tx = nil
	uow.trackedAggregates = uow.trackedAggregates[:0]
}

// conn returns the open transaction, or the pool when none is open.
func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

// DeliveryRepository tracks every delivery it writes so its events reach the outbox.
func (uow *GormUnitOfWork) DeliveryRepository() ports.DeliveryRepository {
	return deliveryrepo.NewGormDeliveryRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) AuditLog() ports.AuditLog {
	return historyrepo.NewGormAuditLog(uow.conn())
}

func (uow *GormUnitOfWork) RequestRepository() ports.RequestRepository {
	return requestrepo.NewGormRequestRepository(uow.conn())
}

func (uow *GormUnitOfWork) LotRepository() ports.LotRepository {
	return stockrepo.NewGormLotRepository(uow.conn())
}

func (uow *GormUnitOfWork) KitCatalog() ports.KitCatalog {
	return stockrepo.NewGormKitCatalog(uow.conn())
}

func (uow *GormUnitOfWork) OutboxRepository() ports.OutboxRepository {
	return outboxrepo.NewGormOutboxRepository(uow.conn())
}

// TrackAggregate registers an aggregate written in this unit of work.
// Repositories call it after a successful Add or Update.
func (uow *GormUnitOfWork) TrackAggregate(id kernel.UUID, aggregate any) {
	uow.trackedAggregates = append(uow.trackedAggregates, trackedAggregate{
		ID:        id,
		Aggregate: aggregate,
	})
}
