package postgres_test

import (
	"context"
	"errors"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/application/usecases/commands"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/actor"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/delivery"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/request"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/stock"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/ports"
	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/errs"
)

type workflowFactory struct {
	factory ports.UnitOfWorkFactory
}

func (f workflowFactory) Create() commands.WorkflowUoW {
	return f.factory.Create()
}

func (s *UnitOfWorkIntegrationTestSuite) newActor(caps ...actor.Capability) actor.Actor {
	a, err := actor.NewActor(kernel.NewUUID(), actor.NewCapabilities(caps...))
	s.Require().NoError(err)
	return a
}

func (s *UnitOfWorkIntegrationTestSuite) seedRequest(productID kernel.UUID, requested int) kernel.UUID {
	line, err := request.NewLine(kernel.ProductRef(productID), requested, 0)
	s.Require().NoError(err)
	req, err := request.NewRequest(kernel.NewUUID(), "SOL-2026-0007", request.Approved, []request.Line{line})
	s.Require().NoError(err)
	s.tx(func(ctx context.Context, uow ports.UnitOfWork) {
		s.Require().NoError(uow.RequestRepository().Add(ctx, req))
	})
	return req.ID()
}

func (s *UnitOfWorkIntegrationTestSuite) seedLot(productID kernel.UUID, qty int) kernel.UUID {
	lot, err := stock.NewLot(kernel.NewUUID(), productID, qty, nil, now())
	s.Require().NoError(err)
	s.tx(func(ctx context.Context, uow ports.UnitOfWork) {
		s.Require().NoError(uow.LotRepository().Add(ctx, lot))
	})
	return lot.ID()
}

func (s *UnitOfWorkIntegrationTestSuite) lotQuantity(lotID kernel.UUID) int {
	var qty int
	s.Require().NoError(s.db.Table("stock_lots").Select("quantity").Where("id = ?", lotID.Bytes()).Scan(&qty).Error)
	return qty
}

// walkToPreparation creates a delivery of qty units pinned to lotID and moves
// it to IN_PREPARATION with separate actors.
func (s *UnitOfWorkIntegrationTestSuite) walkToPreparation(
	f workflowFactory,
	requestID, productID, lotID kernel.UUID,
	qty int,
) kernel.UUID {
	ctx := context.Background()

	create, err := commands.NewCreateDeliveryCommand(kernel.NewUUID(), requestID, s.newActor(actor.Warehouse),
		[]commands.DeliveryLine{{Item: kernel.ProductRef(productID), LotID: &lotID, Quantity: qty}}, "")
	s.Require().NoError(err)
	d, err := commands.NewCreateDeliveryCommandHandler(f).Handle(ctx, create)
	s.Require().NoError(err)

	authorize, err := commands.NewAuthorizeDeliveryCommand(d.ID(), s.newActor(actor.Authorizer), nil, "")
	s.Require().NoError(err)
	_, err = commands.NewAuthorizeDeliveryCommandHandler(f).Handle(ctx, authorize)
	s.Require().NoError(err)

	receive, err := commands.NewReceiveInWarehouseCommand(d.ID(), s.newActor(actor.Warehouse), "")
	s.Require().NoError(err)
	_, err = commands.NewReceiveInWarehouseCommandHandler(f).Handle(ctx, receive)
	s.Require().NoError(err)

	prepare, err := commands.NewStartPreparationCommand(d.ID(), s.newActor(actor.Warehouse), "")
	s.Require().NoError(err)
	_, err = commands.NewStartPreparationCommandHandler(f).Handle(ctx, prepare)
	s.Require().NoError(err)

	return d.ID()
}

func (s *UnitOfWorkIntegrationTestSuite) TestWorkflow_DeliverAndCancelOnPostgres() {
	ctx := context.Background()
	f := workflowFactory{factory: s.factory}
	productID := kernel.NewUUID()
	requestID := s.seedRequest(productID, 10)
	lotID := s.seedLot(productID, 20)

	delivered := s.walkToPreparation(f, requestID, productID, lotID, 6)
	cancelled := s.walkToPreparation(f, requestID, productID, lotID, 4)
	preparer := s.newActor(actor.Warehouse)

	for _, id := range []kernel.UUID{delivered, cancelled} {
		cmd, err := commands.NewMarkReadyCommand(id, preparer, "")
		s.Require().NoError(err)
		_, err = commands.NewMarkReadyCommandHandler(f).Handle(ctx, cmd)
		s.Require().NoError(err)
	}
	s.Equal(10, s.lotQuantity(lotID))

	confirm, err := commands.NewConfirmDeliveryCommand(delivered, s.newActor(actor.Dispatcher), "Ana Pérez", "CC 1020", "", "", "")
	s.Require().NoError(err)
	_, err = commands.NewConfirmDeliveryCommandHandler(f).Handle(ctx, confirm)
	s.Require().NoError(err)

	cancel, err := commands.NewCancelDeliveryCommand(cancelled, s.newActor(actor.Admin), "beneficiary relocated")
	s.Require().NoError(err)
	_, err = commands.NewCancelDeliveryCommandHandler(f).Handle(ctx, cancel)
	s.Require().NoError(err)

	s.Equal(14, s.lotQuantity(lotID))

	s.tx(func(ctx context.Context, uow ports.UnitOfWork) {
		req, getErr := uow.RequestRepository().Get(ctx, requestID)
		s.Require().NoError(getErr)
		s.Equal(request.PartiallyDelivered, req.Status())
		line, _ := req.Line(kernel.ProductRef(productID))
		s.Equal(6, line.Delivered())

		history, listErr := uow.AuditLog().ListByDelivery(ctx, cancelled)
		s.Require().NoError(listErr)
		s.True(delivery.IsValidWalk(history))
		s.Equal(delivery.Cancelled, history[len(history)-1].To())
	})

	var transitions int64
	s.Require().NoError(s.db.Table("outbox_messages").
		Where("name = ?", delivery.TransitionRecordedEvent).
		Count(&transitions).Error)
	// 6 for the delivered walk, 6 for the cancelled one
	s.Equal(int64(12), transitions)
}

func (s *UnitOfWorkIntegrationTestSuite) TestWorkflow_ConcurrentMarkReadyOnOneLot() {
	f := workflowFactory{factory: s.factory}
	productID := kernel.NewUUID()
	requestID := s.seedRequest(productID, 10)
	lotID := s.seedLot(productID, 6)

	a := s.walkToPreparation(f, requestID, productID, lotID, 5)
	b := s.walkToPreparation(f, requestID, productID, lotID, 5)
	preparer := s.newActor(actor.Warehouse)

	results := make(chan error, 2)
	for _, id := range []kernel.UUID{a, b} {
		go func() {
			cmd, err := commands.NewMarkReadyCommand(id, preparer, "")
			if err != nil {
				results <- err
				return
			}
			_, err = commands.NewMarkReadyCommandHandler(f).Handle(context.Background(), cmd)
			results <- err
		}()
	}

	var failures []error
	for range 2 {
		if err := <-results; err != nil {
			failures = append(failures, err)
		}
	}
	s.Require().Len(failures, 1)
	s.True(errors.Is(failures[0], errs.ErrInsufficientStock) || errors.Is(failures[0], errs.ErrConflict),
		"unexpected error: %v", failures[0])
	s.Equal(1, s.lotQuantity(lotID))
}
