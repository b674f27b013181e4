package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/application/usecases/commands"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/application/usecases/queries"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/actor"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/delivery"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
	"github.com/ticinfraestructura/sigah-sub000/internal/generated/servers"
)

var _ servers.ServerInterface = (*Server)(nil)

type DeliveryReader interface {
	Handle(ctx context.Context, query queries.GetDeliveryQuery) (queries.GetDeliveryQueryResponse, error)
}

type HistoryReader interface {
	Handle(ctx context.Context, query queries.GetDeliveryHistoryQuery) ([]queries.GetDeliveryHistoryQueryResponse, error)
}

type PendingWorkReader interface {
	Handle(ctx context.Context, query queries.GetPendingWorkQuery) ([]queries.GetPendingWorkQueryResponse, error)
}

// CommandHandlers are the workflow actions exposed over HTTP.
type CommandHandlers struct {
	Create           commands.CreateDeliveryCommandHandler
	Authorize        commands.AuthorizeDeliveryCommandHandler
	Receive          commands.ReceiveInWarehouseCommandHandler
	StartPreparation commands.StartPreparationCommandHandler
	MarkReady        commands.MarkReadyCommandHandler
	Confirm          commands.ConfirmDeliveryCommandHandler
	Cancel           commands.CancelDeliveryCommandHandler
}

type QueryHandlers struct {
	Delivery    DeliveryReader
	History     HistoryReader
	PendingWork PendingWorkReader
}

// Server implements servers.ServerInterface on top of the use cases.
type Server struct {
	commands CommandHandlers
	queries  QueryHandlers
	logger   *slog.Logger
}

func NewServer(cmds CommandHandlers, qs QueryHandlers, logger *slog.Logger) *Server {
	return &Server{
		commands: cmds,
		queries:  qs,
		logger:   logger.With("component", "http"),
	}
}

// CreateDelivery handles POST /api/v1/deliveries.
func (s *Server) CreateDelivery(ctx echo.Context) error {
	a, err := actorFromRequest(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}

	var body servers.NewDelivery
	if err = ctx.Bind(&body); err != nil {
		return s.fail(ctx, err)
	}

	deliveryID := kernel.NewUUID()
	if body.Id != nil {
		if deliveryID, err = toKernelUUID("id", *body.Id); err != nil {
			return s.fail(ctx, err)
		}
	}
	requestID, err := toKernelUUID("requestId", body.RequestId)
	if err != nil {
		return s.fail(ctx, err)
	}

	lines := make([]commands.DeliveryLine, 0, len(body.Details))
	for _, d := range body.Details {
		item, itemErr := toItemRef(d.ItemType, d.ItemId)
		if itemErr != nil {
			return s.fail(ctx, itemErr)
		}
		line := commands.DeliveryLine{Item: item, Quantity: d.Quantity}
		if d.LotId != nil {
			lotID, lotErr := toKernelUUID("lotId", *d.LotId)
			if lotErr != nil {
				return s.fail(ctx, lotErr)
			}
			line.LotID = &lotID
		}
		lines = append(lines, line)
	}

	cmd, err := commands.NewCreateDeliveryCommand(deliveryID, requestID, a, lines, deref(body.Notes))
	if err != nil {
		return s.fail(ctx, err)
	}
	d, err := s.commands.Create.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	ctx.Response().Header().Set(echo.HeaderLocation, "/api/v1/deliveries/"+d.ID().String())
	return ctx.JSON(http.StatusCreated, toState(d))
}

// AuthorizeDelivery handles POST /api/v1/deliveries/{id}/authorize.
func (s *Server) AuthorizeDelivery(ctx echo.Context, id openapi_types.UUID) error {
	a, deliveryID, err := s.transitionParams(ctx, id)
	if err != nil {
		return s.fail(ctx, err)
	}

	var body servers.AuthorizeDelivery
	if err = ctx.Bind(&body); err != nil {
		return s.fail(ctx, err)
	}

	var quantities map[kernel.ItemRef]int
	if body.Quantities != nil {
		quantities = make(map[kernel.ItemRef]int, len(*body.Quantities))
		for _, q := range *body.Quantities {
			item, itemErr := toItemRef(q.ItemType, q.ItemId)
			if itemErr != nil {
				return s.fail(ctx, itemErr)
			}
			quantities[item] = q.Quantity
		}
	}

	cmd, err := commands.NewAuthorizeDeliveryCommand(deliveryID, a, quantities, deref(body.Notes))
	if err != nil {
		return s.fail(ctx, err)
	}
	return s.respond(ctx, func(c context.Context) (*delivery.Delivery, error) {
		return s.commands.Authorize.Handle(c, cmd)
	})
}

// ReceiveInWarehouse handles POST /api/v1/deliveries/{id}/receive.
func (s *Server) ReceiveInWarehouse(ctx echo.Context, id openapi_types.UUID) error {
	a, deliveryID, notes, err := s.notesParams(ctx, id)
	if err != nil {
		return s.fail(ctx, err)
	}
	cmd, err := commands.NewReceiveInWarehouseCommand(deliveryID, a, notes)
	if err != nil {
		return s.fail(ctx, err)
	}
	return s.respond(ctx, func(c context.Context) (*delivery.Delivery, error) {
		return s.commands.Receive.Handle(c, cmd)
	})
}

// StartPreparation handles POST /api/v1/deliveries/{id}/start-preparation.
func (s *Server) StartPreparation(ctx echo.Context, id openapi_types.UUID) error {
	a, deliveryID, notes, err := s.notesParams(ctx, id)
	if err != nil {
		return s.fail(ctx, err)
	}
	cmd, err := commands.NewStartPreparationCommand(deliveryID, a, notes)
	if err != nil {
		return s.fail(ctx, err)
	}
	return s.respond(ctx, func(c context.Context) (*delivery.Delivery, error) {
		return s.commands.StartPreparation.Handle(c, cmd)
	})
}

// MarkReady handles POST /api/v1/deliveries/{id}/mark-ready.
func (s *Server) MarkReady(ctx echo.Context, id openapi_types.UUID) error {
	a, deliveryID, notes, err := s.notesParams(ctx, id)
	if err != nil {
		return s.fail(ctx, err)
	}
	cmd, err := commands.NewMarkReadyCommand(deliveryID, a, notes)
	if err != nil {
		return s.fail(ctx, err)
	}
	return s.respond(ctx, func(c context.Context) (*delivery.Delivery, error) {
		return s.commands.MarkReady.Handle(c, cmd)
	})
}

// ConfirmDelivery handles POST /api/v1/deliveries/{id}/confirm.
func (s *Server) ConfirmDelivery(ctx echo.Context, id openapi_types.UUID) error {
	a, deliveryID, err := s.transitionParams(ctx, id)
	if err != nil {
		return s.fail(ctx, err)
	}

	var body servers.ConfirmDelivery
	if err = ctx.Bind(&body); err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewConfirmDeliveryCommand(
		deliveryID, a,
		body.ReceivedBy, body.ReceiverDocument, deref(body.ReceiverSignature), deref(body.ReceptionNotes),
		deref(body.Notes),
	)
	if err != nil {
		return s.fail(ctx, err)
	}
	return s.respond(ctx, func(c context.Context) (*delivery.Delivery, error) {
		return s.commands.Confirm.Handle(c, cmd)
	})
}

// CancelDelivery handles POST /api/v1/deliveries/{id}/cancel.
func (s *Server) CancelDelivery(ctx echo.Context, id openapi_types.UUID) error {
	a, deliveryID, err := s.transitionParams(ctx, id)
	if err != nil {
		return s.fail(ctx, err)
	}

	var body servers.CancelDelivery
	if err = ctx.Bind(&body); err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewCancelDeliveryCommand(deliveryID, a, body.Reason)
	if err != nil {
		return s.fail(ctx, err)
	}
	return s.respond(ctx, func(c context.Context) (*delivery.Delivery, error) {
		return s.commands.Cancel.Handle(c, cmd)
	})
}

// GetDelivery handles GET /api/v1/deliveries/{id}.
func (s *Server) GetDelivery(ctx echo.Context, id openapi_types.UUID) error {
	deliveryID, err := toKernelUUID("id", id)
	if err != nil {
		return s.fail(ctx, err)
	}
	query, err := queries.NewGetDeliveryQuery(deliveryID)
	if err != nil {
		return s.fail(ctx, err)
	}

	view, err := s.queries.Delivery.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toDelivery(view))
}

// GetDeliveryHistory handles GET /api/v1/deliveries/{id}/history.
func (s *Server) GetDeliveryHistory(ctx echo.Context, id openapi_types.UUID) error {
	deliveryID, err := toKernelUUID("id", id)
	if err != nil {
		return s.fail(ctx, err)
	}
	query, err := queries.NewGetDeliveryHistoryQuery(deliveryID)
	if err != nil {
		return s.fail(ctx, err)
	}

	records, err := s.queries.History.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	response := make([]servers.HistoryEntry, len(records))
	for i, r := range records {
		response[i] = toHistoryEntry(r)
	}
	return ctx.JSON(http.StatusOK, response)
}

// GetWorkItems handles GET /api/v1/work-items.
func (s *Server) GetWorkItems(ctx echo.Context, params servers.GetWorkItemsParams) error {
	var role *actor.Capability
	if params.Role != nil && *params.Role != "" {
		c, err := actor.ParseRole(*params.Role)
		if err != nil {
			return s.fail(ctx, err)
		}
		role = &c
	}

	query, err := queries.NewGetPendingWorkQuery(role)
	if err != nil {
		return s.fail(ctx, err)
	}
	queues, err := s.queries.PendingWork.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	response := make([]servers.WorkQueue, len(queues))
	for i, q := range queues {
		response[i] = toWorkQueue(q)
	}
	return ctx.JSON(http.StatusOK, response)
}

func (s *Server) transitionParams(ctx echo.Context, id openapi_types.UUID) (actor.Actor, kernel.UUID, error) {
	a, err := actorFromRequest(ctx)
	if err != nil {
		return actor.Actor{}, kernel.UUID{}, err
	}
	deliveryID, err := toKernelUUID("id", id)
	if err != nil {
		return actor.Actor{}, kernel.UUID{}, err
	}
	return a, deliveryID, nil
}

func (s *Server) notesParams(ctx echo.Context, id openapi_types.UUID) (actor.Actor, kernel.UUID, string, error) {
	a, deliveryID, err := s.transitionParams(ctx, id)
	if err != nil {
		return a, deliveryID, "", err
	}

	var body servers.TransitionNotes
	if err = ctx.Bind(&body); err != nil {
		return a, deliveryID, "", err
	}
	return a, deliveryID, deref(body.Notes), nil
}

func (s *Server) respond(ctx echo.Context, run func(context.Context) (*delivery.Delivery, error)) error {
	d, err := run(ctx.Request().Context())
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toState(d))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
