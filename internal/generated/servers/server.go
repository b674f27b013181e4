package servers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ServerInterface is implemented by the HTTP adapter.
type ServerInterface interface {
	// (POST /api/v1/deliveries)
	CreateDelivery(ctx echo.Context) error
	// (GET /api/v1/deliveries/{id})
	GetDelivery(ctx echo.Context, id openapi_types.UUID) error
	// (GET /api/v1/deliveries/{id}/history)
	GetDeliveryHistory(ctx echo.Context, id openapi_types.UUID) error
	// (POST /api/v1/deliveries/{id}/authorize)
	AuthorizeDelivery(ctx echo.Context, id openapi_types.UUID) error
	// (POST /api/v1/deliveries/{id}/receive)
	ReceiveInWarehouse(ctx echo.Context, id openapi_types.UUID) error
	// (POST /api/v1/deliveries/{id}/start-preparation)
	StartPreparation(ctx echo.Context, id openapi_types.UUID) error
	// (POST /api/v1/deliveries/{id}/mark-ready)
	MarkReady(ctx echo.Context, id openapi_types.UUID) error
	// (POST /api/v1/deliveries/{id}/confirm)
	ConfirmDelivery(ctx echo.Context, id openapi_types.UUID) error
	// (POST /api/v1/deliveries/{id}/cancel)
	CancelDelivery(ctx echo.Context, id openapi_types.UUID) error
	// (GET /api/v1/work-items)
	GetWorkItems(ctx echo.Context, params GetWorkItemsParams) error
}

// ServerInterfaceWrapper binds path and query parameters before calling the handler.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func bindDeliveryID(ctx echo.Context) (openapi_types.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", ctx.Param("id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return id, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter id: %s", err))
	}
	return id, nil
}

func (w *ServerInterfaceWrapper) CreateDelivery(ctx echo.Context) error {
	return w.Handler.CreateDelivery(ctx)
}

func (w *ServerInterfaceWrapper) GetDelivery(ctx echo.Context) error {
	id, err := bindDeliveryID(ctx)
	if err != nil {
		return err
	}
	return w.Handler.GetDelivery(ctx, id)
}

func (w *ServerInterfaceWrapper) GetDeliveryHistory(ctx echo.Context) error {
	id, err := bindDeliveryID(ctx)
	if err != nil {
		return err
	}
	return w.Handler.GetDeliveryHistory(ctx, id)
}

func (w *ServerInterfaceWrapper) AuthorizeDelivery(ctx echo.Context) error {
	id, err := bindDeliveryID(ctx)
	if err != nil {
		return err
	}
	return w.Handler.AuthorizeDelivery(ctx, id)
}

func (w *ServerInterfaceWrapper) ReceiveInWarehouse(ctx echo.Context) error {
	id, err := bindDeliveryID(ctx)
	if err != nil {
		return err
	}
	return w.Handler.ReceiveInWarehouse(ctx, id)
}

func (w *ServerInterfaceWrapper) StartPreparation(ctx echo.Context) error {
	id, err := bindDeliveryID(ctx)
	if err != nil {
		return err
	}
	return w.Handler.StartPreparation(ctx, id)
}

func (w *ServerInterfaceWrapper) MarkReady(ctx echo.Context) error {
	id, err := bindDeliveryID(ctx)
	if err != nil {
		return err
	}
	return w.Handler.MarkReady(ctx, id)
}

func (w *ServerInterfaceWrapper) ConfirmDelivery(ctx echo.Context) error {
	id, err := bindDeliveryID(ctx)
	if err != nil {
		return err
	}
	return w.Handler.ConfirmDelivery(ctx, id)
}

func (w *ServerInterfaceWrapper) CancelDelivery(ctx echo.Context) error {
	id, err := bindDeliveryID(ctx)
	if err != nil {
		return err
	}
	return w.Handler.CancelDelivery(ctx, id)
}

func (w *ServerInterfaceWrapper) GetWorkItems(ctx echo.Context) error {
	var params GetWorkItemsParams
	if err := runtime.BindQueryParameter("form", true, false, "role", ctx.QueryParams(), &params.Role); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter role: %s", err))
	}
	return w.Handler.GetWorkItems(ctx, params)
}

// EchoRouter is satisfied by *echo.Echo and *echo.Group.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers adds every API route to router.
func RegisterHandlers(router EchoRouter, si ServerInterface) {
	RegisterHandlersWithBaseURL(router, si, "")
}

func RegisterHandlersWithBaseURL(router EchoRouter, si ServerInterface, baseURL string) {
	w := ServerInterfaceWrapper{Handler: si}

	router.POST(baseURL+"/api/v1/deliveries", w.CreateDelivery)
	router.GET(baseURL+"/api/v1/deliveries/:id", w.GetDelivery)
	router.GET(baseURL+"/api/v1/deliveries/:id/history", w.GetDeliveryHistory)
	router.POST(baseURL+"/api/v1/deliveries/:id/authorize", w.AuthorizeDelivery)
	router.POST(baseURL+"/api/v1/deliveries/:id/receive", w.ReceiveInWarehouse)
	router.POST(baseURL+"/api/v1/deliveries/:id/start-preparation", w.StartPreparation)
	router.POST(baseURL+"/api/v1/deliveries/:id/mark-ready", w.MarkReady)
	router.POST(baseURL+"/api/v1/deliveries/:id/confirm", w.ConfirmDelivery)
	router.POST(baseURL+"/api/v1/deliveries/:id/cancel", w.CancelDelivery)
	router.GET(baseURL+"/api/v1/work-items", w.GetWorkItems)
}
