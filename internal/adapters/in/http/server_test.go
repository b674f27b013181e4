package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ticinfraestructura/sigah-sub000/internal/adapters/out/memory"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/application/usecases/commands"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/application/usecases/queries"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/actor"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/delivery"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/request"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/stock"
	"github.com/ticinfraestructura/sigah-sub000/internal/generated/servers"
	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryFactory struct {
	store *memory.Store
}

func (f memoryFactory) Create() commands.WorkflowUoW {
	return f.store.Create()
}

type stubDeliveryReader struct {
	view queries.GetDeliveryQueryResponse
	err  error
}

func (s stubDeliveryReader) Handle(context.Context, queries.GetDeliveryQuery) (queries.GetDeliveryQueryResponse, error) {
	return s.view, s.err
}

type stubHistoryReader struct {
	records []queries.GetDeliveryHistoryQueryResponse
	err     error
}

func (s stubHistoryReader) Handle(context.Context, queries.GetDeliveryHistoryQuery) ([]queries.GetDeliveryHistoryQueryResponse, error) {
	return s.records, s.err
}

type stubPendingWorkReader struct {
	asked [][]actor.Capability
	out   []queries.GetPendingWorkQueryResponse
}

func (s *stubPendingWorkReader) Handle(_ context.Context, q queries.GetPendingWorkQuery) ([]queries.GetPendingWorkQueryResponse, error) {
	s.asked = append(s.asked, q.Roles())
	return s.out, nil
}

type apiFixture struct {
	e         *echo.Echo
	store     *memory.Store
	qs        *QueryHandlers
	requestID kernel.UUID
	productID kernel.UUID
	lotID     kernel.UUID
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	store := memory.NewStore()
	f := memoryFactory{store: store}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	qs := &QueryHandlers{
		Delivery:    stubDeliveryReader{},
		History:     stubHistoryReader{},
		PendingWork: &stubPendingWorkReader{},
	}
	server := NewServer(CommandHandlers{
		Create:           commands.NewCreateDeliveryCommandHandler(f),
		Authorize:        commands.NewAuthorizeDeliveryCommandHandler(f),
		Receive:          commands.NewReceiveInWarehouseCommandHandler(f),
		StartPreparation: commands.NewStartPreparationCommandHandler(f),
		MarkReady:        commands.NewMarkReadyCommandHandler(f),
		Confirm:          commands.NewConfirmDeliveryCommandHandler(f),
		Cancel:           commands.NewCancelDeliveryCommandHandler(f),
	}, *qs, logger)

	e, err := NewRouter(server, logger, nil)
	require.NoError(t, err)

	fx := &apiFixture{
		e:         e,
		store:     store,
		qs:        qs,
		requestID: kernel.NewUUID(),
		productID: kernel.NewUUID(),
	}

	line, err := request.NewLine(kernel.ProductRef(fx.productID), 10, 0)
	require.NoError(t, err)
	req, err := request.NewRequest(fx.requestID, "SOL-2026-0042", request.Approved, []request.Line{line})
	require.NoError(t, err)
	lot, err := stock.NewLot(kernel.NewUUID(), fx.productID, 25, nil, time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)
	fx.lotID = lot.ID()

	ctx := context.Background()
	uow := store.Create()
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.RequestRepository().Add(ctx, req))
	require.NoError(t, uow.LotRepository().Add(ctx, lot))
	require.NoError(t, uow.Commit(ctx))
	return fx
}

type caller struct {
	id    kernel.UUID
	roles string
}

func newCaller(roles string) caller {
	return caller{id: kernel.NewUUID(), roles: roles}
}

func (fx *apiFixture) do(t *testing.T, method, path string, who *caller, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			data, err := json.Marshal(body)
			require.NoError(t, err)
			raw = string(data)
		}
		reader = strings.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if who != nil {
		req.Header.Set(HeaderActorID, who.id.String())
		req.Header.Set(HeaderActorRoles, who.roles)
	}
	rec := httptest.NewRecorder()
	fx.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&out), rec.Body.String())
	return out
}

func (fx *apiFixture) newDeliveryBody(qty int) map[string]any {
	return map[string]any{
		"requestId": fx.requestID.String(),
		"notes":     "first cycle",
		"details": []map[string]any{
			{"itemType": "PRODUCT", "itemId": fx.productID.String(), "quantity": qty},
		},
	}
}

func TestServer_FullWalk(t *testing.T) {
	fx := newAPIFixture(t)
	clerk := newCaller("bodega")
	authorizer := newCaller("autorizador")
	receiver := newCaller("bodega")
	preparer := newCaller("bodega")
	dispatcher := newCaller("despachador")

	rec := fx.do(t, http.MethodPost, "/api/v1/deliveries", &clerk, fx.newDeliveryBody(6))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[servers.DeliveryState](t, rec)
	assert.Equal(t, "PENDING_AUTHORIZATION", created.Status)
	assert.Equal(t, "/api/v1/deliveries/"+created.Id.String(), rec.Header().Get(echo.HeaderLocation))

	base := "/api/v1/deliveries/" + created.Id.String()
	steps := []struct {
		path   string
		who    *caller
		body   any
		status string
	}{
		{"/authorize", &authorizer, map[string]any{"notes": "ok"}, "AUTHORIZED"},
		{"/receive", &receiver, nil, "RECEIVED_WAREHOUSE"},
		{"/start-preparation", &preparer, map[string]any{}, "IN_PREPARATION"},
		{"/mark-ready", &preparer, nil, "READY"},
		{"/confirm", &dispatcher, map[string]any{"receivedBy": "Ana Pérez", "receiverDocument": "CC 1020"}, "DELIVERED"},
	}
	for _, step := range steps {
		rec = fx.do(t, http.MethodPost, base+step.path, step.who, step.body)
		require.Equal(t, http.StatusOK, rec.Code, "%s: %s", step.path, rec.Body.String())
		state := decode[servers.DeliveryState](t, rec)
		assert.Equal(t, step.status, state.Status, step.path)
	}
}

func TestServer_PartialAuthorization(t *testing.T) {
	fx := newAPIFixture(t)
	clerk := newCaller("bodega")
	authorizer := newCaller("autorizador")

	rec := fx.do(t, http.MethodPost, "/api/v1/deliveries", &clerk, fx.newDeliveryBody(8))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[servers.DeliveryState](t, rec)

	rec = fx.do(t, http.MethodPost, "/api/v1/deliveries/"+created.Id.String()+"/authorize", &authorizer, map[string]any{
		"quantities": []map[string]any{
			{"itemType": "PRODUCT", "itemId": fx.productID.String(), "quantity": 5},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	uow := fx.store.Create()
	require.NoError(t, uow.Begin(context.Background()))
	defer func() { _ = uow.Rollback(context.Background()) }()
	id, err := kernel.UUIDFromString(created.Id.String())
	require.NoError(t, err)
	d, err := uow.DeliveryRepository().Get(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, d.IsPartialAuth())
	assert.Equal(t, 5, d.AuthorizedQuantity())
}

func TestServer_ErrorMapping(t *testing.T) {
	fx := newAPIFixture(t)
	clerk := newCaller("bodega")

	rec := fx.do(t, http.MethodPost, "/api/v1/deliveries", &clerk, fx.newDeliveryBody(4))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[servers.DeliveryState](t, rec)
	base := "/api/v1/deliveries/" + created.Id.String()

	t.Run("creator cannot authorize is 403", func(t *testing.T) {
		both := caller{id: clerk.id, roles: "bodega,autorizador"}
		rec := fx.do(t, http.MethodPost, base+"/authorize", &both, nil)
		require.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
		assert.Equal(t, errs.KindForbidden.String(), decode[servers.Error](t, rec).Code)
	})

	t.Run("missing capability is 403", func(t *testing.T) {
		dispatcher := newCaller("despachador")
		rec := fx.do(t, http.MethodPost, base+"/authorize", &dispatcher, nil)
		require.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
	})

	t.Run("illegal transition is 409", func(t *testing.T) {
		dispatcher := newCaller("despachador")
		rec := fx.do(t, http.MethodPost, base+"/confirm", &dispatcher,
			map[string]any{"receivedBy": "Ana", "receiverDocument": "CC 1"})
		require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
		assert.Equal(t, errs.KindInvalidTransition.String(), decode[servers.Error](t, rec).Code)
	})

	t.Run("quantity above the request is 422", func(t *testing.T) {
		rec := fx.do(t, http.MethodPost, "/api/v1/deliveries", &clerk, fx.newDeliveryBody(7))
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
		assert.Equal(t, errs.KindValidation.String(), decode[servers.Error](t, rec).Code)
	})

	t.Run("unknown delivery is 404", func(t *testing.T) {
		admin := newCaller("admin")
		rec := fx.do(t, http.MethodPost, "/api/v1/deliveries/"+kernel.NewUUID().String()+"/cancel", &admin,
			map[string]any{"reason": "duplicate"})
		require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
		assert.Equal(t, errs.KindNotFound.String(), decode[servers.Error](t, rec).Code)
	})

	t.Run("unknown role is 422", func(t *testing.T) {
		odd := newCaller("subadmin")
		rec := fx.do(t, http.MethodPost, base+"/authorize", &odd, nil)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	})
}

func TestServer_InsufficientStockIs409(t *testing.T) {
	fx := newAPIFixture(t)
	clerk := newCaller("bodega")
	authorizer := newCaller("autorizador")
	preparer := newCaller("bodega")

	rec := fx.do(t, http.MethodPost, "/api/v1/deliveries", &clerk, fx.newDeliveryBody(10))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	base := "/api/v1/deliveries/" + decode[servers.DeliveryState](t, rec).Id.String()

	for _, step := range []struct {
		path string
		who  *caller
	}{
		{"/authorize", &authorizer},
		{"/receive", &preparer},
		{"/start-preparation", &preparer},
	} {
		rec = fx.do(t, http.MethodPost, base+step.path, step.who, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	ctx := context.Background()
	uow := fx.store.Create()
	require.NoError(t, uow.Begin(ctx))
	lots, err := uow.LotRepository().LockForAllocation(ctx, []kernel.UUID{fx.lotID}, nil)
	require.NoError(t, err)
	require.NoError(t, lots[0].Deduct(20))
	require.NoError(t, uow.LotRepository().Update(ctx, lots...))
	require.NoError(t, uow.Commit(ctx))

	rec = fx.do(t, http.MethodPost, base+"/mark-ready", &preparer, nil)
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	assert.Equal(t, errs.KindInsufficientStock.String(), decode[servers.Error](t, rec).Code)
}

func TestServer_RequestValidation(t *testing.T) {
	fx := newAPIFixture(t)
	clerk := newCaller("bodega")

	tests := []struct {
		name string
		who  *caller
		body any
	}{
		{"missing actor headers", nil, fx.newDeliveryBody(1)},
		{"missing body", &clerk, nil},
		{"no details", &clerk, map[string]any{"requestId": fx.requestID.String(), "details": []any{}}},
		{"unknown item type", &clerk, map[string]any{
			"requestId": fx.requestID.String(),
			"details":   []map[string]any{{"itemType": "BOX", "itemId": fx.productID.String(), "quantity": 1}},
		}},
		{"zero quantity", &clerk, fx.newDeliveryBody(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := fx.do(t, http.MethodPost, "/api/v1/deliveries", tt.who, tt.body)
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
			assert.Equal(t, errs.KindValidation.String(), decode[servers.Error](t, rec).Code)
		})
	}
}

func TestServer_GetDelivery(t *testing.T) {
	fx := newAPIFixture(t)
	id := kernel.NewUUID()
	by := kernel.NewUUID()
	lotID := kernel.NewUUID()
	at := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	server := fx.serverWith(QueryHandlers{
		Delivery: stubDeliveryReader{view: queries.GetDeliveryQueryResponse{
			ID:                 id,
			Code:               "ENT-0001",
			RequestID:          fx.requestID,
			Status:             delivery.Ready,
			Created:            queries.Checkpoint{By: by, At: at},
			Authorization:      &queries.Checkpoint{By: kernel.NewUUID(), At: at, Notes: "ok"},
			AuthorizedQuantity: 4,
			Details: []queries.DetailLine{
				{ID: kernel.NewUUID(), Item: kernel.ProductRef(fx.productID), LotID: &lotID, Quantity: 4, RequestedQuantity: 4},
			},
			Deductions: []queries.DeductionLine{{LotID: lotID, ProductID: fx.productID, Quantity: 4}},
			Version:    4,
			UpdatedAt:  at,
		}},
	})

	rec := server.do(t, http.MethodGet, "/api/v1/deliveries/"+id.String(), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decode[servers.Delivery](t, rec)
	assert.Equal(t, "READY", got.Status)
	assert.Equal(t, by.String(), got.Created.By.String())
	require.NotNil(t, got.Authorization)
	require.NotNil(t, got.AuthorizedQuantity)
	assert.Equal(t, 4, *got.AuthorizedQuantity)
	assert.Nil(t, got.Dispatch)
	require.Len(t, got.Details, 1)
	assert.Equal(t, servers.ItemTypePRODUCT, got.Details[0].ItemType)
	require.NotNil(t, got.Details[0].LotId)
	assert.Equal(t, lotID.String(), got.Details[0].LotId.String())
	require.Len(t, got.Deductions, 1)
}

func TestServer_GetDeliveryNotFound(t *testing.T) {
	fx := newAPIFixture(t)
	id := kernel.NewUUID()
	server := fx.serverWith(QueryHandlers{
		Delivery: stubDeliveryReader{err: errs.NewObjectNotFoundError("deliveryID", id.String())},
	})

	rec := server.do(t, http.MethodGet, "/api/v1/deliveries/"+id.String(), nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
}

func TestServer_GetDeliveryHistory(t *testing.T) {
	fx := newAPIFixture(t)
	from := delivery.PendingAuthorization
	server := fx.serverWith(QueryHandlers{
		History: stubHistoryReader{records: []queries.GetDeliveryHistoryQueryResponse{
			{ID: kernel.NewUUID(), To: delivery.PendingAuthorization, UserID: kernel.NewUUID(), Notes: "created"},
			{ID: kernel.NewUUID(), From: &from, To: delivery.Authorized, UserID: kernel.NewUUID()},
		}},
	})

	rec := server.do(t, http.MethodGet, "/api/v1/deliveries/"+kernel.NewUUID().String()+"/history", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decode[[]servers.HistoryEntry](t, rec)
	require.Len(t, got, 2)
	assert.Nil(t, got[0].FromStatus)
	assert.Equal(t, "PENDING_AUTHORIZATION", got[0].ToStatus)
	require.NotNil(t, got[1].FromStatus)
	assert.Equal(t, "PENDING_AUTHORIZATION", *got[1].FromStatus)
	assert.Equal(t, "AUTHORIZED", got[1].ToStatus)
}

func TestServer_GetWorkItems(t *testing.T) {
	fx := newAPIFixture(t)
	reader := &stubPendingWorkReader{out: []queries.GetPendingWorkQueryResponse{
		{Role: actor.Warehouse, Count: 1, Items: []queries.PendingWorkItem{
			{DeliveryID: kernel.NewUUID(), Code: "ENT-0002", RequestID: fx.requestID, Status: delivery.Authorized},
		}},
	}}
	server := fx.serverWith(QueryHandlers{PendingWork: reader})

	rec := server.do(t, http.MethodGet, "/api/v1/work-items?role=bodega", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[[]servers.WorkQueue](t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, "WAREHOUSE", got[0].Role)
	assert.Equal(t, 1, got[0].Count)
	assert.Equal(t, "AUTHORIZED", got[0].Items[0].Status)

	rec = server.do(t, http.MethodGet, "/api/v1/work-items", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.Len(t, reader.asked, 2)
	assert.Equal(t, []actor.Capability{actor.Warehouse}, reader.asked[0])
	assert.Equal(t, []actor.Capability{actor.Authorizer, actor.Warehouse, actor.Dispatcher}, reader.asked[1])

	rec = server.do(t, http.MethodGet, "/api/v1/work-items?role=bodega-norte", nil, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
}

func TestRouter_HealthAndSwagger(t *testing.T) {
	fx := newAPIFixture(t)

	rec := fx.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Healthy", rec.Body.String())

	rec = fx.do(t, http.MethodGet, "/swagger/doc.json", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/v1/deliveries/{id}/mark-ready")

	rec = fx.do(t, http.MethodGet, "/api/v1/unknown", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode[servers.Error](t, rec).Code)
}

func TestRouter_UnhealthyDependency(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := NewServer(CommandHandlers{}, QueryHandlers{}, logger)
	e, err := NewRouter(server, logger, func(context.Context) error { return errs.NewConflictError("db", "down") })
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// serverWith returns a fixture sharing the store but answering reads from qs.
func (fx *apiFixture) serverWith(qs QueryHandlers) *apiFixture {
	if qs.Delivery == nil {
		qs.Delivery = fx.qs.Delivery
	}
	if qs.History == nil {
		qs.History = fx.qs.History
	}
	if qs.PendingWork == nil {
		qs.PendingWork = fx.qs.PendingWork
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e, err := NewRouter(NewServer(CommandHandlers{}, qs, logger), logger, nil)
	if err != nil {
		panic(err)
	}
	clone := *fx
	clone.e = e
	return &clone
}
