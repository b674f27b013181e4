package http

import (
	"strings"

	"github.com/labstack/echo/v4"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/application/usecases/queries"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/actor"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/delivery"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
	"github.com/ticinfraestructura/sigah-sub000/internal/generated/servers"
	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/errs"
)

const (
	HeaderActorID    = "X-Actor-Id"
	HeaderActorRoles = "X-Actor-Roles"
)

// actorFromRequest reads the acting user put on the request by the identity
// provider. Roles are the legacy role strings, comma separated.
func actorFromRequest(ctx echo.Context) (actor.Actor, error) {
	rawID := strings.TrimSpace(ctx.Request().Header.Get(HeaderActorID))
	if rawID == "" {
		return actor.Actor{}, errs.NewValueIsRequiredError(HeaderActorID)
	}
	id, err := kernel.UUIDFromString(rawID)
	if err != nil {
		return actor.Actor{}, errs.NewValueIsInvalidErrorWithCause(HeaderActorID, err)
	}

	caps, err := actor.ParseRoles(strings.Split(ctx.Request().Header.Get(HeaderActorRoles), ",")...)
	if err != nil {
		return actor.Actor{}, err
	}
	return actor.NewActor(id, caps)
}

func toKernelUUID(param string, id openapi_types.UUID) (kernel.UUID, error) {
	out, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(param, err)
	}
	return out, nil
}

func toItemRef(itemType servers.ItemType, itemID openapi_types.UUID) (kernel.ItemRef, error) {
	kind, err := kernel.ParseItemKind(string(itemType))
	if err != nil {
		return kernel.ItemRef{}, err
	}
	id, err := toKernelUUID("itemId", itemID)
	if err != nil {
		return kernel.ItemRef{}, err
	}
	return kernel.NewItemRef(kind, id)
}

func toState(d *delivery.Delivery) servers.DeliveryState {
	return servers.DeliveryState{
		Id:      d.ID().Bytes(),
		Code:    d.Code(),
		Status:  d.Status().String(),
		Version: d.Version(),
	}
}

func toCheckpoint(c *queries.Checkpoint) *servers.Checkpoint {
	if c == nil {
		return nil
	}
	return &servers.Checkpoint{
		By:    c.By.Bytes(),
		At:    c.At,
		Notes: optional(c.Notes),
	}
}

func toDelivery(v queries.GetDeliveryQueryResponse) servers.Delivery {
	out := servers.Delivery{
		Id:            v.ID.Bytes(),
		Code:          v.Code,
		RequestId:     v.RequestID.Bytes(),
		Status:        v.Status.String(),
		Created:       *toCheckpoint(&v.Created),
		Authorization: toCheckpoint(v.Authorization),
		IsPartialAuth: v.IsPartialAuth,
		Warehouse:     toCheckpoint(v.Warehouse),
		Preparation:   toCheckpoint(v.Preparation),
		Ready:         toCheckpoint(v.Ready),
		Dispatch:      toCheckpoint(v.Dispatch),
		Cancellation:  toCheckpoint(v.Cancellation),
		IsPartial:     v.IsPartial,
		Details:       make([]servers.DeliveryDetail, len(v.Details)),
		Deductions:    make([]servers.Deduction, len(v.Deductions)),
		Version:       v.Version,
		UpdatedAt:     v.UpdatedAt,
	}
	if v.Authorization != nil {
		qty := v.AuthorizedQuantity
		out.AuthorizedQuantity = &qty
	}
	if v.Reception != nil {
		out.Reception = &servers.Reception{
			ReceivedBy:        v.Reception.ReceivedBy,
			ReceiverDocument:  v.Reception.ReceiverDocument,
			ReceiverSignature: optional(v.Reception.ReceiverSignature),
			Notes:             optional(v.Reception.Notes),
		}
	}

	for i, d := range v.Details {
		detail := servers.DeliveryDetail{
			Id:                d.ID.Bytes(),
			ItemType:          servers.ItemType(d.Item.Kind().String()),
			ItemId:            d.Item.ID().Bytes(),
			Quantity:          d.Quantity,
			RequestedQuantity: d.RequestedQuantity,
		}
		if d.LotID != nil {
			lotID := d.LotID.Bytes()
			detail.LotId = &lotID
		}
		out.Details[i] = detail
	}
	for i, d := range v.Deductions {
		out.Deductions[i] = servers.Deduction{
			LotId:     d.LotID.Bytes(),
			ProductId: d.ProductID.Bytes(),
			Quantity:  d.Quantity,
		}
	}
	return out
}

func toHistoryEntry(r queries.GetDeliveryHistoryQueryResponse) servers.HistoryEntry {
	entry := servers.HistoryEntry{
		Id:        r.ID.Bytes(),
		ToStatus:  r.To.String(),
		UserId:    r.UserID.Bytes(),
		Notes:     optional(r.Notes),
		CreatedAt: r.CreatedAt,
	}
	if r.From != nil {
		from := r.From.String()
		entry.FromStatus = &from
	}
	return entry
}

func toWorkQueue(q queries.GetPendingWorkQueryResponse) servers.WorkQueue {
	items := make([]servers.WorkItem, len(q.Items))
	for i, item := range q.Items {
		items[i] = servers.WorkItem{
			DeliveryId: item.DeliveryID.Bytes(),
			Code:       item.Code,
			RequestId:  item.RequestID.Bytes(),
			Status:     item.Status.String(),
			UpdatedAt:  item.UpdatedAt,
		}
	}
	return servers.WorkQueue{
		Role:  q.Role.String(),
		Count: q.Count,
		Items: items,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
