package queries

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/actor"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/delivery"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/services"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetPendingWorkQueryHandler derives each role queue from the delivery status
// and the notification router. When a cache is configured it is read through
// per role; the outbox relay invalidates it after work item events.
type GetPendingWorkQueryHandler struct {
	db     *gorm.DB
	cache  ports.PendingWorkCache
	router services.NotificationRouter
	logger *slog.Logger
}

// NewGetPendingWorkQueryHandler accepts a nil cache.
func NewGetPendingWorkQueryHandler(db *gorm.DB, cache ports.PendingWorkCache, logger *slog.Logger) GetPendingWorkQueryHandler {
	return GetPendingWorkQueryHandler{
		db:     db,
		cache:  cache,
		router: services.NewNotificationRouter(),
		logger: logger.With("component", "pending_work_query"),
	}
}

func (h GetPendingWorkQueryHandler) Handle(
	ctx context.Context,
	query GetPendingWorkQuery,
) ([]GetPendingWorkQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	out := make([]GetPendingWorkQueryResponse, 0, len(query.Roles()))
	for _, role := range query.Roles() {
		if cached, ok := h.fromCache(ctx, role); ok {
			out = append(out, cached)
			continue
		}

		resp, err := h.load(ctx, role)
		if err != nil {
			return nil, err
		}
		h.toCache(ctx, resp)
		out = append(out, resp)
	}
	return out, nil
}

func (h GetPendingWorkQueryHandler) load(ctx context.Context, role actor.Capability) (GetPendingWorkQueryResponse, error) {
	statuses := make([]int, 0)
	for _, s := range h.router.StatusesFor(role) {
		statuses = append(statuses, int(s))
	}

	resp := GetPendingWorkQueryResponse{Role: role, Items: make([]PendingWorkItem, 0)}
	if len(statuses) == 0 {
		return resp, nil
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT id, code, request_id, status, updated_at
		FROM deliveries
		WHERE status IN ?
		ORDER BY updated_at, id
	`, statuses).Rows()
	if err != nil {
		return GetPendingWorkQueryResponse{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, requestID uuid.UUID
			status        int
			item          PendingWorkItem
		)
		if err = rows.Scan(&id, &item.Code, &requestID, &status, &item.UpdatedAt); err != nil {
			return GetPendingWorkQueryResponse{}, err
		}
		if item.DeliveryID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return GetPendingWorkQueryResponse{}, err
		}
		if item.RequestID, err = kernel.UUIDFromBytes(requestID[:]); err != nil {
			return GetPendingWorkQueryResponse{}, err
		}
		item.Status = delivery.Status(status)
		item.UpdatedAt = item.UpdatedAt.UTC()
		resp.Items = append(resp.Items, item)
	}
	if err = rows.Err(); err != nil {
		return GetPendingWorkQueryResponse{}, err
	}

	resp.Count = len(resp.Items)
	return resp, nil
}

// cachedQueue is the JSON form kept in the cache.
type cachedQueue struct {
	Items []cachedItem `json:"items"`
}

type cachedItem struct {
	DeliveryID string    `json:"deliveryId"`
	Code       string    `json:"code"`
	RequestID  string    `json:"requestId"`
	Status     string    `json:"status"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// fromCache treats every cache failure as a miss.
func (h GetPendingWorkQueryHandler) fromCache(ctx context.Context, role actor.Capability) (GetPendingWorkQueryResponse, bool) {
	if h.cache == nil {
		return GetPendingWorkQueryResponse{}, false
	}

	data, ok, err := h.cache.Get(ctx, role.String())
	if err != nil {
		h.logger.WarnContext(ctx, "pending work cache read failed", "role", role.String(), "error", err)
		return GetPendingWorkQueryResponse{}, false
	}
	if !ok {
		return GetPendingWorkQueryResponse{}, false
	}

	resp, err := decodeQueue(role, data)
	if err != nil {
		h.logger.WarnContext(ctx, "pending work cache entry is unreadable", "role", role.String(), "error", err)
		return GetPendingWorkQueryResponse{}, false
	}
	return resp, true
}

func (h GetPendingWorkQueryHandler) toCache(ctx context.Context, resp GetPendingWorkQueryResponse) {
	if h.cache == nil {
		return
	}

	data, err := encodeQueue(resp)
	if err == nil {
		err = h.cache.Set(ctx, resp.Role.String(), data)
	}
	if err != nil {
		h.logger.WarnContext(ctx, "pending work cache write failed", "role", resp.Role.String(), "error", err)
	}
}

func encodeQueue(resp GetPendingWorkQueryResponse) ([]byte, error) {
	q := cachedQueue{Items: make([]cachedItem, 0, len(resp.Items))}
	for _, item := range resp.Items {
		q.Items = append(q.Items, cachedItem{
			DeliveryID: item.DeliveryID.String(),
			Code:       item.Code,
			RequestID:  item.RequestID.String(),
			Status:     item.Status.String(),
			UpdatedAt:  item.UpdatedAt,
		})
	}
	return json.Marshal(q)
}

func decodeQueue(role actor.Capability, data []byte) (GetPendingWorkQueryResponse, error) {
	var q cachedQueue
	if err := json.Unmarshal(data, &q); err != nil {
		return GetPendingWorkQueryResponse{}, err
	}

	resp := GetPendingWorkQueryResponse{Role: role, Items: make([]PendingWorkItem, 0, len(q.Items))}
	for _, c := range q.Items {
		id, err := kernel.UUIDFromString(c.DeliveryID)
		if err != nil {
			return GetPendingWorkQueryResponse{}, err
		}
		requestID, err := kernel.UUIDFromString(c.RequestID)
		if err != nil {
			return GetPendingWorkQueryResponse{}, err
		}
		status, err := delivery.ParseStatus(c.Status)
		if err != nil {
			return GetPendingWorkQueryResponse{}, err
		}
		resp.Items = append(resp.Items, PendingWorkItem{
			DeliveryID: id,
			Code:       c.Code,
			RequestID:  requestID,
			Status:     status,
			UpdatedAt:  c.UpdatedAt,
		})
	}
	resp.Count = len(resp.Items)
	return resp, nil
}
