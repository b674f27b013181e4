package queries

import (
	"context"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/ports"
	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/errs"
)

// GetDeliveryHistoryQueryHandler reads through the audit log port, which owns
// the ordering of the trail.
type GetDeliveryHistoryQueryHandler struct {
	auditLog ports.AuditLog
}

func NewGetDeliveryHistoryQueryHandler(auditLog ports.AuditLog) GetDeliveryHistoryQueryHandler {
	return GetDeliveryHistoryQueryHandler{auditLog: auditLog}
}

// Handle returns *errs.ObjectNotFoundError when the delivery has no trail.
// Creation appends the first record in the same transaction as the delivery,
// so an empty trail means an unknown delivery.
func (h GetDeliveryHistoryQueryHandler) Handle(
	ctx context.Context,
	query GetDeliveryHistoryQuery,
) ([]GetDeliveryHistoryQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	records, err := h.auditLog.ListByDelivery(ctx, query.DeliveryID())
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errs.NewObjectNotFoundError("deliveryID", query.DeliveryID().String())
	}

	response := make([]GetDeliveryHistoryQueryResponse, 0, len(records))
	for _, r := range records {
		response = append(response, GetDeliveryHistoryQueryResponse{
			ID:        r.ID(),
			From:      r.From(),
			To:        r.To(),
			UserID:    r.UserID(),
			Notes:     r.Notes(),
			CreatedAt: r.CreatedAt(),
		})
	}
	return response, nil
}
