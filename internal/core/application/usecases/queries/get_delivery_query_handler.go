package queries

import (
	"context"
	"time"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/delivery"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetDeliveryQueryHandler reads deliveries straight from the tables, without
// loading the aggregate.
type GetDeliveryQueryHandler struct {
	db *gorm.DB
}

func NewGetDeliveryQueryHandler(db *gorm.DB) GetDeliveryQueryHandler {
	return GetDeliveryQueryHandler{db: db}
}

// stepColumns are the nullable columns of one embedded checkpoint.
type stepColumns struct {
	By    *uuid.UUID
	At    *time.Time
	Notes string
}

func (s stepColumns) checkpoint() (*Checkpoint, error) {
	if s.By == nil {
		return nil, nil
	}
	by, err := kernel.UUIDFromBytes((*s.By)[:])
	if err != nil {
		return nil, err
	}
	c := &Checkpoint{By: by, Notes: s.Notes}
	if s.At != nil {
		c.At = s.At.UTC()
	}
	return c, nil
}

type deliveryRow struct {
	ID                 uuid.UUID
	Code               string
	RequestID          uuid.UUID
	Status             int
	Created            stepColumns `gorm:"embedded;embeddedPrefix:created_"`
	Authorization      stepColumns `gorm:"embedded;embeddedPrefix:authorization_"`
	IsPartialAuth      bool
	AuthorizedQuantity int
	Warehouse          stepColumns `gorm:"embedded;embeddedPrefix:warehouse_"`
	Preparation        stepColumns `gorm:"embedded;embeddedPrefix:preparation_"`
	Ready              stepColumns `gorm:"embedded;embeddedPrefix:ready_"`
	Dispatch           stepColumns `gorm:"embedded;embeddedPrefix:dispatch_"`
	Cancellation       stepColumns `gorm:"embedded;embeddedPrefix:cancellation_"`

	ReceptionReceivedBy        string
	ReceptionReceiverDocument  string
	ReceptionReceiverSignature string
	ReceptionNotes             string
	IsPartial                  bool
	Version                    int
	UpdatedAt                  time.Time
}

func (h GetDeliveryQueryHandler) Handle(ctx context.Context, query GetDeliveryQuery) (GetDeliveryQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetDeliveryQueryResponse{}, err
	}

	db := h.db.WithContext(ctx)
	id := query.DeliveryID()

	var row deliveryRow
	result := db.Raw(`SELECT * FROM deliveries WHERE id = ?`, id.Bytes()).Scan(&row)
	if result.Error != nil {
		return GetDeliveryQueryResponse{}, result.Error
	}
	if result.RowsAffected == 0 {
		return GetDeliveryQueryResponse{}, errs.NewObjectNotFoundError("deliveryID", id.String())
	}

	resp, err := row.response()
	if err != nil {
		return GetDeliveryQueryResponse{}, err
	}

	if resp.Details, err = h.details(ctx, id); err != nil {
		return GetDeliveryQueryResponse{}, err
	}
	if resp.Deductions, err = h.deductions(ctx, id); err != nil {
		return GetDeliveryQueryResponse{}, err
	}

	return resp, nil
}

func (r deliveryRow) response() (GetDeliveryQueryResponse, error) {
	id, err := kernel.UUIDFromBytes(r.ID[:])
	if err != nil {
		return GetDeliveryQueryResponse{}, err
	}
	requestID, err := kernel.UUIDFromBytes(r.RequestID[:])
	if err != nil {
		return GetDeliveryQueryResponse{}, err
	}
	created, err := r.Created.checkpoint()
	if err != nil {
		return GetDeliveryQueryResponse{}, err
	}
	if created == nil {
		return GetDeliveryQueryResponse{}, errs.NewValueIsRequiredError("created_by")
	}

	resp := GetDeliveryQueryResponse{
		ID:                 id,
		Code:               r.Code,
		RequestID:          requestID,
		Status:             delivery.Status(r.Status),
		Created:            *created,
		IsPartialAuth:      r.IsPartialAuth,
		AuthorizedQuantity: r.AuthorizedQuantity,
		IsPartial:          r.IsPartial,
		Version:            r.Version,
		UpdatedAt:          r.UpdatedAt.UTC(),
	}

	steps := []struct {
		src stepColumns
		dst **Checkpoint
	}{
		{r.Authorization, &resp.Authorization},
		{r.Warehouse, &resp.Warehouse},
		{r.Preparation, &resp.Preparation},
		{r.Ready, &resp.Ready},
		{r.Dispatch, &resp.Dispatch},
		{r.Cancellation, &resp.Cancellation},
	}
	for _, s := range steps {
		if *s.dst, err = s.src.checkpoint(); err != nil {
			return GetDeliveryQueryResponse{}, err
		}
	}

	if r.ReceptionReceivedBy != "" {
		resp.Reception = &Reception{
			ReceivedBy:        r.ReceptionReceivedBy,
			ReceiverDocument:  r.ReceptionReceiverDocument,
			ReceiverSignature: r.ReceptionReceiverSignature,
			Notes:             r.ReceptionNotes,
		}
	}

	return resp, nil
}

func (h GetDeliveryQueryHandler) details(ctx context.Context, deliveryID kernel.UUID) ([]DetailLine, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT id, item_kind, item_id, lot_id, quantity, requested_quantity
		FROM delivery_details
		WHERE delivery_id = ?
		ORDER BY position
	`, deliveryID.Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make([]DetailLine, 0)
	for rows.Next() {
		var (
			id, itemID uuid.UUID
			lotID      *uuid.UUID
			kindName   string
			line       DetailLine
		)
		if err = rows.Scan(&id, &kindName, &itemID, &lotID, &line.Quantity, &line.RequestedQuantity); err != nil {
			return nil, err
		}

		if line.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		kind, kindErr := kernel.ParseItemKind(kindName)
		if kindErr != nil {
			return nil, kindErr
		}
		item, idErr := kernel.UUIDFromBytes(itemID[:])
		if idErr != nil {
			return nil, idErr
		}
		if line.Item, err = kernel.NewItemRef(kind, item); err != nil {
			return nil, err
		}
		if lotID != nil {
			lot, lotErr := kernel.UUIDFromBytes((*lotID)[:])
			if lotErr != nil {
				return nil, lotErr
			}
			line.LotID = &lot
		}
		lines = append(lines, line)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func (h GetDeliveryQueryHandler) deductions(ctx context.Context, deliveryID kernel.UUID) ([]DeductionLine, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT lot_id, product_id, quantity
		FROM delivery_deductions
		WHERE delivery_id = ?
		ORDER BY position
	`, deliveryID.Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make([]DeductionLine, 0)
	for rows.Next() {
		var (
			lotID, productID uuid.UUID
			line             DeductionLine
		)
		if err = rows.Scan(&lotID, &productID, &line.Quantity); err != nil {
			return nil, err
		}
		if line.LotID, err = kernel.UUIDFromBytes(lotID[:]); err != nil {
			return nil, err
		}
		if line.ProductID, err = kernel.UUIDFromBytes(productID[:]); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
