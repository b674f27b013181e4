// Package servers holds the HTTP contract of the delivery API: wire types,
// the handler interface, route registration and the embedded OpenAPI document.
package servers

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

type ItemType string

const (
	ItemTypePRODUCT ItemType = "PRODUCT"
	ItemTypeKIT     ItemType = "KIT"
)

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type NewDelivery struct {
	Id        *openapi_types.UUID `json:"id,omitempty"`
	RequestId openapi_types.UUID  `json:"requestId"`
	Notes     *string             `json:"notes,omitempty"`
	Details   []NewDeliveryDetail `json:"details"`
}

type NewDeliveryDetail struct {
	ItemType ItemType            `json:"itemType"`
	ItemId   openapi_types.UUID  `json:"itemId"`
	LotId    *openapi_types.UUID `json:"lotId,omitempty"`
	Quantity int                 `json:"quantity"`
}

type AuthorizeDelivery struct {
	Notes      *string               `json:"notes,omitempty"`
	Quantities *[]AuthorizedQuantity `json:"quantities,omitempty"`
}

type AuthorizedQuantity struct {
	ItemType ItemType           `json:"itemType"`
	ItemId   openapi_types.UUID `json:"itemId"`
	Quantity int                `json:"quantity"`
}

type TransitionNotes struct {
	Notes *string `json:"notes,omitempty"`
}

type ConfirmDelivery struct {
	ReceivedBy        string  `json:"receivedBy"`
	ReceiverDocument  string  `json:"receiverDocument"`
	ReceiverSignature *string `json:"receiverSignature,omitempty"`
	ReceptionNotes    *string `json:"receptionNotes,omitempty"`
	Notes             *string `json:"notes,omitempty"`
}

type CancelDelivery struct {
	Reason string `json:"reason"`
}

type DeliveryState struct {
	Id      openapi_types.UUID `json:"id"`
	Code    string             `json:"code"`
	Status  string             `json:"status"`
	Version int                `json:"version"`
}

type Checkpoint struct {
	By    openapi_types.UUID `json:"by"`
	At    time.Time          `json:"at"`
	Notes *string            `json:"notes,omitempty"`
}

type Reception struct {
	ReceivedBy        string  `json:"receivedBy"`
	ReceiverDocument  string  `json:"receiverDocument"`
	ReceiverSignature *string `json:"receiverSignature,omitempty"`
	Notes             *string `json:"notes,omitempty"`
}

type DeliveryDetail struct {
	Id                openapi_types.UUID  `json:"id"`
	ItemType          ItemType            `json:"itemType"`
	ItemId            openapi_types.UUID  `json:"itemId"`
	LotId             *openapi_types.UUID `json:"lotId,omitempty"`
	Quantity          int                 `json:"quantity"`
	RequestedQuantity int                 `json:"requestedQuantity"`
}

type Deduction struct {
	LotId     openapi_types.UUID `json:"lotId"`
	ProductId openapi_types.UUID `json:"productId"`
	Quantity  int                `json:"quantity"`
}

type Delivery struct {
	Id                 openapi_types.UUID `json:"id"`
	Code               string             `json:"code"`
	RequestId          openapi_types.UUID `json:"requestId"`
	Status             string             `json:"status"`
	Created            Checkpoint         `json:"created"`
	Authorization      *Checkpoint        `json:"authorization,omitempty"`
	IsPartialAuth      bool               `json:"isPartialAuth"`
	AuthorizedQuantity *int               `json:"authorizedQuantity,omitempty"`
	Warehouse          *Checkpoint        `json:"warehouse,omitempty"`
	Preparation        *Checkpoint        `json:"preparation,omitempty"`
	Ready              *Checkpoint        `json:"ready,omitempty"`
	Dispatch           *Checkpoint        `json:"dispatch,omitempty"`
	Cancellation       *Checkpoint        `json:"cancellation,omitempty"`
	Reception          *Reception         `json:"reception,omitempty"`
	IsPartial          bool               `json:"isPartial"`
	Details            []DeliveryDetail   `json:"details"`
	Deductions         []Deduction        `json:"deductions"`
	Version            int                `json:"version"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

type HistoryEntry struct {
	Id         openapi_types.UUID `json:"id"`
	FromStatus *string            `json:"fromStatus,omitempty"`
	ToStatus   string             `json:"toStatus"`
	UserId     openapi_types.UUID `json:"userId"`
	Notes      *string            `json:"notes,omitempty"`
	CreatedAt  time.Time          `json:"createdAt"`
}

type WorkItem struct {
	DeliveryId openapi_types.UUID `json:"deliveryId"`
	Code       string             `json:"code"`
	RequestId  openapi_types.UUID `json:"requestId"`
	Status     string             `json:"status"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

type WorkQueue struct {
	Role  string     `json:"role"`
	Count int        `json:"count"`
	Items []WorkItem `json:"items"`
}

// GetWorkItemsParams are the query parameters of GetWorkItems.
type GetWorkItemsParams struct {
	Role *string `form:"role,omitempty" json:"role,omitempty"`
}
