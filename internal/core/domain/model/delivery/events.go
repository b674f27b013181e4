package delivery

import "time"

// Event is a fact raised by the aggregate or by the workflow on its behalf.
// Events are collected with PullEvents and persisted to the outbox in the same
// transaction as the state change.
type Event interface {
	EventName() string
}

const (
	TransitionRecordedEvent = "delivery.transition_recorded"
	WorkItemAvailableEvent  = "delivery.work_item_available"
	WorkItemClosedEvent     = "delivery.work_item_closed"
)

// TransitionRecorded mirrors the history record appended by a transition.
type TransitionRecorded struct {
	HistoryID  string    `json:"historyId"`
	DeliveryID string    `json:"deliveryId"`
	Code       string    `json:"code"`
	RequestID  string    `json:"requestId"`
	Action     string    `json:"action"`
	From       string    `json:"fromStatus,omitempty"`
	To         string    `json:"toStatus"`
	UserID     string    `json:"userId"`
	Notes      string    `json:"notes,omitempty"`
	At         time.Time `json:"at"`
}

func (TransitionRecorded) EventName() string {
	return TransitionRecordedEvent
}

// WorkItemAvailable announces that Role has a delivery awaiting its action.
type WorkItemAvailable struct {
	DeliveryID string    `json:"deliveryId"`
	Code       string    `json:"code"`
	Status     string    `json:"status"`
	Role       string    `json:"role"`
	At         time.Time `json:"at"`
}

func (WorkItemAvailable) EventName() string {
	return WorkItemAvailableEvent
}

// WorkItemClosed announces that the delivery reached a terminal status.
type WorkItemClosed struct {
	DeliveryID string    `json:"deliveryId"`
	Code       string    `json:"code"`
	Status     string    `json:"status"`
	At         time.Time `json:"at"`
}

func (WorkItemClosed) EventName() string {
	return WorkItemClosedEvent
}
