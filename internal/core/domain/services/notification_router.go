package services

import (
	"time"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/actor"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/delivery"
)

var responsibleRole = map[delivery.Status]actor.Capability{
	delivery.PendingAuthorization: actor.Authorizer,
	delivery.Authorized:           actor.Warehouse,
	delivery.ReceivedWarehouse:    actor.Warehouse,
	delivery.InPreparation:        actor.Warehouse,
	delivery.Ready:                actor.Dispatcher,
}

// NotificationRouter tells which role queue owns a delivery in a given status.
type NotificationRouter struct{}

func NewNotificationRouter() NotificationRouter {
	return NotificationRouter{}
}

// NextResponsibleRole returns false for DELIVERED, CANCELLED and unknown statuses.
func (r NotificationRouter) NextResponsibleRole(status delivery.Status) (actor.Capability, bool) {
	role, ok := responsibleRole[status]
	return role, ok
}

// WorkItemFor builds the event announcing the current owner of d.
func (r NotificationRouter) WorkItemFor(d *delivery.Delivery, at time.Time) delivery.Event {
	role, ok := r.NextResponsibleRole(d.Status())
	if !ok {
		return delivery.WorkItemClosed{
			DeliveryID: d.ID().String(),
			Code:       d.Code(),
			Status:     d.Status().String(),
			At:         at.UTC(),
		}
	}
	return delivery.WorkItemAvailable{
		DeliveryID: d.ID().String(),
		Code:       d.Code(),
		Status:     d.Status().String(),
		Role:       role.String(),
		At:         at.UTC(),
	}
}

// StatusesFor lists the statuses awaiting role, in workflow order. Admin
// sees every status some role is responsible for.
func (r NotificationRouter) StatusesFor(role actor.Capability) []delivery.Status {
	var statuses []delivery.Status
	for _, s := range delivery.AllStatuses() {
		owner, ok := responsibleRole[s]
		if ok && (role == actor.Admin || owner == role) {
			statuses = append(statuses, s)
		}
	}
	return statuses
}
