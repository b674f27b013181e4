package queries

import (
	"errors"
	"time"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/actor"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/delivery"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/guard"
)

var (
	ErrGetPendingWorkQueryIsNotConstructed = errors.New(
		"GetPendingWorkQuery must be created via NewGetPendingWorkQuery constructor",
	)
)

// operationalRoles are reported when no role is asked for. Admin is only
// reported on request since it sees every open delivery.
var operationalRoles = []actor.Capability{actor.Authorizer, actor.Warehouse, actor.Dispatcher}

// GetPendingWorkQuery lists deliveries awaiting a role.
//
// Example:
//
//	role := actor.Warehouse
//	query, _ := NewGetPendingWorkQuery(&role)
//	work, err := handler.Handle(ctx, query)
//	// work[0].Count deliveries are waiting for the warehouse
type GetPendingWorkQuery struct {
	roles []actor.Capability
	guard guard.ConstructorGuard
}

// NewGetPendingWorkQuery asks for one role, or for every operational role
// when role is nil.
func NewGetPendingWorkQuery(role *actor.Capability) (GetPendingWorkQuery, error) {
	roles := operationalRoles
	if role != nil {
		if err := role.Validate(); err != nil {
			return GetPendingWorkQuery{}, err
		}
		roles = []actor.Capability{*role}
	}
	return GetPendingWorkQuery{
		roles: append([]actor.Capability(nil), roles...),
		guard: guard.NewConstructorGuard(),
	}, nil
}

func (q GetPendingWorkQuery) Roles() []actor.Capability {
	return append([]actor.Capability(nil), q.roles...)
}

func (q GetPendingWorkQuery) Validate() error {
	return q.guard.Validate(ErrGetPendingWorkQueryIsNotConstructed)
}

// GetPendingWorkQueryResponse is the queue of one role, oldest change first.
type GetPendingWorkQueryResponse struct {
	Role  actor.Capability
	Count int
	Items []PendingWorkItem
}

type PendingWorkItem struct {
	DeliveryID kernel.UUID
	Code       string
	RequestID  kernel.UUID
	Status     delivery.Status
	UpdatedAt  time.Time
}
