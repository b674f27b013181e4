package services

import (
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/actor"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/delivery"
	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/errs"
)

// Rule identifiers reported in errs.ForbiddenError.Rule.
const (
	RuleCapabilityRequired          = "capability-required"
	RuleCreatorCannotAuthorize      = "creator-cannot-authorize"
	RuleAuthorizerCannotHandleStock = "authorizer-cannot-handle-stock"
	RuleAuthorizerCannotDispatch    = "authorizer-cannot-dispatch"
	RulePreparerCannotDispatch      = "preparer-cannot-dispatch"
)

// requiredCapability lists the capability each action needs. Cancel needs
// Admin itself; the other capabilities are also granted by Admin.
var requiredCapability = map[delivery.Action]actor.Capability{
	delivery.Create:             actor.Warehouse,
	delivery.Authorize:          actor.Authorizer,
	delivery.ReceiveInWarehouse: actor.Warehouse,
	delivery.StartPreparation:   actor.Warehouse,
	delivery.MarkReady:          actor.Warehouse,
	delivery.ConfirmDelivery:    actor.Dispatcher,
	delivery.Cancel:             actor.Admin,
}

// DutySegregationGuard decides whether an actor may perform an action.
//
// Identity rules apply to every actor, administrators included: holding Admin
// grants every role capability but never lets the same person sign two
// segregated checkpoints of one delivery.
//
//	creator     != authorizer
//	authorizer  != warehouse receiver, preparer, dispatcher
//	preparer    != dispatcher
type DutySegregationGuard struct{}

func NewDutySegregationGuard() DutySegregationGuard {
	return DutySegregationGuard{}
}

// MayPerform returns nil when a may perform action on d, or an
// *errs.ForbiddenError naming the rule that failed. d is ignored for Create
// and required for every other action.
func (g DutySegregationGuard) MayPerform(action delivery.Action, d *delivery.Delivery, a actor.Actor) error {
	if err := action.Validate(); err != nil {
		return err
	}
	if err := a.Validate(); err != nil {
		return err
	}

	capability := requiredCapability[action]
	if !a.Can(capability) {
		return errs.NewForbiddenError(action.String(), RuleCapabilityRequired,
			"actor lacks the "+capability.String()+" capability")
	}

	if action == delivery.Create {
		return nil
	}
	if err := d.Validate(); err != nil {
		return err
	}

	switch action {
	case delivery.Authorize:
		if a.Is(ptr(d.CreatedBy())) {
			return errs.NewForbiddenError(action.String(), RuleCreatorCannotAuthorize,
				"the creator of a delivery cannot authorize it")
		}
	case delivery.ReceiveInWarehouse, delivery.StartPreparation:
		if a.Is(d.AuthorizedBy()) {
			return errs.NewForbiddenError(action.String(), RuleAuthorizerCannotHandleStock,
				"the authorizer of a delivery cannot receive or prepare it")
		}
	case delivery.ConfirmDelivery:
		if a.Is(d.AuthorizedBy()) {
			return errs.NewForbiddenError(action.String(), RuleAuthorizerCannotDispatch,
				"the authorizer of a delivery cannot dispatch it")
		}
		if a.Is(d.PreparedBy()) {
			return errs.NewForbiddenError(action.String(), RulePreparerCannotDispatch,
				"the preparer of a delivery cannot dispatch it")
		}
	case delivery.MarkReady, delivery.Cancel:
	}

	return nil
}

func ptr[T any](v T) *T {
	return &v
}
