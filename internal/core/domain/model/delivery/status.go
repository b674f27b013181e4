package delivery

import (
	"fmt"
	"strings"

	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/errs"
)

// Status is the lifecycle state of a delivery.
//
//	PendingAuthorization ──> Authorized ──> ReceivedWarehouse ──> InPreparation ──> Ready ──> Delivered
//	        │                    │                 │                    │             │
//	        └────────────────────┴─────────────────┴────────────────────┴─────────────┴──> Cancelled
//
// Delivered and Cancelled are terminal.
type Status int

const (
	// Unknown (0) catches uninitialized values.
	Unknown Status = iota
	PendingAuthorization
	Authorized
	ReceivedWarehouse
	InPreparation
	Ready
	Delivered
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:              "UNKNOWN",
		PendingAuthorization: "PENDING_AUTHORIZATION",
		Authorized:           "AUTHORIZED",
		ReceivedWarehouse:    "RECEIVED_WAREHOUSE",
		InPreparation:        "IN_PREPARATION",
		Ready:                "READY",
		Delivered:            "DELIVERED",
		Cancelled:            "CANCELLED",
	}
}

// AllStatuses returns the valid statuses in walk order, Cancelled last.
func AllStatuses() []Status {
	return []Status{PendingAuthorization, Authorized, ReceivedWarehouse, InPreparation, Ready, Delivered, Cancelled}
}

// ParseStatus accepts the upper snake case names produced by String.
func ParseStatus(s string) (Status, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	for status, name := range getStatusStrings() {
		if status != Unknown && name == normalized {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// Validate rejects Unknown and out of range values.
func (s Status) Validate() error {
	if s <= Unknown || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// IsTerminal reports whether no action can leave s.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// Reached reports whether a delivery in status s has passed through other
// on the forward walk. Cancelled reaches nothing beyond itself.
func (s Status) Reached(other Status) bool {
	if s == Cancelled || other == Cancelled {
		return s == other
	}
	return s >= other
}

// Next returns the status produced by action, or an InvalidTransitionError when
// action has no edge leaving s.
func (s Status) Next(action Action) (Status, error) {
	if err := s.CanPerform(action); err != nil {
		return Unknown, err
	}
	return action.Target(), nil
}

// CanPerform checks the transition graph without moving.
func (s Status) CanPerform(action Action) error {
	if err := action.Validate(); err != nil {
		return err
	}

	switch action {
	case Cancel:
		if s.Validate() == nil && !s.IsTerminal() {
			return nil
		}
	case Create:
		// creation has no source status
	default:
		if source, ok := action.Source(); ok && s == source {
			return nil
		}
	}

	return errs.NewInvalidTransitionError(action.String(), s.String())
}
