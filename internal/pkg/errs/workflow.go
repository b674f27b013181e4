package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is the sentinel for actions that are not legal from the current status.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrForbidden is the sentinel for segregation-of-duties and capability violations.
	ErrForbidden = errors.New("forbidden")
	// ErrInsufficientStock is the sentinel for stock lots that cannot cover a deduction.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrConflict is the sentinel for concurrent modifications that lost the race.
	ErrConflict = errors.New("conflict")
	// ErrQuantityExceeded is the sentinel for quantities above what a request allows.
	ErrQuantityExceeded = errors.New("quantity exceeded")
)

// InvalidTransitionError reports that Action cannot be performed from status From.
type InvalidTransitionError struct {
	Action string
	From   string
}

// NewInvalidTransitionError creates an InvalidTransitionError.
func NewInvalidTransitionError(action, from string) *InvalidTransitionError {
	return &InvalidTransitionError{
		Action: action,
		From:   from,
	}
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: cannot %s from %s", ErrInvalidTransition, e.Action, e.From)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// ForbiddenError reports the guard rule that rejected an actor.
// Rule is a stable machine readable identifier, Reason is meant for humans.
type ForbiddenError struct {
	Action string
	Rule   string
	Reason string
}

// NewForbiddenError creates a ForbiddenError.
func NewForbiddenError(action, rule, reason string) *ForbiddenError {
	return &ForbiddenError{
		Action: action,
		Rule:   rule,
		Reason: reason,
	}
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("%s: %s: %s (%s)", ErrForbidden, e.Action, e.Rule, e.Reason)
}

func (e *ForbiddenError) Unwrap() error {
	return ErrForbidden
}

// InsufficientStockError reports a product or lot that cannot cover Requested units.
// LotID is empty when the shortage was computed across all lots of ProductID.
type InsufficientStockError struct {
	ProductID string
	LotID     string
	Requested int
	Available int
}

// NewInsufficientStockError creates an InsufficientStockError.
func NewInsufficientStockError(productID, lotID string, requested, available int) *InsufficientStockError {
	return &InsufficientStockError{
		ProductID: productID,
		LotID:     lotID,
		Requested: requested,
		Available: available,
	}
}

func (e *InsufficientStockError) Error() string {
	if e.LotID != "" {
		return fmt.Sprintf("%s: lot %s of product %s has %d, %d requested",
			ErrInsufficientStock, e.LotID, e.ProductID, e.Available, e.Requested)
	}
	return fmt.Sprintf("%s: product %s has %d, %d requested",
		ErrInsufficientStock, e.ProductID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// ConflictError reports that the object identified by ID was modified concurrently.
type ConflictError struct {
	ParamName string
	ID        any
	Cause     error
}

// NewConflictError creates a ConflictError without a cause.
func NewConflictError(paramName string, id any) *ConflictError {
	return &ConflictError{
		ParamName: paramName,
		ID:        id,
	}
}

// NewConflictErrorWithCause creates a ConflictError wrapping cause.
func NewConflictErrorWithCause(paramName string, id any, cause error) *ConflictError {
	return &ConflictError{
		ParamName: paramName,
		ID:        id,
		Cause:     cause,
	}
}

func (e *ConflictError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s %v was modified concurrently (cause: %v)", ErrConflict, e.ParamName, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s: %s %v was modified concurrently", ErrConflict, e.ParamName, e.ID)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// QuantityExceededError reports that Item would receive more than Limit units.
type QuantityExceededError struct {
	Item      string
	Requested int
	Limit     int
}

// NewQuantityExceededError creates a QuantityExceededError.
func NewQuantityExceededError(item string, requested, limit int) *QuantityExceededError {
	return &QuantityExceededError{
		Item:      item,
		Requested: requested,
		Limit:     limit,
	}
}

func (e *QuantityExceededError) Error() string {
	return fmt.Sprintf("%s: %s would total %d, limit is %d", ErrQuantityExceeded, e.Item, e.Requested, e.Limit)
}

func (e *QuantityExceededError) Unwrap() error {
	return ErrQuantityExceeded
}
