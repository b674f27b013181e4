// Package guard holds the construction marker embedded by domain objects and commands.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate on a zero guard when no specific error is given.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard marks a value as built by its constructor.
// A zero value guard fails validation, so a struct literal that skipped the
// constructor is detected at the first Validate call.
//
//	type Reception struct {
//	    receivedBy string
//	    guard      guard.ConstructorGuard
//	}
//
//	func (r Reception) Validate() error {
//	    return r.guard.Validate(ErrReceptionNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard that validates successfully.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns validationError (or ErrDefaultConstructorGuard when it is nil)
// if the guard is a zero value.
func (g ConstructorGuard) Validate(validationError error) error {
	if g.isConstructed {
		return nil
	}
	if validationError == nil {
		return ErrDefaultConstructorGuard
	}
	return validationError
}
