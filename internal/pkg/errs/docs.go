// Package errs provides standardized error types for the delivery workflow service.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package includes two families of error types:
//   - Value errors: ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError
//     and QuantityExceededError, all classified as validation failures
//   - Workflow errors: InvalidTransitionError, ForbiddenError, InsufficientStockError,
//     ConflictError and ObjectNotFoundError
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions, with a cause variant where a cause is meaningful
//   - Error() method for formatting the error message
//   - Unwrap() method for error wrapping/unwrapping support
//
// KindOf collapses any (possibly joined or wrapped) error into a Kind so transport
// adapters can map failures to status codes without knowing every concrete type.
package errs
