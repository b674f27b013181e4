package errs

import "errors"

// Kind is the coarse failure class of an error as seen by callers of the workflow.
type Kind int

const (
	// KindInternal covers every error that is not one of the classified kinds.
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindForbidden
	KindInvalidTransition
	KindInsufficientStock
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindNotFound:
		return "NOT_FOUND"
	case KindForbidden:
		return "FORBIDDEN"
	case KindInvalidTransition:
		return "INVALID_TRANSITION"
	case KindInsufficientStock:
		return "INSUFFICIENT_STOCK"
	case KindConflict:
		return "CONFLICT"
	case KindInternal:
		return "INTERNAL"
	default:
		return "INTERNAL"
	}
}

// KindOf classifies err, looking through wrapping and errors.Join trees.
// When a joined error mixes kinds, the first matching kind in the order below wins.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrInvalidTransition):
		return KindInvalidTransition
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrInsufficientStock):
		return KindInsufficientStock
	case errors.Is(err, ErrObjectNotFound):
		return KindNotFound
	case IsValidation(err):
		return KindValidation
	default:
		return KindInternal
	}
}

// IsValidation reports whether err carries any of the validation sentinels.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValueIsRequired) ||
		errors.Is(err, ErrValueIsInvalid) ||
		errors.Is(err, ErrValueIsOutOfRange) ||
		errors.Is(err, ErrQuantityExceeded)
}
