package request

import (
	"fmt"
	"strings"

	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/errs"
)

// Status mirrors the request lifecycle owned by the request service.
type Status int

const (
	Unknown Status = iota
	Registered
	InReview
	Approved
	Rejected
	Delivered
	PartiallyDelivered
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:            "UNKNOWN",
		Registered:         "REGISTERED",
		InReview:           "IN_REVIEW",
		Approved:           "APPROVED",
		Rejected:           "REJECTED",
		Delivered:          "DELIVERED",
		PartiallyDelivered: "PARTIALLY_DELIVERED",
		Cancelled:          "CANCELLED",
	}
}

func ParseStatus(s string) (Status, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	for status, name := range getStatusStrings() {
		if status != Unknown && name == normalized {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("request status", fmt.Errorf("%q is not a valid status", s))
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

func (s Status) Validate() error {
	if s <= Unknown || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("request status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// AllowsNewDelivery reports whether a delivery cycle may be opened.
func (s Status) AllowsNewDelivery() bool {
	return s == Approved || s == PartiallyDelivered
}
