package request

import (
	"errors"
	"fmt"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/errs"
)

var ErrRequestIsNotConstructed = errors.New("Request must be created via NewRequest constructor")

// Line is one requested item.
type Line struct {
	item      kernel.ItemRef
	requested int
	delivered int
}

// NewLine validates 0 <= delivered <= requested and requested > 0.
func NewLine(item kernel.ItemRef, requested, delivered int) (Line, error) {
	var qtyErr error
	switch {
	case requested <= 0:
		qtyErr = errs.NewValueIsInvalidErrorWithCause("quantityRequested", fmt.Errorf("%d is not greater than 0", requested))
	case delivered < 0 || delivered > requested:
		qtyErr = errs.NewValueIsOutOfRangeError("quantityDelivered", delivered, 0, requested)
	}
	if err := errors.Join(item.Validate(), qtyErr); err != nil {
		return Line{}, err
	}
	return Line{item: item, requested: requested, delivered: delivered}, nil
}

func (l Line) Item() kernel.ItemRef {
	return l.item
}

func (l Line) Requested() int {
	return l.requested
}

func (l Line) Delivered() int {
	return l.delivered
}

// Remaining is what is still owed to the beneficiary.
func (l Line) Remaining() int {
	return l.requested - l.delivered
}

func (l Line) IsComplete() bool {
	return l.delivered >= l.requested
}

// Request is the aggregate snapshot of a beneficiary request.
type Request struct {
	id              kernel.UUID
	code            string
	status          Status
	lines           []Line
	version         int
	originalVersion int
	isConstructed   bool
}

// NewRequest builds a request snapshot with version 1.
func NewRequest(id kernel.UUID, code string, status Status, lines []Line) (*Request, error) {
	return RestoreRequest(id, code, status, lines, 1)
}

// RestoreRequest rebuilds a persisted request.
func RestoreRequest(id kernel.UUID, code string, status Status, lines []Line, version int) (*Request, error) {
	var linesErr error
	if len(lines) == 0 {
		linesErr = errs.NewValueIsRequiredError("lines")
	} else {
		seen := make(map[kernel.ItemRef]struct{}, len(lines))
		for _, l := range lines {
			if _, dup := seen[l.item]; dup {
				linesErr = errs.NewValueIsInvalidErrorWithCause("lines", fmt.Errorf("%s appears twice", l.item))
				break
			}
			seen[l.item] = struct{}{}
		}
	}

	var versionErr error
	if version <= 0 {
		versionErr = errs.NewValueIsInvalidErrorWithCause("version", fmt.Errorf("%d is not greater than 0", version))
	}

	if err := errors.Join(id.Validate(), status.Validate(), linesErr, versionErr); err != nil {
		return nil, err
	}

	return &Request{
		id:              id,
		code:            code,
		status:          status,
		lines:           append([]Line(nil), lines...),
		version:         version,
		originalVersion: version,
		isConstructed:   true,
	}, nil
}

func (r *Request) Validate() error {
	if r == nil || !r.isConstructed {
		return ErrRequestIsNotConstructed
	}
	return nil
}

func (r *Request) ID() kernel.UUID {
	return r.id
}

func (r *Request) Code() string {
	return r.code
}

func (r *Request) Status() Status {
	return r.status
}

func (r *Request) Lines() []Line {
	return append([]Line(nil), r.lines...)
}

func (r *Request) Version() int {
	return r.version
}

func (r *Request) OriginalVersion() int {
	return r.originalVersion
}

// Line returns the line for item.
func (r *Request) Line(item kernel.ItemRef) (Line, bool) {
	for _, l := range r.lines {
		if l.item == item {
			return l, true
		}
	}
	return Line{}, false
}

// IsFullyDelivered reports whether every line is complete.
func (r *Request) IsFullyDelivered() bool {
	for _, l := range r.lines {
		if !l.IsComplete() {
			return false
		}
	}
	return true
}

// RecordDelivered adds delivered quantities per item and moves the request to
// DELIVERED or PARTIALLY_DELIVERED. Nothing changes when any item is unknown
// or would exceed its requested quantity.
func (r *Request) RecordDelivered(quantities map[kernel.ItemRef]int) error {
	lines := r.Lines()
	index := make(map[kernel.ItemRef]int, len(lines))
	for i, l := range lines {
		index[l.item] = i
	}

	var problems []error
	for item, qty := range quantities {
		i, ok := index[item]
		if !ok {
			problems = append(problems, errs.NewValueIsInvalidErrorWithCause(
				"item", fmt.Errorf("%s is not part of request %s", item, r.code)))
			continue
		}
		if qty < 0 {
			problems = append(problems, errs.NewValueIsInvalidErrorWithCause(
				"delivered quantity", fmt.Errorf("%d is negative", qty)))
			continue
		}
		total := lines[i].delivered + qty
		if total > lines[i].requested {
			problems = append(problems, errs.NewQuantityExceededError(item.String(), total, lines[i].requested))
			continue
		}
		lines[i].delivered = total
	}
	if err := errors.Join(problems...); err != nil {
		return err
	}

	r.lines = lines
	r.version = r.originalVersion + 1
	if r.IsFullyDelivered() {
		r.status = Delivered
	} else {
		r.status = PartiallyDelivered
	}
	return nil
}
