package delivery

import (
	"errors"
	"time"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
)

// HistoryRecord is one immutable entry of the audit trail. From is nil for the
// creation record.
type HistoryRecord struct {
	id         kernel.UUID
	deliveryID kernel.UUID
	from       *Status
	to         Status
	userID     kernel.UUID
	notes      string
	createdAt  time.Time
}

func newHistoryRecord(deliveryID kernel.UUID, from *Status, to Status, userID kernel.UUID, notes string, at time.Time) HistoryRecord {
	return HistoryRecord{
		id:         kernel.NewUUID(),
		deliveryID: deliveryID,
		from:       from,
		to:         to,
		userID:     userID,
		notes:      notes,
		createdAt:  at.UTC(),
	}
}

// RestoreHistoryRecord rebuilds a persisted record.
func RestoreHistoryRecord(
	id, deliveryID kernel.UUID,
	from *Status,
	to Status,
	userID kernel.UUID,
	notes string,
	createdAt time.Time,
) (HistoryRecord, error) {
	var fromErr error
	if from != nil {
		fromErr = from.Validate()
	}
	if err := errors.Join(id.Validate(), deliveryID.Validate(), fromErr, to.Validate(), userID.Validate()); err != nil {
		return HistoryRecord{}, err
	}

	var f *Status
	if from != nil {
		v := *from
		f = &v
	}

	return HistoryRecord{
		id:         id,
		deliveryID: deliveryID,
		from:       f,
		to:         to,
		userID:     userID,
		notes:      notes,
		createdAt:  createdAt,
	}, nil
}

func (h HistoryRecord) ID() kernel.UUID {
	return h.id
}

func (h HistoryRecord) DeliveryID() kernel.UUID {
	return h.deliveryID
}

// From returns the status before the transition, nil for creation.
func (h HistoryRecord) From() *Status {
	if h.from == nil {
		return nil
	}
	v := *h.from
	return &v
}

func (h HistoryRecord) To() Status {
	return h.to
}

func (h HistoryRecord) UserID() kernel.UUID {
	return h.userID
}

func (h HistoryRecord) Notes() string {
	return h.notes
}

func (h HistoryRecord) CreatedAt() time.Time {
	return h.createdAt
}

// IsValidWalk reports whether the records, in order, describe a legal path
// through the transition graph starting at creation.
func IsValidWalk(records []HistoryRecord) bool {
	var current *Status
	for _, r := range records {
		if !sameStatus(current, r.from) {
			return false
		}
		if current == nil {
			if r.to != PendingAuthorization {
				return false
			}
		} else if r.to == Cancelled {
			if current.CanPerform(Cancel) != nil {
				return false
			}
		} else if !isForwardEdge(*current, r.to) {
			return false
		}
		to := r.to
		current = &to
	}
	return true
}

func sameStatus(a, b *Status) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func isForwardEdge(from, to Status) bool {
	for _, e := range edges {
		if e.from == from && e.to == to {
			return true
		}
	}
	return false
}
