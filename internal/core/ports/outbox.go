package ports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/delivery"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
)

// OutboxMessage is an event waiting to leave the service. It is written in
// the same transaction as the change that raised it.
type OutboxMessage struct {
	ID          kernel.UUID
	Name        string
	AggregateID kernel.UUID
	Payload     []byte
	OccurredAt  time.Time
	PublishedAt *time.Time
	Attempts    int
	LastError   string
}

// NewOutboxMessage encodes event as JSON.
func NewOutboxMessage(aggregateID kernel.UUID, event delivery.Event, at time.Time) (OutboxMessage, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return OutboxMessage{}, err
	}
	return OutboxMessage{
		ID:          kernel.NewUUID(),
		Name:        event.EventName(),
		AggregateID: aggregateID,
		Payload:     payload,
		OccurredAt:  at.UTC(),
	}, nil
}

// OutboxRepository stores pending outbox messages.
type OutboxRepository interface {
	Add(ctx context.Context, messages ...OutboxMessage) error

	// ListUnpublished returns up to limit messages oldest first. Messages that
	// failed maxAttempts times are skipped.
	ListUnpublished(ctx context.Context, limit, maxAttempts int) ([]OutboxMessage, error)

	MarkPublished(ctx context.Context, at time.Time, ids ...kernel.UUID) error

	MarkFailed(ctx context.Context, id kernel.UUID, cause error) error
}

// WorkItemPublisher sends work item events to the role queues.
type WorkItemPublisher interface {
	Publish(ctx context.Context, message OutboxMessage) error
}

// HistoryIndexer projects transition events into the compliance search index.
type HistoryIndexer interface {
	Index(ctx context.Context, message OutboxMessage) error
}

// PendingWorkCache keeps rendered pending work per role.
type PendingWorkCache interface {
	// Get reports false on a miss.
	Get(ctx context.Context, role string) ([]byte, bool, error)
	Set(ctx context.Context, role string, data []byte) error
	Invalidate(ctx context.Context) error
}
