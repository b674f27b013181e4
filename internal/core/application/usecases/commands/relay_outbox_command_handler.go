package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/delivery"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/ports"
)

// RelayOutboxResult counts what one relay run did.
type RelayOutboxResult struct {
	Published int
	Failed    int
}

// RelayOutboxCommandHandler moves outbox messages to their destinations:
// transition events go to the history search index, work item events go to
// the role queues. Any work item in a batch drops the cached pending work,
// even when publishing it failed.
//
// Delivery is at least once. A message that fails is kept with its attempt
// count and retried by the next run until maxAttempts is reached.
type RelayOutboxCommandHandler struct {
	uowFactory OutboxUoWFactory
	publisher  ports.WorkItemPublisher
	indexer    ports.HistoryIndexer
	cache      ports.PendingWorkCache
}

// NewRelayOutboxCommandHandler creates the relay. cache may be nil.
func NewRelayOutboxCommandHandler(
	uowFactory OutboxUoWFactory,
	publisher ports.WorkItemPublisher,
	indexer ports.HistoryIndexer,
	cache ports.PendingWorkCache,
) RelayOutboxCommandHandler {
	return RelayOutboxCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		indexer:    indexer,
		cache:      cache,
	}
}

func (h RelayOutboxCommandHandler) Handle(ctx context.Context, cmd RelayOutboxCommand) (RelayOutboxResult, error) {
	var result RelayOutboxResult
	if err := cmd.Validate(); err != nil {
		return result, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return result, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	outbox := uow.OutboxRepository()
	messages, err := outbox.ListUnpublished(ctx, cmd.BatchSize(), cmd.MaxAttempts())
	if err != nil {
		return result, err
	}
	if len(messages) == 0 {
		return result, nil
	}

	published := make([]kernel.UUID, 0, len(messages))
	workChanged := false
	for _, msg := range messages {
		// The status change behind a work item is already committed, so the
		// cached queues are stale whether or not the bus accepts the message.
		workChanged = workChanged || msg.Name != delivery.TransitionRecordedEvent
		if sendErr := h.send(ctx, msg); sendErr != nil {
			result.Failed++
			if err = outbox.MarkFailed(ctx, msg.ID, sendErr); err != nil {
				return result, err
			}
			continue
		}
		published = append(published, msg.ID)
	}

	if len(published) > 0 {
		if err = outbox.MarkPublished(ctx, time.Now().UTC(), published...); err != nil {
			return result, err
		}
	}
	if err = uow.Commit(ctx); err != nil {
		return result, err
	}
	result.Published = len(published)

	if workChanged && h.cache != nil {
		if err = h.cache.Invalidate(ctx); err != nil {
			return result, fmt.Errorf("invalidate pending work cache: %w", err)
		}
	}

	return result, nil
}

func (h RelayOutboxCommandHandler) send(ctx context.Context, msg ports.OutboxMessage) error {
	switch msg.Name {
	case delivery.TransitionRecordedEvent:
		return h.indexer.Index(ctx, msg)
	case delivery.WorkItemAvailableEvent, delivery.WorkItemClosedEvent:
		return h.publisher.Publish(ctx, msg)
	default:
		return fmt.Errorf("no destination for outbox message %q", msg.Name)
	}
}
