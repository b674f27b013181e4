package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/application/usecases/commands"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/delivery"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOutboxRepository struct{ mock.Mock }

func (m *MockOutboxRepository) Add(ctx context.Context, messages ...ports.OutboxMessage) error {
	args := m.Called(ctx, messages)
	return args.Error(0)
}

func (m *MockOutboxRepository) ListUnpublished(ctx context.Context, limit, maxAttempts int) ([]ports.OutboxMessage, error) {
	args := m.Called(ctx, limit, maxAttempts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.OutboxMessage), args.Error(1)
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, at time.Time, ids ...kernel.UUID) error {
	args := m.Called(ctx, at, ids)
	return args.Error(0)
}

func (m *MockOutboxRepository) MarkFailed(ctx context.Context, id kernel.UUID, cause error) error {
	args := m.Called(ctx, id, cause)
	return args.Error(0)
}

type MockOutboxUoW struct{ mock.Mock }

func (m *MockOutboxUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOutboxUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOutboxUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOutboxUoW) OutboxRepository() ports.OutboxRepository {
	args := m.Called()
	return args.Get(0).(ports.OutboxRepository)
}

type MockOutboxUoWFactory struct{ mock.Mock }

func (m *MockOutboxUoWFactory) Create() commands.OutboxUoW {
	args := m.Called()
	return args.Get(0).(commands.OutboxUoW)
}

type MockWorkItemPublisher struct{ mock.Mock }

func (m *MockWorkItemPublisher) Publish(ctx context.Context, message ports.OutboxMessage) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

type MockHistoryIndexer struct{ mock.Mock }

func (m *MockHistoryIndexer) Index(ctx context.Context, message ports.OutboxMessage) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

type MockPendingWorkCache struct{ mock.Mock }

func (m *MockPendingWorkCache) Get(ctx context.Context, role string) ([]byte, bool, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.Bool(1), args.Error(2)
}

func (m *MockPendingWorkCache) Set(ctx context.Context, role string, data []byte) error {
	args := m.Called(ctx, role, data)
	return args.Error(0)
}

func (m *MockPendingWorkCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func outboxMessage(name string) ports.OutboxMessage {
	return ports.OutboxMessage{
		ID:          kernel.NewUUID(),
		Name:        name,
		AggregateID: kernel.NewUUID(),
		Payload:     []byte(`{}`),
		OccurredAt:  time.Now().UTC(),
	}
}

func TestRelayOutboxCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewRelayOutboxCommand(50, 5)
	require.NoError(t, err)

	transition := outboxMessage(delivery.TransitionRecordedEvent)
	workItem := outboxMessage(delivery.WorkItemAvailableEvent)

	outbox := new(MockOutboxRepository)
	uow := new(MockOutboxUoW)
	publisher := new(MockWorkItemPublisher)
	indexer := new(MockHistoryIndexer)
	cache := new(MockPendingWorkCache)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OutboxRepository").Return(outbox).Once(),
		outbox.On("ListUnpublished", ctx, 50, 5).Return([]ports.OutboxMessage{transition, workItem}, nil).Once(),
		indexer.On("Index", ctx, transition).Return(nil).Once(),
		publisher.On("Publish", ctx, workItem).Return(nil).Once(),
		outbox.On("MarkPublished", ctx, mock.AnythingOfType("time.Time"),
			[]kernel.UUID{transition.ID, workItem.ID}).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		cache.On("Invalidate", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOutboxUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewRelayOutboxCommandHandler(factory, publisher, indexer, cache)
	result, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, commands.RelayOutboxResult{Published: 2}, result)
	uow.AssertExpectations(t)
	outbox.AssertExpectations(t)
	publisher.AssertExpectations(t)
	indexer.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestRelayOutboxCommandHandler_Handle_FailedMessageIsKept(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewRelayOutboxCommand(10, 3)
	require.NoError(t, err)

	transition := outboxMessage(delivery.TransitionRecordedEvent)
	sendErr := errors.New("index unavailable")

	outbox := new(MockOutboxRepository)
	uow := new(MockOutboxUoW)
	indexer := new(MockHistoryIndexer)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OutboxRepository").Return(outbox).Once(),
		outbox.On("ListUnpublished", ctx, 10, 3).Return([]ports.OutboxMessage{transition}, nil).Once(),
		indexer.On("Index", ctx, transition).Return(sendErr).Once(),
		outbox.On("MarkFailed", ctx, transition.ID, sendErr).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOutboxUoWFactory)
	factory.On("Create").Return(uow).Once()

	// nil cache: nothing to invalidate
	handler := commands.NewRelayOutboxCommandHandler(factory, new(MockWorkItemPublisher), indexer, nil)
	result, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, commands.RelayOutboxResult{Failed: 1}, result)
	outbox.AssertNotCalled(t, "MarkPublished", mock.Anything, mock.Anything, mock.Anything)
	uow.AssertExpectations(t)
	outbox.AssertExpectations(t)
}

func TestRelayOutboxCommandHandler_Handle_UnpublishedWorkItemInvalidatesCache(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewRelayOutboxCommand(10, 3)
	require.NoError(t, err)

	workItem := outboxMessage(delivery.WorkItemAvailableEvent)
	busErr := errors.New("bus down")

	outbox := new(MockOutboxRepository)
	uow := new(MockOutboxUoW)
	publisher := new(MockWorkItemPublisher)
	cache := new(MockPendingWorkCache)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OutboxRepository").Return(outbox).Once(),
		outbox.On("ListUnpublished", ctx, 10, 3).Return([]ports.OutboxMessage{workItem}, nil).Once(),
		publisher.On("Publish", ctx, workItem).Return(busErr).Once(),
		outbox.On("MarkFailed", ctx, workItem.ID, busErr).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		cache.On("Invalidate", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOutboxUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewRelayOutboxCommandHandler(factory, publisher, new(MockHistoryIndexer), cache)
	result, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, commands.RelayOutboxResult{Failed: 1}, result)
	outbox.AssertNotCalled(t, "MarkPublished", mock.Anything, mock.Anything, mock.Anything)
	uow.AssertExpectations(t)
	outbox.AssertExpectations(t)
	publisher.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestRelayOutboxCommandHandler_Handle_TransitionsOnlyKeepCache(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewRelayOutboxCommand(10, 3)
	require.NoError(t, err)

	transition := outboxMessage(delivery.TransitionRecordedEvent)

	outbox := new(MockOutboxRepository)
	uow := new(MockOutboxUoW)
	indexer := new(MockHistoryIndexer)
	cache := new(MockPendingWorkCache)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OutboxRepository").Return(outbox).Once(),
		outbox.On("ListUnpublished", ctx, 10, 3).Return([]ports.OutboxMessage{transition}, nil).Once(),
		indexer.On("Index", ctx, transition).Return(nil).Once(),
		outbox.On("MarkPublished", ctx, mock.AnythingOfType("time.Time"), []kernel.UUID{transition.ID}).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOutboxUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewRelayOutboxCommandHandler(factory, new(MockWorkItemPublisher), indexer, cache)
	result, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, commands.RelayOutboxResult{Published: 1}, result)
	cache.AssertNotCalled(t, "Invalidate", mock.Anything)
	uow.AssertExpectations(t)
}

func TestRelayOutboxCommandHandler_Handle_ListError(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewRelayOutboxCommand(10, 3)
	require.NoError(t, err)

	outbox := new(MockOutboxRepository)
	uow := new(MockOutboxUoW)
	listErr := errors.New("connection reset")

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OutboxRepository").Return(outbox).Once(),
		outbox.On("ListUnpublished", ctx, 10, 3).Return(nil, listErr).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOutboxUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewRelayOutboxCommandHandler(factory, new(MockWorkItemPublisher), new(MockHistoryIndexer), nil)
	_, err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, listErr)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestRelayOutboxCommandHandler_Handle_NotConstructed(t *testing.T) {
	handler := commands.NewRelayOutboxCommandHandler(
		new(MockOutboxUoWFactory), new(MockWorkItemPublisher), new(MockHistoryIndexer), nil)
	_, err := handler.Handle(t.Context(), commands.RelayOutboxCommand{})
	require.ErrorIs(t, err, commands.ErrRelayOutboxCommandIsNotConstructed)
}
