package delivery_test

import (
	"testing"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/delivery"
	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_StringAndParse(t *testing.T) {
	for _, s := range delivery.AllStatuses() {
		parsed, err := delivery.ParseStatus(s.String())

		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	_, err := delivery.ParseStatus("SHIPPED")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	assert.Equal(t, "UNKNOWN", delivery.Status(42).String())
}

func TestStatus_Validate(t *testing.T) {
	require.Error(t, delivery.Unknown.Validate())
	require.Error(t, delivery.Status(99).Validate())
	for _, s := range delivery.AllStatuses() {
		require.NoError(t, s.Validate())
	}
}

func TestStatus_Next_ForwardEdges(t *testing.T) {
	tests := []struct {
		from   delivery.Status
		action delivery.Action
		to     delivery.Status
	}{
		{delivery.PendingAuthorization, delivery.Authorize, delivery.Authorized},
		{delivery.Authorized, delivery.ReceiveInWarehouse, delivery.ReceivedWarehouse},
		{delivery.ReceivedWarehouse, delivery.StartPreparation, delivery.InPreparation},
		{delivery.InPreparation, delivery.MarkReady, delivery.Ready},
		{delivery.Ready, delivery.ConfirmDelivery, delivery.Delivered},
	}

	for _, tt := range tests {
		t.Run(tt.action.String(), func(t *testing.T) {
			next, err := tt.from.Next(tt.action)

			require.NoError(t, err)
			assert.Equal(t, tt.to, next)
		})
	}
}

func TestStatus_Next_OnlyOneSourcePerAction(t *testing.T) {
	forward := []delivery.Action{
		delivery.Authorize,
		delivery.ReceiveInWarehouse,
		delivery.StartPreparation,
		delivery.MarkReady,
		delivery.ConfirmDelivery,
	}

	for _, action := range forward {
		source, ok := action.Source()
		require.True(t, ok)

		for _, s := range delivery.AllStatuses() {
			if s == source {
				continue
			}
			_, err := s.Next(action)

			require.ErrorIs(t, err, errs.ErrInvalidTransition, "%s from %s", action, s)
		}
	}
}

func TestStatus_Cancel(t *testing.T) {
	for _, s := range delivery.AllStatuses() {
		next, err := s.Next(delivery.Cancel)
		if s.IsTerminal() {
			var transitionErr *errs.InvalidTransitionError
			require.ErrorAs(t, err, &transitionErr)
			assert.Equal(t, "cancel", transitionErr.Action)
			assert.Equal(t, s.String(), transitionErr.From)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, delivery.Cancelled, next)
	}
}

func TestStatus_CreateHasNoSource(t *testing.T) {
	for _, s := range delivery.AllStatuses() {
		require.ErrorIs(t, s.CanPerform(delivery.Create), errs.ErrInvalidTransition)
	}
	assert.Equal(t, delivery.PendingAuthorization, delivery.Create.Target())
}

func TestStatus_Reached(t *testing.T) {
	assert.True(t, delivery.Delivered.Reached(delivery.Ready))
	assert.True(t, delivery.Ready.Reached(delivery.Ready))
	assert.False(t, delivery.InPreparation.Reached(delivery.Ready))
	assert.False(t, delivery.Cancelled.Reached(delivery.Authorized))
	assert.True(t, delivery.Cancelled.Reached(delivery.Cancelled))
}

func TestAction_Validate(t *testing.T) {
	require.Error(t, delivery.UnknownAction.Validate())
	for _, a := range []delivery.Action{
		delivery.Create, delivery.Authorize, delivery.ReceiveInWarehouse, delivery.StartPreparation,
		delivery.MarkReady, delivery.ConfirmDelivery, delivery.Cancel,
	} {
		require.NoError(t, a.Validate())
	}
	require.Error(t, (delivery.Cancel + 1).Validate())
}
