package services_test

import (
	"testing"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/actor"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/delivery"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRouter_NextResponsibleRole(t *testing.T) {
	router := services.NewNotificationRouter()

	tests := []struct {
		status delivery.Status
		role   actor.Capability
		ok     bool
	}{
		{delivery.PendingAuthorization, actor.Authorizer, true},
		{delivery.Authorized, actor.Warehouse, true},
		{delivery.ReceivedWarehouse, actor.Warehouse, true},
		{delivery.InPreparation, actor.Warehouse, true},
		{delivery.Ready, actor.Dispatcher, true},
		{delivery.Delivered, 0, false},
		{delivery.Cancelled, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			role, ok := router.NextResponsibleRole(tt.status)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.role, role)
		})
	}
}

func TestNotificationRouter_WorkItemFor(t *testing.T) {
	router := services.NewNotificationRouter()
	d := productDelivery(t, kernel.NewUUID(), kernel.NewUUID(), 2)

	available, ok := router.WorkItemFor(d, now).(delivery.WorkItemAvailable)
	require.True(t, ok)
	assert.Equal(t, "AUTHORIZER", available.Role)
	assert.Equal(t, d.Code(), available.Code)

	_, _, err := d.Cancel(kernel.NewUUID(), "request withdrawn", now)
	require.NoError(t, err)

	closed, ok := router.WorkItemFor(d, now).(delivery.WorkItemClosed)
	require.True(t, ok)
	assert.Equal(t, "CANCELLED", closed.Status)
}

func TestNotificationRouter_StatusesFor(t *testing.T) {
	router := services.NewNotificationRouter()

	assert.Equal(t,
		[]delivery.Status{delivery.Authorized, delivery.ReceivedWarehouse, delivery.InPreparation},
		router.StatusesFor(actor.Warehouse))
	assert.Equal(t, []delivery.Status{delivery.Ready}, router.StatusesFor(actor.Dispatcher))
	assert.Len(t, router.StatusesFor(actor.Admin), 5)
}
