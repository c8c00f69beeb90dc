package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/velmart/velmart-api/models"
	"github.com/velmart/velmart-api/services"
)

func TestAssignDriver(t *testing.T) {
	c := newTestCore(t)
	customer := createUser(t, c, models.RoleCustomer)
	driver := createUser(t, c, models.RoleDriver)
	otherDriver := createUser(t, c, models.RoleDriver)

	t.Run("before READY creates the delivery", func(t *testing.T) {
		order := createOrder(t, c, int(customer.ID))
		delivery, err := c.Tracker.AssignDriver(int(order.ID), int(driver.ID))
		require.NoError(t, err)
		require.NotNil(t, delivery.DriverID)
		assert.Equal(t, int(driver.ID), *delivery.DriverID)
		assert.Equal(t, services.DeliveryAssigned, delivery.Status)
	})

	t.Run("after READY fills the auto-created delivery", func(t *testing.T) {
		order := createOrder(t, c, int(customer.ID))
		advanceTo(t, c, int(order.ID), services.StatusConfirmed, services.StatusPreparing, services.StatusReady)

		existing := reloadDelivery(t, c, int(order.ID))
		assert.Nil(t, existing.DriverID)

		delivery, err := c.Tracker.AssignDriver(int(order.ID), int(driver.ID))
		require.NoError(t, err)
		assert.Equal(t, existing.ID, delivery.ID)
		require.NotNil(t, delivery.DriverID)
		assert.Equal(t, int(driver.ID), *delivery.DriverID)
	})

	t.Run("duplicate assignment conflicts", func(t *testing.T) {
		order := createOrder(t, c, int(customer.ID))
		_, err := c.Tracker.AssignDriver(int(order.ID), int(driver.ID))
		require.NoError(t, err)

		_, err = c.Tracker.AssignDriver(int(order.ID), int(otherDriver.ID))
		require.ErrorIs(t, err, services.ErrConflict)
	})

	t.Run("unknown driver", func(t *testing.T) {
		order := createOrder(t, c, int(customer.ID))
		_, err := c.Tracker.AssignDriver(int(order.ID), 99999)
		require.ErrorIs(t, err, services.ErrNotFound)
	})

	t.Run("non-driver user is not assignable", func(t *testing.T) {
		order := createOrder(t, c, int(customer.ID))
		_, err := c.Tracker.AssignDriver(int(order.ID), int(customer.ID))
		require.ErrorIs(t, err, services.ErrNotFound)
	})

	t.Run("unknown order", func(t *testing.T) {
		_, err := c.Tracker.AssignDriver(99999, int(driver.ID))
		require.ErrorIs(t, err, services.ErrNotFound)
	})

	t.Run("terminal order is not assignable", func(t *testing.T) {
		order := createOrder(t, c, int(customer.ID))
		advanceTo(t, c, int(order.ID), services.StatusCancelled)
		_, err := c.Tracker.AssignDriver(int(order.ID), int(driver.ID))
		require.ErrorIs(t, err, services.ErrConflict)
	})
}

func TestPushLocationAuthorization(t *testing.T) {
	c := newTestCore(t)
	customer := createUser(t, c, models.RoleCustomer)
	driver := createUser(t, c, models.RoleDriver)
	stranger := createUser(t, c, models.RoleDriver)

	order := createOrder(t, c, int(customer.ID))
	delivery, err := c.Tracker.AssignDriver(int(order.ID), int(driver.ID))
	require.NoError(t, err)

	tests := []struct {
		name    string
		actor   models.Actor
		wantErr error
	}{
		{"assigned driver", models.Actor{UserID: int(driver.ID), Role: models.RoleDriver}, nil},
		{"admin", adminActor, nil},
		{"another driver", models.Actor{UserID: int(stranger.ID), Role: models.RoleDriver}, services.ErrUnauthorized},
		{"customer", models.Actor{UserID: int(customer.ID), Role: models.RoleCustomer}, services.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Tracker.PushLocation(int(delivery.ID), tt.actor, -1.29, 36.82)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestPushLocationLastWriteWins(t *testing.T) {
	c := newTestCore(t)
	customer := createUser(t, c, models.RoleCustomer)
	driver := createUser(t, c, models.RoleDriver)
	driverActor := models.Actor{UserID: int(driver.ID), Role: models.RoleDriver}

	order := createOrder(t, c, int(customer.ID))
	delivery, err := c.Tracker.AssignDriver(int(order.ID), int(driver.ID))
	require.NoError(t, err)

	_, err = c.Tracker.PushLocation(int(delivery.ID), driverActor, -1.30, 36.80)
	require.NoError(t, err)
	_, err = c.Tracker.PushLocation(int(delivery.ID), driverActor, -1.28, 36.83)
	require.NoError(t, err)

	current := reloadDelivery(t, c, int(order.ID))
	require.NotNil(t, current.CurrentLat)
	require.NotNil(t, current.CurrentLng)
	assert.InDelta(t, -1.28, *current.CurrentLat, 1e-9)
	assert.InDelta(t, 36.83, *current.CurrentLng, 1e-9)
}

func TestPushLocationOnTerminalDelivery(t *testing.T) {
	c := newTestCore(t)
	customer := createUser(t, c, models.RoleCustomer)
	driver := createUser(t, c, models.RoleDriver)
	driverActor := models.Actor{UserID: int(driver.ID), Role: models.RoleDriver}

	order := createOrder(t, c, int(customer.ID))
	delivery, err := c.Tracker.AssignDriver(int(order.ID), int(driver.ID))
	require.NoError(t, err)
	advanceTo(t, c, int(order.ID),
		services.StatusConfirmed, services.StatusPreparing, services.StatusReady,
		services.StatusInTransit, services.StatusDelivered)

	_, err = c.Tracker.PushLocation(int(delivery.ID), driverActor, -1.29, 36.82)
	require.ErrorIs(t, err, services.ErrInvalidState)
	_, err = c.Tracker.PushLocation(int(delivery.ID), adminActor, -1.29, 36.82)
	require.ErrorIs(t, err, services.ErrInvalidState)
}

func TestUpdateDeliveryStatus(t *testing.T) {
	c := newTestCore(t)
	customer := createUser(t, c, models.RoleCustomer)
	driver := createUser(t, c, models.RoleDriver)
	driverActor := models.Actor{UserID: int(driver.ID), Role: models.RoleDriver}

	order := createOrder(t, c, int(customer.ID))
	delivery, err := c.Tracker.AssignDriver(int(order.ID), int(driver.ID))
	require.NoError(t, err)

	updated, err := c.Tracker.UpdateStatus(int(delivery.ID), driverActor, services.DeliveryEnRoute, "On my way")
	require.NoError(t, err)
	assert.Equal(t, services.DeliveryEnRoute, updated.Status)
	assert.Equal(t, "On my way", updated.Notes)

	_, err = c.Tracker.UpdateStatus(int(delivery.ID), driverActor, "TELEPORTED", "")
	require.ErrorIs(t, err, services.ErrInvalidState)

	_, err = c.Tracker.UpdateStatus(int(delivery.ID), driverActor, services.DeliveryFailed, "Address unreachable")
	require.NoError(t, err)

	_, err = c.Tracker.UpdateStatus(int(delivery.ID), driverActor, services.DeliveryEnRoute, "")
	require.ErrorIs(t, err, services.ErrInvalidState)
}

func TestCancelledOrderFailsDelivery(t *testing.T) {
	c := newTestCore(t)
	customer := createUser(t, c, models.RoleCustomer)
	driver := createUser(t, c, models.RoleDriver)

	order := createOrder(t, c, int(customer.ID))
	_, err := c.Tracker.AssignDriver(int(order.ID), int(driver.ID))
	require.NoError(t, err)

	advanceTo(t, c, int(order.ID), services.StatusCancelled)
	assert.Equal(t, services.DeliveryFailed, reloadDelivery(t, c, int(order.ID)).Status)
}

func TestStoreEta(t *testing.T) {
	c := newTestCore(t)
	customer := createUser(t, c, models.RoleCustomer)
	driver := createUser(t, c, models.RoleDriver)

	order := createOrder(t, c, int(customer.ID))
	delivery, err := c.Tracker.AssignDriver(int(order.ID), int(driver.ID))
	require.NoError(t, err)

	arrival := time.Now().Add(25 * time.Minute).Truncate(time.Second)
	require.NoError(t, c.Tracker.StoreEta(int(delivery.ID), arrival, 4.2))

	stored := reloadDelivery(t, c, int(order.ID))
	require.NotNil(t, stored.EstimatedTime)
	require.NotNil(t, stored.Distance)
	assert.InDelta(t, 4.2, *stored.Distance, 1e-9)
	assert.WithinDuration(t, arrival, *stored.EstimatedTime, time.Second)

	require.ErrorIs(t, c.Tracker.StoreEta(99999, arrival, 1.0), services.ErrNotFound)
}
