package services_test

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/velmart/velmart-api/models"
	"github.com/velmart/velmart-api/services"
)

func TestGetOrderTrackingOwnership(t *testing.T) {
	c := newTestCore(t)
	owner := createUser(t, c, models.RoleCustomer)
	other := createUser(t, c, models.RoleCustomer)
	order := createOrder(t, c, int(owner.ID))

	_, err := c.Facade.GetOrderTracking(int(order.ID),
		models.Actor{UserID: int(other.ID), Role: models.RoleCustomer})
	require.ErrorIs(t, err, services.ErrForbidden)

	detail, err := c.Facade.GetOrderTracking(int(order.ID),
		models.Actor{UserID: int(owner.ID), Role: models.RoleCustomer})
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, detail.Order.OrderNumber)
	assert.Len(t, detail.Tracking, 1)
	// customers do not get their own contact block echoed back
	assert.Nil(t, detail.Customer)
}

func TestGetOrderTrackingDriverScope(t *testing.T) {
	c := newTestCore(t)
	customer := createUser(t, c, models.RoleCustomer)
	driver := createUser(t, c, models.RoleDriver)
	stranger := createUser(t, c, models.RoleDriver)
	order := createOrder(t, c, int(customer.ID))

	// no delivery yet: drivers have no claim on the order
	_, err := c.Facade.GetOrderTracking(int(order.ID),
		models.Actor{UserID: int(driver.ID), Role: models.RoleDriver})
	require.ErrorIs(t, err, services.ErrForbidden)

	_, err = c.Tracker.AssignDriver(int(order.ID), int(driver.ID))
	require.NoError(t, err)

	detail, err := c.Facade.GetOrderTracking(int(order.ID),
		models.Actor{UserID: int(driver.ID), Role: models.RoleDriver})
	require.NoError(t, err)
	// the assigned driver sees customer contact details
	require.NotNil(t, detail.Customer)
	assert.Equal(t, customer.Phone, detail.Customer.Phone)

	_, err = c.Facade.GetOrderTracking(int(order.ID),
		models.Actor{UserID: int(stranger.ID), Role: models.RoleDriver})
	require.ErrorIs(t, err, services.ErrForbidden)
}

func TestGetOrderTrackingAdminView(t *testing.T) {
	c := newTestCore(t)
	customer := createUser(t, c, models.RoleCustomer)
	driver := createUser(t, c, models.RoleDriver)
	order := createOrder(t, c, int(customer.ID))
	orderID := int(order.ID)

	advanceTo(t, c, orderID, services.StatusConfirmed, services.StatusPreparing, services.StatusReady)
	_, err := c.Tracker.AssignDriver(orderID, int(driver.ID))
	require.NoError(t, err)

	detail, err := c.Facade.GetOrderTracking(orderID, adminActor)
	require.NoError(t, err)

	assert.Equal(t, services.StatusReady, detail.Order.Status)
	assert.Equal(t, 60, detail.Order.Progress)
	assert.Equal(t, []string{services.StatusInTransit, services.StatusCancelled}, detail.Order.AllowedNext)
	assert.Len(t, detail.Tracking, 4)

	require.NotNil(t, detail.Delivery)
	assert.Equal(t, services.DeliveryAssigned, detail.Delivery.Status)
	require.NotNil(t, detail.Delivery.Driver)
	assert.Equal(t, driver.Fullname, detail.Delivery.Driver.Name)
	assert.Nil(t, detail.Delivery.CurrentLocation)

	require.NotNil(t, detail.Customer)
	assert.Equal(t, customer.Email, detail.Customer.Email)
}

func TestGetTrackingByOrderNumber(t *testing.T) {
	c := newTestCore(t)
	customer := createUser(t, c, models.RoleCustomer)
	order := createOrder(t, c, int(customer.ID))

	detail, err := c.Facade.GetTrackingByOrderNumber(order.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, int(order.ID), detail.Order.ID)
	assert.Equal(t, 10, detail.Order.Progress)
	// guest lookup never exposes contact details
	assert.Nil(t, detail.Customer)

	_, err = c.Facade.GetTrackingByOrderNumber("VM-DOESNOTEXIST")
	require.ErrorIs(t, err, services.ErrNotFound)
}

func TestListMyOrdersIsolation(t *testing.T) {
	c := newTestCore(t)
	userA := createUser(t, c, models.RoleCustomer)
	userB := createUser(t, c, models.RoleCustomer)

	orderA1 := createOrder(t, c, int(userA.ID))
	orderA2 := createOrder(t, c, int(userA.ID))
	orderB := createOrder(t, c, int(userB.ID))

	summaries, err := c.Facade.ListMyOrders(int(userA.ID))
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	ids := lo.Map(summaries, func(s services.OrderSummary, _ int) int { return s.ID })
	assert.ElementsMatch(t, []int{int(orderA1.ID), int(orderA2.ID)}, ids)
	assert.NotContains(t, ids, int(orderB.ID))
}

func TestListMyOrdersSummaryShape(t *testing.T) {
	c := newTestCore(t)
	customer := createUser(t, c, models.RoleCustomer)
	driver := createUser(t, c, models.RoleDriver)
	order := createOrder(t, c, int(customer.ID))
	orderID := int(order.ID)

	advanceTo(t, c, orderID, services.StatusConfirmed, services.StatusPreparing, services.StatusReady)
	_, err := c.Tracker.AssignDriver(orderID, int(driver.ID))
	require.NoError(t, err)
	advanceTo(t, c, orderID, services.StatusInTransit)

	summaries, err := c.Facade.ListMyOrders(int(customer.ID))
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	summary := summaries[0]
	assert.Equal(t, services.StatusInTransit, summary.Status)
	assert.Equal(t, 80, summary.Progress)
	assert.Equal(t, "On the way", summary.StatusLabel)
	assert.Equal(t, 1, summary.ItemCount)

	// only the single most recent event, never the full history
	require.NotNil(t, summary.LatestTracking)
	assert.Equal(t, services.StatusInTransit, summary.LatestTracking.Status)

	require.NotNil(t, summary.Delivery)
	assert.Equal(t, services.DeliveryEnRoute, summary.Delivery.Status)
}
