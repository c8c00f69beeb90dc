package services_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/velmart/velmart-api/models"
	"github.com/velmart/velmart-api/services"
	"github.com/velmart/velmart-api/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var adminActor = models.Actor{UserID: 1, Role: models.RoleAdmin}

func newTestCore(t *testing.T) *services.Core {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a pooled second connection to :memory: would see an empty database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.OrderItem{},
		&models.TrackingEvent{},
		&models.Delivery{},
	))

	return services.NewCore(db, nil)
}

func createUser(t *testing.T, c *services.Core, role string) models.User {
	t.Helper()

	user := models.User{
		Fullname:         gofakeit.Name(),
		Username:         gofakeit.Username(),
		Email:            gofakeit.Email(),
		Phone:            gofakeit.Phone(),
		Role:             role,
		AccountActivated: true,
	}
	require.NoError(t, c.DB.Create(&user).Error)
	return user
}

// createOrder seeds an order the way checkout completion does: PENDING with
// its initial tracking event.
func createOrder(t *testing.T, c *services.Core, userID int) models.Order {
	t.Helper()

	order := models.Order{
		OrderNumber: utils.GenerateOrderNumber(),
		UserID:      userID,
		Status:      services.StatusPending,
		Total:       gofakeit.Price(10, 500),
	}
	require.NoError(t, c.DB.Create(&order).Error)

	item := models.OrderItem{
		OrderID:   int(order.ID),
		ProductId: gofakeit.Number(1, 1000),
		Name:      gofakeit.ProductName(),
		Price:     gofakeit.Price(5, 100),
		Quantity:  gofakeit.Number(1, 3),
	}
	require.NoError(t, c.DB.Create(&item).Error)

	_, err := c.Log.Append(nil, int(order.ID), services.StatusPending, "Order received", nil)
	require.NoError(t, err)

	return order
}

func advanceTo(t *testing.T, c *services.Core, orderID int, statuses ...string) {
	t.Helper()
	for _, status := range statuses {
		_, err := c.Machine.Transition(orderID, status, adminActor, "", nil)
		require.NoError(t, err)
	}
}

func reloadOrder(t *testing.T, c *services.Core, orderID int) models.Order {
	t.Helper()
	var order models.Order
	require.NoError(t, c.DB.First(&order, orderID).Error)
	return order
}

func reloadDelivery(t *testing.T, c *services.Core, orderID int) models.Delivery {
	t.Helper()
	var delivery models.Delivery
	require.NoError(t, c.DB.Where("order_id = ?", orderID).First(&delivery).Error)
	return delivery
}
