package initializers

import (
	"log"

	"github.com/velmart/velmart-api/models"
)

func SyncDatabase() {
	DB.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.OrderItem{},
		&models.TrackingEvent{},
		&models.Delivery{},
	)
	log.Println("Database synced successfully.")
}
