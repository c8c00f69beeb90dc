package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/velmart/velmart-api/controllers"
	"github.com/velmart/velmart-api/middlewares"
	"github.com/velmart/velmart-api/models"
)

func DeliveryRoutes(server *gin.Engine) {
	delivery := server.Group("/delivery", middlewares.RequireAuth())
	{
		delivery.GET("/my-deliveries",
			middlewares.RequireAnyRole(models.RoleDriver), controllers.GetMyDeliveries)
		delivery.GET("/stats/overview",
			middlewares.RequireAnyRole(models.RoleDriver), controllers.GetDeliveryStats)

		driverOrAdmin := middlewares.RequireAnyRole(models.RoleDriver, models.RoleAdmin, models.RoleSuperAdmin)
		delivery.GET("/:deliveryId", driverOrAdmin, controllers.GetDelivery)
		delivery.PUT("/:deliveryId/status", driverOrAdmin, controllers.UpdateDeliveryStatus)
		delivery.PUT("/:deliveryId/location", driverOrAdmin, controllers.UpdateDeliveryLocation)
		delivery.POST("/:deliveryId/complete", driverOrAdmin, controllers.CompleteDelivery)
	}
}
