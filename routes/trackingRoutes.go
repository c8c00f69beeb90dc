package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/velmart/velmart-api/controllers"
	"github.com/velmart/velmart-api/middlewares"
)

func TrackingRoutes(server *gin.Engine) {
	tracking := server.Group("/tracking")
	{
		// Guest lookup by order number needs no identity.
		tracking.GET("/order-by-number/:orderNumber", controllers.GetTrackingByOrderNumber)

		authed := tracking.Group("", middlewares.RequireAuth())
		{
			authed.GET("/order/:orderId", controllers.GetOrderTracking)
			authed.GET("/my-orders", controllers.GetMyOrders)
			authed.POST("/add-event", middlewares.RequireAdmin(), controllers.AddTrackingEvent)
			authed.PUT("/update-location", controllers.UpdateDriverLocation)
		}
	}
}
