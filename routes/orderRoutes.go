package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/velmart/velmart-api/controllers"
	"github.com/velmart/velmart-api/middlewares"
)

func OrderRoutes(server *gin.Engine) {
	order := server.Group("/order", middlewares.RequireAuth())
	{
		order.POST("", controllers.CreateOrder)
		order.GET("", middlewares.RequireAdmin(), controllers.GetOrders)
		order.GET("/undelivered-count", middlewares.RequireAdmin(), controllers.GetUndeliveredOrders)
		order.GET("/:orderId", controllers.GetOrderById)
		order.POST("/:orderId/assign-driver", middlewares.RequireAdmin(), controllers.AssignDriver)
	}
}
