package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func GetHome(ctx *gin.Context) {
	message := `Welcome to Velmart API ❤️. Enjoy seamless interaction with this API.

The following are the endpoints for this API:

AUTH
- POST "/auth/signup" - Create user account
- POST "/auth/login" - Access user account
- POST "/auth/verify-email/:activationToken" - Activate user account
- POST "/auth/forgot-password" - Request password reset
- POST "/auth/reset-password/:resetToken" - Reset user password

ORDER
- POST "/order" - Create a new order (checkout completion)
- GET "/order" - Retrieve all orders (admin)
- GET "/order/:orderId" - Get order by ID
- GET "/order/undelivered-count" - Count undelivered orders (admin)
- POST "/order/:orderId/assign-driver" - Assign a courier (admin)

TRACKING
- GET "/tracking/order/:orderId" - Full tracking view (authenticated)
- GET "/tracking/order-by-number/:orderNumber" - Guest tracking lookup
- GET "/tracking/my-orders" - My orders with latest event
- POST "/tracking/add-event" - Advance order status (admin)
- PUT "/tracking/update-location" - Courier GPS push (driver/admin)

DELIVERY
- GET "/delivery/my-deliveries" - Deliveries assigned to me (driver)
- GET "/delivery/stats/overview" - My delivery counters (driver)
- GET "/delivery/:deliveryId" - Delivery details
- PUT "/delivery/:deliveryId/status" - Advance delivery status
- PUT "/delivery/:deliveryId/location" - Courier GPS push
- POST "/delivery/:deliveryId/complete" - Finish a delivery`

	ctx.JSON(http.StatusOK, gin.H{
		"message": message,
	})
}
