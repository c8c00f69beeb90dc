package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/velmart/velmart-api/initializers"
	"github.com/velmart/velmart-api/models"
	"github.com/velmart/velmart-api/services"
	"gorm.io/datatypes"
)

func loadDeliveryForActor(ctx *gin.Context, actor models.Actor) (models.Delivery, bool) {
	deliveryId, err := strconv.Atoi(ctx.Param("deliveryId"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse deliveryId")
		return models.Delivery{}, false
	}

	var delivery models.Delivery
	if result := initializers.DB.First(&delivery, deliveryId); result.Error != nil {
		handleServiceError(ctx, services.ErrNotFound)
		return models.Delivery{}, false
	}

	assigned := delivery.DriverID != nil && *delivery.DriverID == actor.UserID
	if !actor.IsAdmin() && !(actor.Role == models.RoleDriver && assigned) {
		sendErrorResponse(ctx, http.StatusForbidden, "Access denied")
		return models.Delivery{}, false
	}
	return delivery, true
}

// GetMyDeliveries lists the deliveries assigned to the authenticated
// driver, newest first, optionally filtered by delivery status.
func GetMyDeliveries(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	query := initializers.DB.Where("driver_id = ?", actor.UserID)
	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var deliveries []models.Delivery
	if result := query.Order("created_at desc").Find(&deliveries); result.Error != nil {
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch deliveries")
		return
	}

	items := make([]gin.H, 0, len(deliveries))
	for _, delivery := range deliveries {
		item := gin.H{
			"id":            delivery.ID,
			"status":        delivery.Status,
			"estimatedTime": delivery.EstimatedTime,
			"actualTime":    delivery.ActualTime,
			"distance":      delivery.Distance,
			"notes":         delivery.Notes,
			"createdAt":     delivery.CreatedAt,
		}
		if delivery.CurrentLat != nil && delivery.CurrentLng != nil {
			item["currentLocation"] = gin.H{"lat": delivery.CurrentLat, "lng": delivery.CurrentLng}
		}

		var order models.Order
		if err := initializers.DB.Preload("Items").First(&order, delivery.OrderID).Error; err == nil {
			orderView := gin.H{
				"id":              order.ID,
				"orderNumber":     order.OrderNumber,
				"status":          order.Status,
				"total":           order.Total,
				"shippingAddress": order.ShippingAddress,
				"items":           order.Items,
			}
			var customer models.User
			if err := initializers.DB.First(&customer, order.UserID).Error; err == nil {
				orderView["customer"] = gin.H{
					"id":    customer.ID,
					"name":  customer.Fullname,
					"phone": customer.Phone,
					"email": customer.Email,
				}
			}
			item["order"] = orderView
		}
		items = append(items, item)
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"data": items})
}

// GetDelivery returns one delivery with its full order tracking view.
func GetDelivery(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	delivery, ok := loadDeliveryForActor(ctx, actor)
	if !ok {
		return
	}

	detail, err := core().Facade.GetOrderTracking(delivery.OrderID, actor)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"data": detail})
}

// UpdateDeliveryStatus lets the assigned driver advance the delivery
// sub-status. Picking up a READY order pulls it to IN_TRANSIT through the
// state machine so the event history stays complete.
func UpdateDeliveryStatus(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	deliveryId, err := strconv.Atoi(ctx.Param("deliveryId"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse deliveryId")
		return
	}

	var body struct {
		Status string `json:"status" binding:"required"`
		Notes  string `json:"notes"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "status is required")
		return
	}

	if body.Status == services.DeliveryCompleted {
		sendErrorResponse(ctx, http.StatusBadRequest, "Use the complete endpoint to finish a delivery")
		return
	}

	delivery, err := core().Tracker.UpdateStatus(deliveryId, actor, body.Status, body.Notes)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	var order models.Order
	if err := initializers.DB.First(&order, delivery.OrderID).Error; err == nil {
		if body.Status == services.DeliveryEnRoute && order.Status == services.StatusReady {
			if _, err := core().Machine.AdvanceFromDelivery(delivery.OrderID, services.StatusInTransit, "Courier picked up the order", nil); err != nil {
				handleServiceError(ctx, err)
				return
			}
			order.Status = services.StatusInTransit
		}
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"delivery":    delivery,
		"orderStatus": order.Status,
	})
}

// UpdateDeliveryLocation records a GPS push for one delivery.
func UpdateDeliveryLocation(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	deliveryId, err := strconv.Atoi(ctx.Param("deliveryId"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse deliveryId")
		return
	}

	var body struct {
		Latitude  *float64 `json:"latitude" binding:"required"`
		Longitude *float64 `json:"longitude" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Latitude and longitude are required")
		return
	}

	delivery, err := core().Tracker.PushLocation(deliveryId, actor, *body.Latitude, *body.Longitude)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"deliveryId": delivery.ID,
		"location":   gin.H{"lat": delivery.CurrentLat, "lng": delivery.CurrentLng},
	})
}

// CompleteDelivery finishes a delivery. The terminal DELIVERED transition
// is automated through the state machine, which also finalizes the
// delivery record atomically with the event append.
func CompleteDelivery(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	delivery, ok := loadDeliveryForActor(ctx, actor)
	if !ok {
		return
	}

	if services.IsTerminalDeliveryStatus(delivery.Status) {
		handleServiceError(ctx, services.ErrInvalidState)
		return
	}

	var body struct {
		Notes    string `json:"notes"`
		PhotoUrl string `json:"photoUrl"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil && err.Error() != "EOF" {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid request body")
		return
	}

	var order models.Order
	if err := initializers.DB.First(&order, delivery.OrderID).Error; err != nil {
		handleServiceError(ctx, services.ErrNotFound)
		return
	}

	if order.Status == services.StatusReady {
		if _, err := core().Machine.AdvanceFromDelivery(delivery.OrderID, services.StatusInTransit, "Courier picked up the order", nil); err != nil {
			handleServiceError(ctx, err)
			return
		}
	}

	metadata, _ := json.Marshal(gin.H{
		"deliveryId": delivery.ID,
		"notes":      body.Notes,
		"photoUrl":   body.PhotoUrl,
	})
	if _, err := core().Machine.AdvanceFromDelivery(delivery.OrderID, services.StatusDelivered, "Order delivered successfully", datatypes.JSON(metadata)); err != nil {
		handleServiceError(ctx, err)
		return
	}

	if body.Notes != "" {
		initializers.DB.Model(&models.Delivery{}).Where("id = ?", delivery.ID).Update("notes", body.Notes)
	}

	var updated models.Delivery
	initializers.DB.First(&updated, delivery.ID)

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"message":  "Delivery completed successfully.",
		"delivery": updated,
	})
}

// GetDeliveryStats returns the authenticated driver's counters.
func GetDeliveryStats(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	var total, completed, pending int64
	if err := initializers.DB.Model(&models.Delivery{}).
		Where("driver_id = ?", actor.UserID).
		Count(&total).Error; err != nil {
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to load stats")
		return
	}
	initializers.DB.Model(&models.Delivery{}).
		Where("driver_id = ? AND status = ?", actor.UserID, services.DeliveryCompleted).
		Count(&completed)
	initializers.DB.Model(&models.Delivery{}).
		Where("driver_id = ? AND status IN ?", actor.UserID,
			[]string{services.DeliveryAssigned, services.DeliveryEnRoute, services.DeliveryArrived}).
		Count(&pending)

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"total":     total,
		"completed": completed,
		"pending":   pending,
	})
}
