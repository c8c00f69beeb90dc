package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

// GetOrderTracking returns the full tracking view of one order. The facade
// enforces ownership for customers and assignment for drivers.
func GetOrderTracking(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	orderId, err := strconv.Atoi(ctx.Param("orderId"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse orderId")
		return
	}

	detail, err := core().Facade.GetOrderTracking(orderId, actor)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"data": detail})
}

// GetTrackingByOrderNumber serves guest lookups. No authentication and no
// customer contact details.
func GetTrackingByOrderNumber(ctx *gin.Context) {
	orderNumber := ctx.Param("orderNumber")

	detail, err := core().Facade.GetTrackingByOrderNumber(orderNumber)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"data": detail})
}

// GetMyOrders lists the caller's orders as summaries with the latest event
// only.
func GetMyOrders(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	summaries, err := core().Facade.ListMyOrders(actor.UserID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"data": summaries})
}

// AddTrackingEvent is the ops entry point for advancing an order. Every
// write goes through the state machine; there is no free status write.
func AddTrackingEvent(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	var body struct {
		OrderID  int            `json:"orderId" binding:"required"`
		Status   string         `json:"status" binding:"required"`
		Message  string         `json:"message"`
		Metadata map[string]any `json:"metadata"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid request body")
		return
	}

	var metadata datatypes.JSON
	if body.Metadata != nil {
		raw, err := json.Marshal(body.Metadata)
		if err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, "Invalid metadata")
			return
		}
		metadata = datatypes.JSON(raw)
	}

	event, err := core().Machine.Transition(body.OrderID, body.Status, actor, body.Message, metadata)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"data": event})
}

// UpdateDriverLocation records a courier GPS push. Last write wins; the ETA
// provider is refreshed asynchronously.
func UpdateDriverLocation(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	var body struct {
		DeliveryID int      `json:"deliveryId" binding:"required"`
		Latitude   *float64 `json:"latitude" binding:"required"`
		Longitude  *float64 `json:"longitude" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Latitude and longitude are required")
		return
	}

	delivery, err := core().Tracker.PushLocation(body.DeliveryID, actor, *body.Latitude, *body.Longitude)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"deliveryId": delivery.ID,
		"location": gin.H{
			"lat": delivery.CurrentLat,
			"lng": delivery.CurrentLng,
		},
	})
}
