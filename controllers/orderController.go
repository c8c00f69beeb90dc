package controllers

import (
	"log"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/velmart/velmart-api/initializers"
	"github.com/velmart/velmart-api/models"
	"github.com/velmart/velmart-api/services"
	"github.com/velmart/velmart-api/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CreateOrder is the checkout-completion boundary. The order starts in
// PENDING with its initial tracking event written in the same transaction,
// so the status always matches the event history.
func CreateOrder(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	var body struct {
		Total           float64            `json:"total"`
		ShippingAddress datatypes.JSON     `json:"shippingAddress"`
		Items           []models.OrderItem `json:"items" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		log.Printf("JSON binding error: %v", err)
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid request body")
		return
	}

	order := models.Order{
		OrderNumber:     utils.GenerateOrderNumber(),
		UserID:          actor.UserID,
		Status:          services.StatusPending,
		Total:           body.Total,
		ShippingAddress: body.ShippingAddress,
	}

	err := core().DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		for _, item := range body.Items {
			item.ID = 0
			item.OrderID = int(order.ID)
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}
		_, err := core().Log.Append(tx, int(order.ID), services.StatusPending, "Order received", nil)
		return err
	})
	if err != nil {
		log.Println("Order creation error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to create order")
		return
	}

	sendJSONResponse(ctx, http.StatusCreated, gin.H{
		"message":     "Order created successfully.",
		"orderId":     order.ID,
		"orderNumber": order.OrderNumber,
	})
}

// GetOrders lists all orders for the admin console with pagination, search
// and sort.
func GetOrders(ctx *gin.Context) {
	var orders []models.Order

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "15"))
	offset := (page - 1) * limit

	sortOrder := ctx.DefaultQuery("sort", "desc")
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	query := initializers.DB.Preload("Items")

	if search := ctx.Query("search"); search != "" {
		query = query.Where("order_number LIKE ?", "%"+search+"%")
	}
	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	result := query.Order("created_at " + sortOrder).Limit(limit).Offset(offset).Find(&orders)
	if result.Error != nil {
		log.Println(result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Unable to fetch orders")
		return
	}

	var count int64
	countQuery := initializers.DB.Model(&models.Order{})
	if search := ctx.Query("search"); search != "" {
		countQuery = countQuery.Where("order_number LIKE ?", "%"+search+"%")
	}
	if status := ctx.Query("status"); status != "" {
		countQuery = countQuery.Where("status = ?", status)
	}
	countQuery.Count(&count)

	previousPage := page - 1
	nextPage := page + 1
	totalPages := math.Ceil(float64(count) / float64(limit))

	ctx.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"metadata": gin.H{
			"total":        count,
			"currentPage":  page,
			"limit":        limit,
			"hasPrevPage":  previousPage > 0,
			"hasNextPage":  int(totalPages) > page,
			"previousPage": previousPage,
			"nextPage":     nextPage,
		},
	})
}

// GetOrderById returns one order. Admins see any order; customers only
// their own.
func GetOrderById(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	orderId, err := strconv.Atoi(ctx.Param("orderId"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse orderId")
		return
	}

	var order models.Order
	result := initializers.DB.Preload("Items").First(&order, orderId)
	if result.Error != nil {
		handleServiceError(ctx, services.ErrNotFound)
		return
	}

	if !actor.IsAdmin() && order.UserID != actor.UserID {
		sendErrorResponse(ctx, http.StatusForbidden, "Access denied")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"order": order})
}

// AssignDriver attaches a courier to an order (admin only).
func AssignDriver(ctx *gin.Context) {
	orderId, err := strconv.Atoi(ctx.Param("orderId"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse orderId")
		return
	}

	var body struct {
		DriverID int `json:"driverId" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "driverId is required")
		return
	}

	delivery, err := core().Tracker.AssignDriver(orderId, body.DriverID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"message":  "Driver assigned successfully.",
		"delivery": delivery,
	})
}

// GetUndeliveredOrders reports how many orders have not reached a terminal
// state yet.
func GetUndeliveredOrders(ctx *gin.Context) {
	var count int64

	result := initializers.DB.
		Model(&models.Order{}).
		Where("status NOT IN ?", []string{services.StatusDelivered, services.StatusCancelled}).
		Count(&count)
	if result.Error != nil {
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to count undelivered orders")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"undeliveredOrderCount": count})
}
