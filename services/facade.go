package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/velmart/velmart-api/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TrackingFacade is the role-aware read side. Customers see their own
// orders, drivers the deliveries assigned to them, admins everything.
type TrackingFacade struct {
	db  *gorm.DB
	log *EventLog
}

func NewTrackingFacade(db *gorm.DB, log *EventLog) *TrackingFacade {
	return &TrackingFacade{db: db, log: log}
}

type LocationPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type DriverView struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type CustomerView struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type ItemView struct {
	ID          int     `json:"id"`
	ProductName string  `json:"productName"`
	VariantName string  `json:"variantName,omitempty"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

type OrderView struct {
	ID              int            `json:"id"`
	OrderNumber     string         `json:"orderNumber"`
	Status          string         `json:"status"`
	StatusLabel     string         `json:"statusLabel"`
	Progress        int            `json:"progress"`
	AllowedNext     []string       `json:"allowedNext,omitempty"`
	Total           float64        `json:"total"`
	ShippingAddress datatypes.JSON `json:"shippingAddress"`
	CreatedAt       time.Time      `json:"createdAt"`
	Items           []ItemView     `json:"items"`
}

type DeliveryView struct {
	ID              int            `json:"id"`
	Status          string         `json:"status"`
	Driver          *DriverView    `json:"driver"`
	EstimatedTime   *time.Time     `json:"estimatedTime"`
	ActualTime      *time.Time     `json:"actualTime"`
	CurrentLocation *LocationPoint `json:"currentLocation"`
	Distance        *float64       `json:"distance"`
	Notes           string         `json:"notes,omitempty"`
}

type TrackingDetail struct {
	Order    OrderView              `json:"order"`
	Tracking []models.TrackingEvent `json:"tracking"`
	Delivery *DeliveryView          `json:"delivery"`
	Customer *CustomerView          `json:"customer,omitempty"`
}

type DeliverySnapshot struct {
	ID              int            `json:"id"`
	Status          string         `json:"status"`
	EstimatedTime   *time.Time     `json:"estimatedTime"`
	CurrentLocation *LocationPoint `json:"currentLocation"`
}

// OrderSummary carries the latest event only, never the full history, so
// list views stay O(1) per order.
type OrderSummary struct {
	ID             int                   `json:"id"`
	OrderNumber    string                `json:"orderNumber"`
	Status         string                `json:"status"`
	StatusLabel    string                `json:"statusLabel"`
	Progress       int                   `json:"progress"`
	Total          float64               `json:"total"`
	ItemCount      int                   `json:"itemCount"`
	CreatedAt      time.Time             `json:"createdAt"`
	LatestTracking *models.TrackingEvent `json:"latestTracking"`
	Delivery       *DeliverySnapshot     `json:"delivery"`
}

// GetOrderTracking returns the order, its full event sequence and its
// delivery. Customer contact details are included only for admins and the
// assigned driver.
func (f *TrackingFacade) GetOrderTracking(orderID int, actor models.Actor) (TrackingDetail, error) {
	order, err := f.loadOrder("id = ?", orderID)
	if err != nil {
		return TrackingDetail{}, err
	}

	delivery, err := f.loadDelivery(int(order.ID))
	if err != nil {
		return TrackingDetail{}, err
	}

	if actor.Role == models.RoleCustomer && actor.UserID != order.UserID {
		return TrackingDetail{}, fmt.Errorf("%w: order belongs to another customer", ErrForbidden)
	}
	isAssignedDriver := actor.Role == models.RoleDriver &&
		delivery != nil && delivery.DriverID != nil && *delivery.DriverID == actor.UserID
	if actor.Role == models.RoleDriver && !isAssignedDriver {
		return TrackingDetail{}, fmt.Errorf("%w: delivery is not assigned to this driver", ErrForbidden)
	}

	return f.buildDetail(order, delivery, actor.IsAdmin() || isAssignedDriver)
}

// GetTrackingByOrderNumber serves guest order lookup. No identity is
// required and no contact details are exposed.
func (f *TrackingFacade) GetTrackingByOrderNumber(orderNumber string) (TrackingDetail, error) {
	order, err := f.loadOrder("order_number = ?", orderNumber)
	if err != nil {
		return TrackingDetail{}, err
	}
	delivery, err := f.loadDelivery(int(order.ID))
	if err != nil {
		return TrackingDetail{}, err
	}
	return f.buildDetail(order, delivery, false)
}

// ListMyOrders returns summary projections of the caller's own orders,
// newest first.
func (f *TrackingFacade) ListMyOrders(userID int) ([]OrderSummary, error) {
	var orders []models.Order
	result := f.db.
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(20).
		Find(&orders)
	if result.Error != nil {
		return nil, result.Error
	}

	summaries := make([]OrderSummary, 0, len(orders))
	for _, order := range orders {
		latest, err := f.log.LatestForOrder(int(order.ID))
		if err != nil {
			return nil, err
		}
		delivery, err := f.loadDelivery(int(order.ID))
		if err != nil {
			return nil, err
		}

		var snapshot *DeliverySnapshot
		if delivery != nil {
			snapshot = &DeliverySnapshot{
				ID:              int(delivery.ID),
				Status:          delivery.Status,
				EstimatedTime:   delivery.EstimatedTime,
				CurrentLocation: locationOf(*delivery),
			}
		}

		summaries = append(summaries, OrderSummary{
			ID:             int(order.ID),
			OrderNumber:    order.OrderNumber,
			Status:         order.Status,
			StatusLabel:    StatusLabel(order.Status),
			Progress:       StatusProgress(order.Status),
			Total:          order.Total,
			ItemCount:      len(order.Items),
			CreatedAt:      order.CreatedAt,
			LatestTracking: latest,
			Delivery:       snapshot,
		})
	}
	return summaries, nil
}

func (f *TrackingFacade) buildDetail(order models.Order, delivery *models.Delivery, includeContact bool) (TrackingDetail, error) {
	events, err := f.log.ListForOrder(int(order.ID))
	if err != nil {
		return TrackingDetail{}, err
	}

	detail := TrackingDetail{
		Order: OrderView{
			ID:              int(order.ID),
			OrderNumber:     order.OrderNumber,
			Status:          order.Status,
			StatusLabel:     StatusLabel(order.Status),
			Progress:        StatusProgress(order.Status),
			AllowedNext:     AllowedNext(order.Status),
			Total:           order.Total,
			ShippingAddress: order.ShippingAddress,
			CreatedAt:       order.CreatedAt,
			Items: lo.Map(order.Items, func(item models.OrderItem, _ int) ItemView {
				return ItemView{
					ID:          int(item.ID),
					ProductName: item.Name,
					VariantName: item.VariantName,
					Quantity:    item.Quantity,
					Price:       item.Price,
				}
			}),
		},
		Tracking: events,
	}

	if delivery != nil {
		view := DeliveryView{
			ID:              int(delivery.ID),
			Status:          delivery.Status,
			EstimatedTime:   delivery.EstimatedTime,
			ActualTime:      delivery.ActualTime,
			CurrentLocation: locationOf(*delivery),
			Distance:        delivery.Distance,
			Notes:           delivery.Notes,
		}
		if delivery.DriverID != nil {
			var driver models.User
			if err := f.db.First(&driver, *delivery.DriverID).Error; err == nil {
				view.Driver = &DriverView{ID: int(driver.ID), Name: driver.Fullname, Phone: driver.Phone}
			}
		}
		detail.Delivery = &view
	}

	if includeContact {
		var customer models.User
		if err := f.db.First(&customer, order.UserID).Error; err == nil {
			detail.Customer = &CustomerView{Name: customer.Fullname, Phone: customer.Phone, Email: customer.Email}
		}
	}

	return detail, nil
}

func (f *TrackingFacade) loadOrder(query string, arg any) (models.Order, error) {
	var order models.Order
	err := f.db.Preload("Items").Where(query, arg).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Order{}, fmt.Errorf("%w: order", ErrNotFound)
		}
		return models.Order{}, err
	}
	return order, nil
}

func (f *TrackingFacade) loadDelivery(orderID int) (*models.Delivery, error) {
	var delivery models.Delivery
	err := f.db.Where("order_id = ?", orderID).First(&delivery).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &delivery, nil
}

func locationOf(delivery models.Delivery) *LocationPoint {
	if delivery.CurrentLat == nil || delivery.CurrentLng == nil {
		return nil
	}
	return &LocationPoint{Lat: *delivery.CurrentLat, Lng: *delivery.CurrentLng}
}
