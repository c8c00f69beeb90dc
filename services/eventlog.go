package services

import (
	"errors"
	"fmt"

	"github.com/velmart/velmart-api/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EventLog is the append-only ledger of order status changes. There is no
// update or delete on purpose: audit integrity depends on it.
type EventLog struct {
	db *gorm.DB
}

func NewEventLog(db *gorm.DB) *EventLog {
	return &EventLog{db: db}
}

// Append writes one TrackingEvent. Pass the surrounding transaction when
// the append must be atomic with an order-status update.
func (l *EventLog) Append(tx *gorm.DB, orderID int, status, message string, metadata datatypes.JSON) (models.TrackingEvent, error) {
	if tx == nil {
		tx = l.db
	}
	event := models.TrackingEvent{
		OrderID:  orderID,
		Status:   status,
		Message:  message,
		Metadata: metadata,
	}
	if err := tx.Create(&event).Error; err != nil {
		return models.TrackingEvent{}, fmt.Errorf("append tracking event: %w", err)
	}
	return event, nil
}

// ListForOrder returns the full event sequence for an order in forward
// time order. Callers may re-read from the start at any time; no cursor
// state is kept.
func (l *EventLog) ListForOrder(orderID int) ([]models.TrackingEvent, error) {
	var events []models.TrackingEvent
	result := l.db.
		Where("order_id = ?", orderID).
		Order("created_at asc, id asc").
		Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}
	return events, nil
}

// LatestForOrder returns the most recent event for an order, or nil if the
// order has no events yet.
func (l *EventLog) LatestForOrder(orderID int) (*models.TrackingEvent, error) {
	var event models.TrackingEvent
	result := l.db.
		Where("order_id = ?", orderID).
		Order("created_at desc, id desc").
		First(&event)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &event, nil
}

// CountForOrder reports how many events an order has accumulated.
func (l *EventLog) CountForOrder(orderID int) (int64, error) {
	var count int64
	result := l.db.Model(&models.TrackingEvent{}).Where("order_id = ?", orderID).Count(&count)
	return count, result.Error
}
