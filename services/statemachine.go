package services

import (
	"errors"
	"fmt"

	"github.com/velmart/velmart-api/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OrderStateMachine owns every write to Order.Status and every
// TrackingEvent append. Transitions move one step forward at a time, or
// directly to CANCELLED from any non-terminal state.
type OrderStateMachine struct {
	db      *gorm.DB
	log     *EventLog
	tracker *DeliveryTracker
}

func NewOrderStateMachine(db *gorm.DB, log *EventLog, tracker *DeliveryTracker) *OrderStateMachine {
	return &OrderStateMachine{db: db, log: log, tracker: tracker}
}

// Transition advances an order on behalf of an ops actor. It reads the
// current status and applies a compare-and-set against it, so a concurrent
// transition on the same order makes exactly one caller fail.
func (m *OrderStateMachine) Transition(orderID int, target string, actor models.Actor, message string, metadata datatypes.JSON) (models.TrackingEvent, error) {
	if !actor.IsAdmin() {
		return models.TrackingEvent{}, fmt.Errorf("%w: only admins may change order status", ErrUnauthorized)
	}

	var order models.Order
	if err := m.db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.TrackingEvent{}, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return models.TrackingEvent{}, err
	}

	return m.TransitionFrom(orderID, order.Status, target, message, metadata)
}

// TransitionFrom applies a transition under the precondition that the order
// is still in the expected status. Callers are responsible for
// authorization. Returns Conflict when another writer moved the order first;
// the caller may re-read and retry against the new state.
func (m *OrderStateMachine) TransitionFrom(orderID int, expected, target, message string, metadata datatypes.JSON) (models.TrackingEvent, error) {
	if !IsValidStatus(target) {
		return models.TrackingEvent{}, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, target)
	}
	if IsTerminalStatus(expected) {
		return models.TrackingEvent{}, fmt.Errorf("%w: order is already %s", ErrInvalidTransition, expected)
	}
	if target != StatusCancelled {
		next, ok := NextStatus(expected)
		if !ok || next != target {
			return models.TrackingEvent{}, fmt.Errorf("%w: cannot move from %s to %s", ErrInvalidTransition, expected, target)
		}
	}

	if message == "" {
		message = StatusLabel(target)
	}

	var event models.TrackingEvent
	err := m.db.Transaction(func(tx *gorm.DB) error {
		// Guarded update serializes concurrent transitions per order.
		result := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, expected).
			Update("status", target)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.Order{}).Where("id = ?", orderID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
			}
			return fmt.Errorf("%w: order %d is no longer %s", ErrConflict, orderID, expected)
		}

		appended, err := m.log.Append(tx, orderID, target, message, metadata)
		if err != nil {
			return err
		}
		event = appended

		return m.tracker.applyOrderStatus(tx, orderID, target)
	})
	if err != nil {
		return models.TrackingEvent{}, err
	}
	return event, nil
}

// AdvanceFromDelivery records an automated transition driven by the
// delivery lifecycle (courier picked up, courier completed). It skips the
// ops role check but enforces the same ordering rules.
func (m *OrderStateMachine) AdvanceFromDelivery(orderID int, target, message string, metadata datatypes.JSON) (models.TrackingEvent, error) {
	var order models.Order
	if err := m.db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.TrackingEvent{}, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return models.TrackingEvent{}, err
	}
	return m.TransitionFrom(orderID, order.Status, target, message, metadata)
}
