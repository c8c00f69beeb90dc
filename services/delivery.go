package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/velmart/velmart-api/models"
	"gorm.io/gorm"
)

// DeliveryTracker owns every write to a Delivery's mutable fields. It only
// acts on notifications from the state machine or on driver pushes that it
// validates against the delivery's current status.
type DeliveryTracker struct {
	db  *gorm.DB
	eta *EtaClient
}

func NewDeliveryTracker(db *gorm.DB, eta *EtaClient) *DeliveryTracker {
	return &DeliveryTracker{db: db, eta: eta}
}

// applyOrderStatus is invoked by the state machine inside the transition
// transaction, so delivery side-effects are durable together with the
// status change and its event.
func (t *DeliveryTracker) applyOrderStatus(tx *gorm.DB, orderID int, status string) error {
	switch status {
	case StatusReady:
		var existing models.Delivery
		err := tx.Where("order_id = ?", orderID).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		delivery := models.Delivery{OrderID: orderID, Status: DeliveryAssigned}
		return tx.Create(&delivery).Error
	case StatusInTransit:
		return tx.Model(&models.Delivery{}).
			Where("order_id = ? AND status NOT IN ?", orderID, []string{DeliveryCompleted, DeliveryFailed}).
			Update("status", DeliveryEnRoute).Error
	case StatusDelivered:
		now := time.Now()
		return tx.Model(&models.Delivery{}).
			Where("order_id = ? AND status NOT IN ?", orderID, []string{DeliveryCompleted, DeliveryFailed}).
			Updates(map[string]any{"status": DeliveryCompleted, "actual_time": now}).Error
	case StatusCancelled:
		return tx.Model(&models.Delivery{}).
			Where("order_id = ? AND status NOT IN ?", orderID, []string{DeliveryCompleted, DeliveryFailed}).
			Update("status", DeliveryFailed).Error
	}
	return nil
}

// AssignDriver attaches a courier to an order's delivery, creating the
// delivery record if the order has not reached READY yet. A non-terminal
// delivery that already has a driver is a duplicate assignment.
func (t *DeliveryTracker) AssignDriver(orderID, driverID int) (models.Delivery, error) {
	var driver models.User
	err := t.db.Where("id = ? AND role = ?", driverID, models.RoleDriver).First(&driver).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Delivery{}, fmt.Errorf("%w: driver %d", ErrNotFound, driverID)
		}
		return models.Delivery{}, err
	}

	var delivery models.Delivery
	err = t.db.Where("order_id = ?", orderID).First(&delivery).Error
	if err == nil {
		if IsTerminalDeliveryStatus(delivery.Status) {
			return models.Delivery{}, fmt.Errorf("%w: delivery for order %d is already %s", ErrConflict, orderID, delivery.Status)
		}
		if delivery.DriverID != nil {
			return models.Delivery{}, fmt.Errorf("%w: delivery for order %d already has a driver", ErrConflict, orderID)
		}
		delivery.DriverID = &driverID
		if saveErr := t.db.Model(&delivery).Update("driver_id", driverID).Error; saveErr != nil {
			return models.Delivery{}, saveErr
		}
		return delivery, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Delivery{}, err
	}

	var order models.Order
	if err := t.db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Delivery{}, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return models.Delivery{}, err
	}
	if IsTerminalStatus(order.Status) {
		return models.Delivery{}, fmt.Errorf("%w: order %d is already %s", ErrConflict, orderID, order.Status)
	}

	delivery = models.Delivery{OrderID: orderID, DriverID: &driverID, Status: DeliveryAssigned}
	if err := t.db.Create(&delivery).Error; err != nil {
		return models.Delivery{}, err
	}
	return delivery, nil
}

// PushLocation overwrites the courier's current position. Last write wins;
// GPS pushes are periodic and stale data self-corrects. The external ETA
// provider is refreshed off the critical path.
func (t *DeliveryTracker) PushLocation(deliveryID int, actor models.Actor, lat, lng float64) (models.Delivery, error) {
	var delivery models.Delivery
	if err := t.db.First(&delivery, deliveryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Delivery{}, fmt.Errorf("%w: delivery %d", ErrNotFound, deliveryID)
		}
		return models.Delivery{}, err
	}

	if !t.canMutate(delivery, actor) {
		return models.Delivery{}, fmt.Errorf("%w: only the assigned driver or an admin may update location", ErrUnauthorized)
	}
	if IsTerminalDeliveryStatus(delivery.Status) {
		return models.Delivery{}, fmt.Errorf("%w: delivery is %s", ErrInvalidState, delivery.Status)
	}

	updates := map[string]any{"current_lat": lat, "current_lng": lng}
	if err := t.db.Model(&delivery).Updates(updates).Error; err != nil {
		return models.Delivery{}, err
	}
	delivery.CurrentLat = &lat
	delivery.CurrentLng = &lng

	if t.eta != nil {
		go t.refreshEta(deliveryID, lat, lng)
	}
	return delivery, nil
}

// UpdateStatus moves the delivery through its own vocabulary on behalf of
// the assigned driver or an admin.
func (t *DeliveryTracker) UpdateStatus(deliveryID int, actor models.Actor, status, notes string) (models.Delivery, error) {
	if !IsValidDeliveryStatus(status) {
		return models.Delivery{}, fmt.Errorf("%w: unknown delivery status %q", ErrInvalidState, status)
	}

	var delivery models.Delivery
	if err := t.db.First(&delivery, deliveryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Delivery{}, fmt.Errorf("%w: delivery %d", ErrNotFound, deliveryID)
		}
		return models.Delivery{}, err
	}

	if !t.canMutate(delivery, actor) {
		return models.Delivery{}, fmt.Errorf("%w: only the assigned driver or an admin may update this delivery", ErrUnauthorized)
	}
	if IsTerminalDeliveryStatus(delivery.Status) {
		return models.Delivery{}, fmt.Errorf("%w: delivery is %s", ErrInvalidState, delivery.Status)
	}

	updates := map[string]any{"status": status}
	if notes != "" {
		updates["notes"] = notes
	}
	if status == DeliveryCompleted {
		updates["actual_time"] = time.Now()
	}
	if err := t.db.Model(&delivery).Updates(updates).Error; err != nil {
		return models.Delivery{}, err
	}
	delivery.Status = status
	if notes != "" {
		delivery.Notes = notes
	}
	return delivery, nil
}

// StoreEta records whatever estimate the external geospatial collaborator
// produced. The tracker never computes routes itself.
func (t *DeliveryTracker) StoreEta(deliveryID int, estimatedTime time.Time, distanceKm float64) error {
	result := t.db.Model(&models.Delivery{}).
		Where("id = ?", deliveryID).
		Updates(map[string]any{"estimated_time": estimatedTime, "distance": distanceKm})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: delivery %d", ErrNotFound, deliveryID)
	}
	return nil
}

func (t *DeliveryTracker) refreshEta(deliveryID int, lat, lng float64) {
	estimate, err := t.eta.Estimate(lat, lng)
	if err != nil {
		log.Println("ETA refresh failed:", err)
		return
	}
	if err := t.StoreEta(deliveryID, estimate.ArrivalTime, estimate.DistanceKm); err != nil {
		log.Println("ETA store failed:", err)
	}
}

func (t *DeliveryTracker) canMutate(delivery models.Delivery, actor models.Actor) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.Role == models.RoleDriver && delivery.DriverID != nil && *delivery.DriverID == actor.UserID
}
