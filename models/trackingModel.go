package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TrackingEvent is immutable once written. The sequence of events for an
// order, in creation order, is the authoritative status history.
type TrackingEvent struct {
	gorm.Model
	OrderID  int            `json:"orderId" gorm:"index"`
	Status   string         `json:"status"`
	Message  string         `json:"message"`
	Metadata datatypes.JSON `json:"metadata"`
}
