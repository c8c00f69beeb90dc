package models

import (
	"time"

	"gorm.io/gorm"
)

type Delivery struct {
	gorm.Model
	OrderID       int        `json:"orderId" gorm:"uniqueIndex"`
	DriverID      *int       `json:"driverId" gorm:"index"`
	Status        string     `json:"status"`
	CurrentLat    *float64   `json:"currentLat"`
	CurrentLng    *float64   `json:"currentLng"`
	EstimatedTime *time.Time `json:"estimatedTime"`
	ActualTime    *time.Time `json:"actualTime"`
	Distance      *float64   `json:"distance"`
	Notes         string     `json:"notes"`
}
