package services

import "gorm.io/gorm"

// Core wires the tracking services over one shared store.
type Core struct {
	DB      *gorm.DB
	Log     *EventLog
	Tracker *DeliveryTracker
	Machine *OrderStateMachine
	Facade  *TrackingFacade
}

func NewCore(db *gorm.DB, eta *EtaClient) *Core {
	log := NewEventLog(db)
	tracker := NewDeliveryTracker(db, eta)
	return &Core{
		DB:      db,
		Log:     log,
		Tracker: tracker,
		Machine: NewOrderStateMachine(db, log, tracker),
		Facade:  NewTrackingFacade(db, log),
	}
}
