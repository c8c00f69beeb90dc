package services

// Order status vocabulary (wire-stable). New values must be additive-only;
// unknown values fall back to the "in progress" presentation.
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusPreparing = "PREPARING"
	StatusReady     = "READY"
	StatusInTransit = "IN_TRANSIT"
	StatusDelivered = "DELIVERED"
	StatusCancelled = "CANCELLED"
)

// Delivery sub-status vocabulary.
const (
	DeliveryAssigned  = "ASSIGNED"
	DeliveryEnRoute   = "EN_ROUTE"
	DeliveryArrived   = "ARRIVED"
	DeliveryCompleted = "COMPLETED"
	DeliveryFailed    = "FAILED"
)

// forwardOrder is the only permitted forward path. Transitions move one
// step at a time; the progress bar and customer messaging assume every
// intermediate event exists.
var forwardOrder = []string{
	StatusPending,
	StatusConfirmed,
	StatusPreparing,
	StatusReady,
	StatusInTransit,
	StatusDelivered,
}

var statusProgress = map[string]int{
	StatusPending:   10,
	StatusConfirmed: 25,
	StatusPreparing: 40,
	StatusReady:     60,
	StatusInTransit: 80,
	StatusDelivered: 100,
	StatusCancelled: 0,
}

var statusLabels = map[string]string{
	StatusPending:   "Order received",
	StatusConfirmed: "Order confirmed",
	StatusPreparing: "Preparing your order",
	StatusReady:     "Ready for dispatch",
	StatusInTransit: "On the way",
	StatusDelivered: "Delivered",
	StatusCancelled: "Cancelled",
}

var deliveryStatuses = map[string]bool{
	DeliveryAssigned:  true,
	DeliveryEnRoute:   true,
	DeliveryArrived:   true,
	DeliveryCompleted: true,
	DeliveryFailed:    true,
}

// StatusProgress returns the normalized progress percentage for a status.
// Recomputed on every read, never stored.
func StatusProgress(status string) int {
	return statusProgress[status]
}

// StatusLabel returns the customer-facing label for a status.
func StatusLabel(status string) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return "In progress"
}

func IsValidStatus(status string) bool {
	_, ok := statusProgress[status]
	return ok
}

func IsTerminalStatus(status string) bool {
	return status == StatusDelivered || status == StatusCancelled
}

// NextStatus returns the immediate forward successor of a status. The
// second return is false for terminal or unknown statuses.
func NextStatus(status string) (string, bool) {
	for i, s := range forwardOrder {
		if s == status && i+1 < len(forwardOrder) {
			return forwardOrder[i+1], true
		}
	}
	return "", false
}

// AllowedNext lists the statuses an order may move to from the given one.
func AllowedNext(status string) []string {
	if IsTerminalStatus(status) {
		return nil
	}
	next, ok := NextStatus(status)
	if !ok {
		return []string{StatusCancelled}
	}
	return []string{next, StatusCancelled}
}

func IsValidDeliveryStatus(status string) bool {
	return deliveryStatuses[status]
}

func IsTerminalDeliveryStatus(status string) bool {
	return status == DeliveryCompleted || status == DeliveryFailed
}
