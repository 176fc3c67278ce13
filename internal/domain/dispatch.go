package domain

import "time"

// Dispatch records the driver formally assigned to an order.
// There is at most one dispatch per order.
type Dispatch struct {
	ID        string
	OrderID   string
	DriverID  string
	Status    DispatchStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewDispatch is the input for creating a dispatch.
type NewDispatch struct {
	OrderID  string
	DriverID string
	Status   DispatchStatus
}
