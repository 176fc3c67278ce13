package domain

import "time"

// Bid is a driver's offer on a pending order.
// At most one bid exists per (OrderID, DriverID).
type Bid struct {
	ID        string
	OrderID   string
	DriverID  string
	Amount    float64
	Status    BidStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PlaceBid is the input of a bid placement.
type PlaceBid struct {
	OrderID string
	Amount  float64
	Status  BidStatus
}

// BidResult is the outcome of a bid placement.
type BidResult struct {
	Bid     Bid
	Created bool
}

// BidDecision is an owner or admin decision on a bid.
type BidDecision struct {
	BidID  string
	Status BidStatus
}

// DecisionResult is the outcome of a bid decision.
type DecisionResult struct {
	Bid      Bid
	Order    Order
	Dispatch *Dispatch
	Rejected []Bid
}
