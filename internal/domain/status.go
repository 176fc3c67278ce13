package domain

type (
	// Role is the role of a user account.
	Role string
	// KYCStatus is the verification state of a driver profile.
	KYCStatus string
	// OrderStatus is the lifecycle state of an order.
	OrderStatus string
	// BidStatus is the state of a driver's bid.
	BidStatus string
	// DispatchStatus is the state of a driver assignment.
	DispatchStatus string
	// PaymentMethod is the method used to pay for an order.
	PaymentMethod string
	// PaymentStatus is the state of a payment transaction.
	PaymentStatus string
)

// List of user roles
const (
	RoleCustomer Role = "CUSTOMER"
	RoleDriver   Role = "DRIVER"
	RoleAdmin    Role = "ADMIN"
)

// List of KYC statuses
const (
	KYCPending  KYCStatus = "PENDING"
	KYCApproved KYCStatus = "APPROVED"
	KYCRejected KYCStatus = "REJECTED"
)

// List of order statuses
const (
	OrderPending   OrderStatus = "PENDING"
	OrderAssigned  OrderStatus = "ASSIGNED"
	OrderCompleted OrderStatus = "COMPLETED"
)

// List of bid statuses
const (
	BidPending  BidStatus = "PENDING"
	BidAccepted BidStatus = "ACCEPTED"
	BidRejected BidStatus = "REJECTED"
)

// List of dispatch statuses
const (
	DispatchAssigned  DispatchStatus = "ASSIGNED"
	DispatchInTransit DispatchStatus = "IN_TRANSIT"
	DispatchDelivered DispatchStatus = "DELIVERED"
)

// List of payment methods
const (
	PaymentMobileMoney PaymentMethod = "MOBILE_MONEY"
	PaymentCard        PaymentMethod = "CARD"
	PaymentCash        PaymentMethod = "CASH"
)

// List of payment statuses
const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
)

func oneOf[T comparable](v T, allowed ...T) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// Valid checks if the Role is known.
func (r Role) Valid() bool { return oneOf(r, RoleCustomer, RoleDriver, RoleAdmin) }

// Valid checks if the KYCStatus is known.
func (s KYCStatus) Valid() bool { return oneOf(s, KYCPending, KYCApproved, KYCRejected) }

// Valid checks if the OrderStatus is known.
func (s OrderStatus) Valid() bool { return oneOf(s, OrderPending, OrderAssigned, OrderCompleted) }

// Valid checks if the BidStatus is known.
func (s BidStatus) Valid() bool { return oneOf(s, BidPending, BidAccepted, BidRejected) }

// Valid checks if the DispatchStatus is known.
func (s DispatchStatus) Valid() bool {
	return oneOf(s, DispatchAssigned, DispatchInTransit, DispatchDelivered)
}

// Valid checks if the PaymentMethod is known.
func (m PaymentMethod) Valid() bool {
	return oneOf(m, PaymentMobileMoney, PaymentCard, PaymentCash)
}

// Valid checks if the PaymentStatus is known.
func (s PaymentStatus) Valid() bool { return oneOf(s, PaymentPending, PaymentPaid, PaymentFailed) }

// orders only move forward: PENDING -> ASSIGNED -> COMPLETED
var orderTransitions = map[OrderStatus]OrderStatus{
	OrderPending:  OrderAssigned,
	OrderAssigned: OrderCompleted,
}

// CanTransitionTo reports whether the order may move from s to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	to, ok := orderTransitions[s]
	return ok && to == next
}

var dispatchTransitions = map[DispatchStatus]DispatchStatus{
	DispatchAssigned:  DispatchInTransit,
	DispatchInTransit: DispatchDelivered,
}

// CanTransitionTo reports whether the dispatch may move from s to next.
func (s DispatchStatus) CanTransitionTo(next DispatchStatus) bool {
	to, ok := dispatchTransitions[s]
	return ok && to == next
}
