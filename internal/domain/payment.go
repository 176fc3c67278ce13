package domain

import "time"

// Transaction is the financial record of an order.
type Transaction struct {
	ID            string
	OrderID       string
	CustomerID    string
	Amount        float64
	PaymentMethod PaymentMethod
	Status        PaymentStatus
	CreatedAt     time.Time
}

// NewTransaction is the input for recording a payment.
type NewTransaction struct {
	OrderID       string
	Amount        float64
	PaymentMethod PaymentMethod
	Status        PaymentStatus
}
