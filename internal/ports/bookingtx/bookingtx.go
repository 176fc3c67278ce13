//go:generate mockgen -destination=bookingtxtest/mock_runner.go -package=bookingtxtest service-booking/internal/ports/bookingtx Runner

package bookingtx

import (
	"context"

	"service-booking/internal/domain"
)

// Lock selects the row lock taken by a read inside a transaction.
type Lock int

// List of row locks
const (
	LockNone Lock = iota
	LockShare
	LockUpdate
)

// Clause returns the SQL locking clause for l.
func (l Lock) Clause() string {
	switch l {
	case LockShare:
		return " FOR SHARE"
	case LockUpdate:
		return " FOR UPDATE"
	default:
		return ""
	}
}

// Repository is the set of writes of the booking workflow that must share one transaction.
// Getters return (nil, nil) when the row does not exist.
type Repository interface {
	InsertOrder(ctx context.Context, o *domain.Order) error
	GetOrder(ctx context.Context, id string, lock Lock) (*domain.Order, error)
	AssignOrder(ctx context.Context, orderID, driverID string) error
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error

	GetDriverProfile(ctx context.Context, userID string, lock Lock) (*domain.DriverProfile, error)
	ListEligibleDrivers(ctx context.Context, vehicleType string) ([]domain.User, error)
	UpdateKYC(ctx context.Context, d domain.KYCDecision) (*domain.DriverProfile, error)

	UpsertBid(ctx context.Context, b *domain.Bid) (created bool, err error)
	GetBid(ctx context.Context, id string, lock Lock) (*domain.Bid, error)
	FindBid(ctx context.Context, orderID, driverID string, lock Lock) (*domain.Bid, error)
	UpdateBidStatus(ctx context.Context, id string, status domain.BidStatus) error
	RejectPendingBids(ctx context.Context, orderID, exceptBidID string) ([]domain.Bid, error)

	InsertDispatch(ctx context.Context, d *domain.Dispatch) error
	GetDispatch(ctx context.Context, id string, lock Lock) (*domain.Dispatch, error)
	UpdateDispatchStatus(ctx context.Context, id string, status domain.DispatchStatus) error

	InsertInbox(ctx context.Context, msgs ...domain.InboxMessage) error
}

// Runner is a transaction runner
type Runner interface {
	WithTx(ctx context.Context, fn func(tx Repository) error) error
}
