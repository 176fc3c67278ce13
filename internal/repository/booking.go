package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"service-booking/internal/domain"
	"service-booking/internal/ports/bookingtx"
)

// BookingRepo runs the booking workflow in transactions.
type BookingRepo struct {
	db *pgxpool.Pool
}

// NewBookingRepo creates a new BookingRepo.
func NewBookingRepo(db *pgxpool.Pool) *BookingRepo {
	return &BookingRepo{db: db}
}

// WithTx opens a transaction and executes fn within it.
func (r *BookingRepo) WithTx(ctx context.Context, fn func(tx bookingtx.Repository) error) (err error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				panic(rbErr)
			}
			panic(p)
		}
	}()

	if err := fn(&TxRepo{tx: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback tx: %w (original error: %s)", rbErr, err.Error())
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// TxRepo represents transaction repository.
type TxRepo struct {
	tx pgx.Tx
}

var _ bookingtx.Repository = (*TxRepo)(nil)

// InsertOrder - insert a new order.
func (r *TxRepo) InsertOrder(ctx context.Context, o *domain.Order) error {
	return insertOrder(ctx, r.tx, o)
}

// GetOrder - get order by ID with the requested lock.
func (r *TxRepo) GetOrder(ctx context.Context, id string, lock bookingtx.Lock) (*domain.Order, error) {
	return getOrder(ctx, r.tx, id, lock.Clause())
}

// AssignOrder - move order to ASSIGNED with driverID.
func (r *TxRepo) AssignOrder(ctx context.Context, orderID, driverID string) error {
	return setOrder(ctx, r.tx, orderID, domain.OrderAssigned, &driverID)
}

// UpdateOrderStatus - update order status.
func (r *TxRepo) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	return setOrder(ctx, r.tx, orderID, status, nil)
}

// GetDriverProfile - get driver profile with the requested lock.
func (r *TxRepo) GetDriverProfile(ctx context.Context, userID string, lock bookingtx.Lock) (*domain.DriverProfile, error) {
	return getDriverProfile(ctx, r.tx, userID, lock.Clause())
}

// ListEligibleDrivers - approved, active drivers of vehicleType.
func (r *TxRepo) ListEligibleDrivers(ctx context.Context, vehicleType string) ([]domain.User, error) {
	return listEligibleDrivers(ctx, r.tx, vehicleType)
}

// UpdateKYC - apply an admin KYC decision.
func (r *TxRepo) UpdateKYC(ctx context.Context, d domain.KYCDecision) (*domain.DriverProfile, error) {
	return updateKYC(ctx, r.tx, d)
}

// UpsertBid - create or update the bid of (OrderID, DriverID).
func (r *TxRepo) UpsertBid(ctx context.Context, b *domain.Bid) (bool, error) {
	return upsertBid(ctx, r.tx, b)
}

// GetBid - get bid by ID with the requested lock.
func (r *TxRepo) GetBid(ctx context.Context, id string, lock bookingtx.Lock) (*domain.Bid, error) {
	return getBid(ctx, r.tx, id, lock.Clause())
}

// FindBid - get the bid of driverID on orderID with the requested lock.
func (r *TxRepo) FindBid(ctx context.Context, orderID, driverID string, lock bookingtx.Lock) (*domain.Bid, error) {
	return findBid(ctx, r.tx, orderID, driverID, lock.Clause())
}

// UpdateBidStatus - update bid status.
func (r *TxRepo) UpdateBidStatus(ctx context.Context, id string, status domain.BidStatus) error {
	return updateBidStatus(ctx, r.tx, id, status)
}

// RejectPendingBids - reject the pending bids of an order except exceptBidID.
func (r *TxRepo) RejectPendingBids(ctx context.Context, orderID, exceptBidID string) ([]domain.Bid, error) {
	return rejectPendingBids(ctx, r.tx, orderID, exceptBidID)
}

// InsertDispatch - insert a new dispatch.
func (r *TxRepo) InsertDispatch(ctx context.Context, d *domain.Dispatch) error {
	return insertDispatch(ctx, r.tx, d)
}

// GetDispatch - get dispatch by ID with the requested lock.
func (r *TxRepo) GetDispatch(ctx context.Context, id string, lock bookingtx.Lock) (*domain.Dispatch, error) {
	return getDispatch(ctx, r.tx, id, lock.Clause())
}

// UpdateDispatchStatus - update dispatch status.
func (r *TxRepo) UpdateDispatchStatus(ctx context.Context, id string, status domain.DispatchStatus) error {
	return updateDispatchStatus(ctx, r.tx, id, status)
}

// InsertInbox - queue notifications.
func (r *TxRepo) InsertInbox(ctx context.Context, msgs ...domain.InboxMessage) error {
	return insertInbox(ctx, r.tx, msgs)
}
