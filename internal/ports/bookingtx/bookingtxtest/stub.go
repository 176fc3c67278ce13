// Package bookingtxtest provides test doubles for the booking transaction port.
package bookingtxtest

import (
	"context"
	"sync"

	"service-booking/internal/domain"
	"service-booking/internal/ports/bookingtx"
)

// Tx is a bookingtx.Repository whose methods delegate to the optional function
// fields. Unset reads return (nil, nil); unset writes succeed. Inbox writes are
// staged and kept only when the Runner's transaction succeeds.
type Tx struct {
	InsertOrderFn       func(ctx context.Context, o *domain.Order) error
	GetOrderFn          func(ctx context.Context, id string, lock bookingtx.Lock) (*domain.Order, error)
	AssignOrderFn       func(ctx context.Context, orderID, driverID string) error
	UpdateOrderStatusFn func(ctx context.Context, orderID string, status domain.OrderStatus) error

	GetDriverProfileFn    func(ctx context.Context, userID string, lock bookingtx.Lock) (*domain.DriverProfile, error)
	ListEligibleDriversFn func(ctx context.Context, vehicleType string) ([]domain.User, error)
	UpdateKYCFn           func(ctx context.Context, d domain.KYCDecision) (*domain.DriverProfile, error)

	UpsertBidFn         func(ctx context.Context, b *domain.Bid) (bool, error)
	GetBidFn            func(ctx context.Context, id string, lock bookingtx.Lock) (*domain.Bid, error)
	FindBidFn           func(ctx context.Context, orderID, driverID string, lock bookingtx.Lock) (*domain.Bid, error)
	UpdateBidStatusFn   func(ctx context.Context, id string, status domain.BidStatus) error
	RejectPendingBidsFn func(ctx context.Context, orderID, exceptBidID string) ([]domain.Bid, error)

	InsertDispatchFn       func(ctx context.Context, d *domain.Dispatch) error
	GetDispatchFn          func(ctx context.Context, id string, lock bookingtx.Lock) (*domain.Dispatch, error)
	UpdateDispatchStatusFn func(ctx context.Context, id string, status domain.DispatchStatus) error

	InsertInboxFn func(ctx context.Context, msgs ...domain.InboxMessage) error

	mu      sync.Mutex
	staged  []domain.InboxMessage
	written []domain.InboxMessage
}

var _ bookingtx.Repository = (*Tx)(nil)

// Inbox returns the messages of committed transactions.
func (t *Tx) Inbox() []domain.InboxMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]domain.InboxMessage(nil), t.written...)
}

func (t *Tx) finish(commit bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if commit {
		t.written = append(t.written, t.staged...)
	}
	t.staged = nil
}

func (t *Tx) InsertOrder(ctx context.Context, o *domain.Order) error {
	if t.InsertOrderFn == nil {
		return nil
	}
	return t.InsertOrderFn(ctx, o)
}

func (t *Tx) GetOrder(ctx context.Context, id string, lock bookingtx.Lock) (*domain.Order, error) {
	if t.GetOrderFn == nil {
		return nil, nil
	}
	return t.GetOrderFn(ctx, id, lock)
}

func (t *Tx) AssignOrder(ctx context.Context, orderID, driverID string) error {
	if t.AssignOrderFn == nil {
		return nil
	}
	return t.AssignOrderFn(ctx, orderID, driverID)
}

func (t *Tx) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	if t.UpdateOrderStatusFn == nil {
		return nil
	}
	return t.UpdateOrderStatusFn(ctx, orderID, status)
}

func (t *Tx) GetDriverProfile(ctx context.Context, userID string, lock bookingtx.Lock) (*domain.DriverProfile, error) {
	if t.GetDriverProfileFn == nil {
		return nil, nil
	}
	return t.GetDriverProfileFn(ctx, userID, lock)
}

func (t *Tx) ListEligibleDrivers(ctx context.Context, vehicleType string) ([]domain.User, error) {
	if t.ListEligibleDriversFn == nil {
		return nil, nil
	}
	return t.ListEligibleDriversFn(ctx, vehicleType)
}

func (t *Tx) UpdateKYC(ctx context.Context, d domain.KYCDecision) (*domain.DriverProfile, error) {
	if t.UpdateKYCFn == nil {
		return nil, nil
	}
	return t.UpdateKYCFn(ctx, d)
}

func (t *Tx) UpsertBid(ctx context.Context, b *domain.Bid) (bool, error) {
	if t.UpsertBidFn == nil {
		return true, nil
	}
	return t.UpsertBidFn(ctx, b)
}

func (t *Tx) GetBid(ctx context.Context, id string, lock bookingtx.Lock) (*domain.Bid, error) {
	if t.GetBidFn == nil {
		return nil, nil
	}
	return t.GetBidFn(ctx, id, lock)
}

func (t *Tx) FindBid(ctx context.Context, orderID, driverID string, lock bookingtx.Lock) (*domain.Bid, error) {
	if t.FindBidFn == nil {
		return nil, nil
	}
	return t.FindBidFn(ctx, orderID, driverID, lock)
}

func (t *Tx) UpdateBidStatus(ctx context.Context, id string, status domain.BidStatus) error {
	if t.UpdateBidStatusFn == nil {
		return nil
	}
	return t.UpdateBidStatusFn(ctx, id, status)
}

func (t *Tx) RejectPendingBids(ctx context.Context, orderID, exceptBidID string) ([]domain.Bid, error) {
	if t.RejectPendingBidsFn == nil {
		return nil, nil
	}
	return t.RejectPendingBidsFn(ctx, orderID, exceptBidID)
}

func (t *Tx) InsertDispatch(ctx context.Context, d *domain.Dispatch) error {
	if t.InsertDispatchFn == nil {
		return nil
	}
	return t.InsertDispatchFn(ctx, d)
}

func (t *Tx) GetDispatch(ctx context.Context, id string, lock bookingtx.Lock) (*domain.Dispatch, error) {
	if t.GetDispatchFn == nil {
		return nil, nil
	}
	return t.GetDispatchFn(ctx, id, lock)
}

func (t *Tx) UpdateDispatchStatus(ctx context.Context, id string, status domain.DispatchStatus) error {
	if t.UpdateDispatchStatusFn == nil {
		return nil
	}
	return t.UpdateDispatchStatusFn(ctx, id, status)
}

func (t *Tx) InsertInbox(ctx context.Context, msgs ...domain.InboxMessage) error {
	if t.InsertInboxFn != nil {
		if err := t.InsertInboxFn(ctx, msgs...); err != nil {
			return err
		}
	}
	t.mu.Lock()
	t.staged = append(t.staged, msgs...)
	t.mu.Unlock()
	return nil
}

// Runner runs fn against Tx.
type Runner struct {
	Tx    *Tx
	calls int
}

// WithTx implements bookingtx.Runner.
func (r *Runner) WithTx(_ context.Context, fn func(tx bookingtx.Repository) error) error {
	r.calls++
	err := fn(r.Tx)
	r.Tx.finish(err == nil)
	return err
}

// Calls returns how many transactions were opened.
func (r *Runner) Calls() int { return r.calls }
