package bidding_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"service-booking/internal/apperr"
	"service-booking/internal/domain"
	"service-booking/internal/metrics"
	"service-booking/internal/ports/bookingtx"
	"service-booking/internal/ports/bookingtx/bookingtxtest"
	"service-booking/internal/service/bidding"
	testlog "service-booking/internal/testutil"
)

func newCtrl(t *testing.T) *gomock.Controller {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	return ctrl
}

// market is an in-memory booking store keyed the way the database is.
type market struct {
	mu       sync.Mutex
	orders   map[string]*domain.Order
	profiles map[string]*domain.DriverProfile
	bids     map[[2]string]*domain.Bid
	seq      int
}

func newMarket() *market {
	return &market{
		orders:   map[string]*domain.Order{},
		profiles: map[string]*domain.DriverProfile{},
		bids:     map[[2]string]*domain.Bid{},
	}
}

func (m *market) tx() *bookingtxtest.Tx {
	return &bookingtxtest.Tx{
		GetDriverProfileFn: func(_ context.Context, id string, _ bookingtx.Lock) (*domain.DriverProfile, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			return m.profiles[id], nil
		},
		GetOrderFn: func(_ context.Context, id string, _ bookingtx.Lock) (*domain.Order, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			o, ok := m.orders[id]
			if !ok {
				return nil, nil
			}
			cp := *o
			return &cp, nil
		},
		UpsertBidFn: func(_ context.Context, b *domain.Bid) (bool, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			key := [2]string{b.OrderID, b.DriverID}
			if cur, ok := m.bids[key]; ok {
				cur.Amount, cur.Status = b.Amount, b.Status
				*b = *cur
				return false, nil
			}
			m.seq++
			b.ID = "b" + string(rune('0'+m.seq))
			cp := *b
			m.bids[key] = &cp
			return true, nil
		},
	}
}

func (m *market) bidRows() []domain.Bid {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Bid, 0, len(m.bids))
	for _, b := range m.bids {
		out = append(out, *b)
	}
	return out
}

func driverPrincipal(id, name string, p *domain.DriverProfile) *domain.Principal {
	return &domain.Principal{ID: id, Name: name, Role: domain.RoleDriver, Scheme: domain.SchemeToken, Driver: p}
}

func approved(id, vehicle string) *domain.DriverProfile {
	return &domain.DriverProfile{UserID: id, VehicleType: vehicle, KYCStatus: domain.KYCApproved, IsActive: true}
}

func newBooking(t *testing.T) *metrics.Booking {
	t.Helper()
	m, err := metrics.NewBooking(prometheus.NewRegistry())
	require.NoError(t, err)
	return m
}

func TestPlaceBid_CreateThenUpdateNotifiesCustomerBothTimes(t *testing.T) {
	t.Parallel()

	mk := newMarket()
	mk.orders["O"] = &domain.Order{ID: "O", CustomerID: "C", VehicleType: "Sedan", Status: domain.OrderPending}
	mk.profiles["D1"] = approved("D1", "Sedan")
	mk.profiles["D2"] = approved("D2", "Bike")

	tx := mk.tx()
	runner := &bookingtxtest.Runner{Tx: tx}
	m := newBooking(t)
	logs := testlog.New()
	svc := bidding.NewService(runner, m, time.Second, logs.Logger())
	ctx := context.Background()
	d1 := driverPrincipal("D1", "Kwame", mk.profiles["D1"])

	first, err := svc.PlaceBid(ctx, d1, domain.PlaceBid{OrderID: "O", Amount: 50})
	require.NoError(t, err)
	require.True(t, first.Created)
	require.Equal(t, domain.BidPending, first.Bid.Status)

	second, err := svc.PlaceBid(ctx, d1, domain.PlaceBid{OrderID: "O", Amount: 60})
	require.NoError(t, err)
	require.False(t, second.Created)
	require.Equal(t, first.Bid.ID, second.Bid.ID)
	require.Equal(t, 60.0, second.Bid.Amount)

	rows := mk.bidRows()
	require.Len(t, rows, 1)
	require.Equal(t, 60.0, rows[0].Amount)

	inbox := tx.Inbox()
	require.Len(t, inbox, 2)
	for _, msg := range inbox {
		require.Equal(t, "C", msg.UserID)
		require.Equal(t, domain.TopicBid, msg.Topic)
		require.Equal(t, "O", *msg.OrderID)
	}
	require.Contains(t, inbox[0].Message, "New bid placed by Kwame")
	require.Contains(t, inbox[1].Message, "Bid updated by Kwame")

	_, err = svc.PlaceBid(ctx, driverPrincipal("D2", "Yaw", mk.profiles["D2"]), domain.PlaceBid{OrderID: "O", Amount: 40})
	require.ErrorIs(t, err, apperr.ErrOrderNotAvailable)
	require.Len(t, mk.bidRows(), 1)

	e, ok := logs.Find("bid rejected")
	require.True(t, ok)
	require.Equal(t, "warn", e.Level)
	reason, _ := e.Field("reason")
	require.Equal(t, "vehicle_mismatch", reason)

	require.Equal(t, 1.0, testutil.ToFloat64(m.BidsPlaced.WithLabelValues("created")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.BidsPlaced.WithLabelValues("updated")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.BidsRejected.WithLabelValues("vehicle_mismatch")))
}

func TestPlaceBid_IneligibleDriverNeverCommits(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		profile *domain.DriverProfile
		reason  string
	}{
		{name: "no profile", profile: nil, reason: "kyc_not_approved"},
		{name: "kyc pending", profile: &domain.DriverProfile{VehicleType: "Car", KYCStatus: domain.KYCPending, IsActive: true}, reason: "kyc_not_approved"},
		{name: "kyc rejected", profile: &domain.DriverProfile{VehicleType: "Car", KYCStatus: domain.KYCRejected, IsActive: true}, reason: "kyc_not_approved"},
		{name: "inactive", profile: &domain.DriverProfile{VehicleType: "Car", KYCStatus: domain.KYCApproved}, reason: "driver_inactive"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			upserted := false
			tx := &bookingtxtest.Tx{
				GetDriverProfileFn: func(context.Context, string, bookingtx.Lock) (*domain.DriverProfile, error) {
					return tc.profile, nil
				},
				UpsertBidFn: func(context.Context, *domain.Bid) (bool, error) {
					upserted = true
					return true, nil
				},
			}
			logs := testlog.New()
			svc := bidding.NewService(&bookingtxtest.Runner{Tx: tx}, nil, time.Second, logs.Logger())

			_, err := svc.PlaceBid(context.Background(), driverPrincipal("d", "D", tc.profile), domain.PlaceBid{OrderID: "o", Amount: 10})
			require.ErrorIs(t, err, apperr.ErrDriverNotEligible)
			reason, _ := apperr.ReasonOf(err)
			require.Equal(t, tc.reason, reason)
			require.False(t, upserted)
			require.Empty(t, tx.Inbox())

			e, ok := logs.Find("bid rejected")
			require.True(t, ok)
			logged, _ := e.Field("reason")
			require.Equal(t, tc.reason, logged)
		})
	}
}

func TestPlaceBid_OrderNotAvailable(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		order  *domain.Order
		reason string
	}{
		{name: "missing", order: nil, reason: "order_not_found"},
		{name: "assigned", order: &domain.Order{ID: "o", VehicleType: "Car", Status: domain.OrderAssigned}, reason: "order_not_pending"},
		{name: "completed", order: &domain.Order{ID: "o", VehicleType: "Car", Status: domain.OrderCompleted}, reason: "order_not_pending"},
		{name: "vehicle", order: &domain.Order{ID: "o", VehicleType: "Bike", Status: domain.OrderPending}, reason: "vehicle_mismatch"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tx := &bookingtxtest.Tx{
				GetDriverProfileFn: func(_ context.Context, _ string, lock bookingtx.Lock) (*domain.DriverProfile, error) {
					require.Equal(t, bookingtx.LockShare, lock)
					return approved("d", "Car"), nil
				},
				GetOrderFn: func(_ context.Context, _ string, lock bookingtx.Lock) (*domain.Order, error) {
					require.Equal(t, bookingtx.LockShare, lock)
					return tc.order, nil
				},
			}
			svc := bidding.NewService(&bookingtxtest.Runner{Tx: tx}, nil, time.Second, nil)

			_, err := svc.PlaceBid(context.Background(), driverPrincipal("d", "D", nil), domain.PlaceBid{OrderID: "o", Amount: 10})
			require.ErrorIs(t, err, apperr.ErrOrderNotAvailable)
			reason, _ := apperr.ReasonOf(err)
			require.Equal(t, tc.reason, reason)
		})
	}
}

func TestPlaceBid_InputAndAuthorization(t *testing.T) {
	t.Parallel()

	ctrl := newCtrl(t)
	runner := bookingtxtest.NewMockRunner(ctrl)
	svc := bidding.NewService(runner, nil, time.Second, nil)
	ctx := context.Background()
	d := driverPrincipal("d", "D", nil)

	_, err := svc.PlaceBid(ctx, nil, domain.PlaceBid{OrderID: "o", Amount: 1})
	require.ErrorIs(t, err, apperr.ErrUnauthorized)

	customer := &domain.Principal{ID: "c", Role: domain.RoleCustomer, Scheme: domain.SchemeToken}
	_, err = svc.PlaceBid(ctx, customer, domain.PlaceBid{OrderID: "o", Amount: 1})
	require.ErrorIs(t, err, apperr.ErrForbidden)

	driverSession := &domain.Principal{ID: "d", Role: domain.RoleDriver, Scheme: domain.SchemeSession}
	_, err = svc.PlaceBid(ctx, driverSession, domain.PlaceBid{OrderID: "o", Amount: 1})
	require.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = svc.PlaceBid(ctx, d, domain.PlaceBid{OrderID: " ", Amount: 0, Status: domain.BidAccepted})
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Contains(t, ve.Fields, "orderId")
	require.Contains(t, ve.Fields, "amount")
	require.Contains(t, ve.Fields, "status")
}

func TestPlaceBid_TxErrorPropagates(t *testing.T) {
	t.Parallel()

	ctrl := newCtrl(t)
	runner := bookingtxtest.NewMockRunner(ctrl)
	txErr := errors.New("begin failed")
	runner.EXPECT().WithTx(gomock.Any(), gomock.Any()).Return(txErr)

	logs := testlog.New()
	svc := bidding.NewService(runner, nil, time.Second, logs.Logger())
	_, err := svc.PlaceBid(context.Background(), driverPrincipal("d", "D", nil), domain.PlaceBid{OrderID: "o", Amount: 5})
	require.ErrorIs(t, err, txErr)

	_, logged := logs.Find("bid rejected")
	require.False(t, logged)
}

func TestPlaceBid_ConcurrentDriversOnSameOrder(t *testing.T) {
	t.Parallel()

	mk := newMarket()
	mk.orders["O"] = &domain.Order{ID: "O", CustomerID: "C", VehicleType: "Car", Status: domain.OrderPending}
	mk.profiles["D1"] = approved("D1", "Car")
	mk.profiles["D2"] = approved("D2", "Car")

	ctx := context.Background()
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		id := "D1"
		if i%2 == 1 {
			id = "D2"
		}
		wg.Add(1)
		go func(id string, amount float64) {
			defer wg.Done()
			svc := bidding.NewService(&bookingtxtest.Runner{Tx: mk.tx()}, nil, time.Second, nil)
			_, err := svc.PlaceBid(ctx, driverPrincipal(id, id, nil), domain.PlaceBid{OrderID: "O", Amount: amount})
			errs <- err
		}(id, float64(10+i))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	require.Len(t, mk.bidRows(), 2)
}

type decisionWorld struct {
	order    *domain.Order
	bid      *domain.Bid
	profile  *domain.DriverProfile
	locks    []string
	statuses map[string]domain.BidStatus
	assigned string
	dispatch *domain.Dispatch
}

func (w *decisionWorld) tx(others []domain.Bid) *bookingtxtest.Tx {
	w.statuses = map[string]domain.BidStatus{}
	return &bookingtxtest.Tx{
		GetBidFn: func(_ context.Context, id string, lock bookingtx.Lock) (*domain.Bid, error) {
			if lock == bookingtx.LockUpdate {
				w.locks = append(w.locks, "bid")
			}
			if w.bid == nil || w.bid.ID != id {
				return nil, nil
			}
			cp := *w.bid
			return &cp, nil
		},
		GetOrderFn: func(_ context.Context, _ string, lock bookingtx.Lock) (*domain.Order, error) {
			if lock == bookingtx.LockUpdate {
				w.locks = append(w.locks, "order")
			}
			cp := *w.order
			return &cp, nil
		},
		GetDriverProfileFn: func(context.Context, string, bookingtx.Lock) (*domain.DriverProfile, error) {
			return w.profile, nil
		},
		UpdateBidStatusFn: func(_ context.Context, id string, st domain.BidStatus) error {
			w.statuses[id] = st
			return nil
		},
		RejectPendingBidsFn: func(_ context.Context, orderID, except string) ([]domain.Bid, error) {
			return others, nil
		},
		AssignOrderFn: func(_ context.Context, orderID, driverID string) error {
			w.assigned = driverID
			return nil
		},
		InsertDispatchFn: func(_ context.Context, d *domain.Dispatch) error {
			d.ID = "disp1"
			w.dispatch = d
			return nil
		},
	}
}

func pendingWorld() *decisionWorld {
	return &decisionWorld{
		order:   &domain.Order{ID: "O", CustomerID: "C", VehicleType: "Car", Status: domain.OrderPending},
		bid:     &domain.Bid{ID: "B1", OrderID: "O", DriverID: "D1", Amount: 50, Status: domain.BidPending},
		profile: approved("D1", "Car"),
	}
}

var owner = &domain.Principal{ID: "C", Role: domain.RoleCustomer, Scheme: domain.SchemeToken}

func TestDecideBid_AcceptAssignsOrderAndNotifiesDrivers(t *testing.T) {
	t.Parallel()

	w := pendingWorld()
	others := []domain.Bid{{ID: "B2", OrderID: "O", DriverID: "D2", Status: domain.BidRejected}}
	tx := w.tx(others)
	m := newBooking(t)
	svc := bidding.NewService(&bookingtxtest.Runner{Tx: tx}, m, time.Second, nil)

	res, err := svc.DecideBid(context.Background(), owner, domain.BidDecision{BidID: "B1", Status: domain.BidAccepted})
	require.NoError(t, err)
	require.Equal(t, []string{"order", "bid"}, w.locks)
	require.Equal(t, domain.BidAccepted, res.Bid.Status)
	require.Equal(t, domain.OrderAssigned, res.Order.Status)
	require.Equal(t, "D1", *res.Order.DriverID)
	require.Equal(t, "D1", w.assigned)
	require.Equal(t, domain.BidAccepted, w.statuses["B1"])
	require.Equal(t, "disp1", res.Dispatch.ID)
	require.Equal(t, domain.DispatchAssigned, w.dispatch.Status)
	require.Len(t, res.Rejected, 1)

	inbox := tx.Inbox()
	require.Len(t, inbox, 2)
	require.Equal(t, "D1", inbox[0].UserID)
	require.Contains(t, inbox[0].Message, "accepted")
	require.Equal(t, "D2", inbox[1].UserID)

	require.Equal(t, 1.0, testutil.ToFloat64(m.BidDecisions.WithLabelValues("ACCEPTED")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.DispatchesOpened))
}

func TestDecideBid_RejectOnlyTouchesTheBid(t *testing.T) {
	t.Parallel()

	w := pendingWorld()
	tx := w.tx(nil)
	admin := &domain.Principal{ID: "A", Role: domain.RoleAdmin, Scheme: domain.SchemeSession}
	svc := bidding.NewService(&bookingtxtest.Runner{Tx: tx}, nil, time.Second, nil)

	res, err := svc.DecideBid(context.Background(), admin, domain.BidDecision{BidID: "B1", Status: domain.BidRejected})
	require.NoError(t, err)
	require.Equal(t, domain.BidRejected, res.Bid.Status)
	require.Equal(t, domain.OrderPending, res.Order.Status)
	require.Nil(t, res.Dispatch)
	require.Empty(t, w.assigned)

	inbox := tx.Inbox()
	require.Len(t, inbox, 1)
	require.Equal(t, "D1", inbox[0].UserID)
}

func TestDecideBid_Refusals(t *testing.T) {
	t.Parallel()

	stranger := &domain.Principal{ID: "X", Role: domain.RoleCustomer, Scheme: domain.SchemeToken}
	driver := driverPrincipal("D1", "D", nil)

	cases := []struct {
		name    string
		p       *domain.Principal
		mutate  func(w *decisionWorld)
		in      domain.BidDecision
		wantErr error
	}{
		{name: "anonymous", p: nil, in: domain.BidDecision{BidID: "B1", Status: domain.BidAccepted}, wantErr: apperr.ErrUnauthorized},
		{name: "bad status", p: owner, in: domain.BidDecision{BidID: "B1", Status: domain.BidPending}, wantErr: apperr.ErrInvalid},
		{name: "unknown bid", p: owner, in: domain.BidDecision{BidID: "nope", Status: domain.BidAccepted}, wantErr: apperr.ErrNotFound},
		{name: "not owner", p: stranger, in: domain.BidDecision{BidID: "B1", Status: domain.BidAccepted}, wantErr: apperr.ErrForbidden},
		{name: "driver", p: driver, in: domain.BidDecision{BidID: "B1", Status: domain.BidAccepted}, wantErr: apperr.ErrForbidden},
		{
			name:    "already decided",
			p:       owner,
			mutate:  func(w *decisionWorld) { w.bid.Status = domain.BidRejected },
			in:      domain.BidDecision{BidID: "B1", Status: domain.BidAccepted},
			wantErr: apperr.ErrConflict,
		},
		{
			name:    "order assigned",
			p:       owner,
			mutate:  func(w *decisionWorld) { w.order.Status = domain.OrderAssigned },
			in:      domain.BidDecision{BidID: "B1", Status: domain.BidRejected},
			wantErr: apperr.ErrConflict,
		},
		{
			name:    "driver lost approval",
			p:       owner,
			mutate:  func(w *decisionWorld) { w.profile.IsActive = false },
			in:      domain.BidDecision{BidID: "B1", Status: domain.BidAccepted},
			wantErr: apperr.ErrDriverNotEligible,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			w := pendingWorld()
			if tc.mutate != nil {
				tc.mutate(w)
			}
			tx := w.tx(nil)
			svc := bidding.NewService(&bookingtxtest.Runner{Tx: tx}, nil, time.Second, nil)

			_, err := svc.DecideBid(context.Background(), tc.p, tc.in)
			require.ErrorIs(t, err, tc.wantErr)
			require.Empty(t, tx.Inbox())
			require.Nil(t, w.dispatch)
		})
	}
}
