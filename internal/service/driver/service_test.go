package driver_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"service-booking/internal/apperr"
	"service-booking/internal/domain"
	"service-booking/internal/ports/bookingtx"
	"service-booking/internal/ports/bookingtx/bookingtxtest"
	"service-booking/internal/service/driver"
)

func newCtrl(t *testing.T) *gomock.Controller {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	return ctrl
}

type stubDrivers struct {
	users      map[string]*domain.User
	listFn     func(ctx context.Context, p domain.Page) ([]domain.User, int, error)
	eligibleFn func(ctx context.Context, vehicleType string) ([]domain.User, error)
	upsertFn   func(ctx context.Context, upd domain.DriverProfileUpdate) (*domain.DriverProfile, error)
}

func (s *stubDrivers) GetByID(_ context.Context, id string) (*domain.User, error) {
	return s.users[id], nil
}

func (s *stubDrivers) ListDrivers(ctx context.Context, p domain.Page) ([]domain.User, int, error) {
	if s.listFn == nil {
		return nil, 0, nil
	}
	return s.listFn(ctx, p)
}

func (s *stubDrivers) ListEligibleDrivers(ctx context.Context, vehicleType string) ([]domain.User, error) {
	if s.eligibleFn == nil {
		return nil, nil
	}
	return s.eligibleFn(ctx, vehicleType)
}

func (s *stubDrivers) UpsertDriverProfile(ctx context.Context, upd domain.DriverProfileUpdate) (*domain.DriverProfile, error) {
	if s.upsertFn == nil {
		return &domain.DriverProfile{UserID: upd.UserID, KYCStatus: domain.KYCPending}, nil
	}
	return s.upsertFn(ctx, upd)
}

var (
	admin     = &domain.Principal{ID: "A", Role: domain.RoleAdmin, Scheme: domain.SchemeSession}
	driverTok = &domain.Principal{ID: "D1", Role: domain.RoleDriver, Scheme: domain.SchemeToken}
)

func strPtr(s string) *string { return &s }

func TestFindEligible(t *testing.T) {
	t.Parallel()

	store := &stubDrivers{eligibleFn: func(_ context.Context, vt string) ([]domain.User, error) {
		require.Equal(t, "Car", vt)
		return []domain.User{{ID: "D1"}}, nil
	}}
	svc := driver.NewService(store, nil, time.Second, nil)
	ctx := context.Background()

	users, err := svc.FindEligible(ctx, admin, " Car ")
	require.NoError(t, err)
	require.Len(t, users, 1)

	_, err = svc.FindEligible(ctx, admin, "")
	require.ErrorIs(t, err, apperr.ErrInvalid)

	_, err = svc.FindEligible(ctx, driverTok, "Car")
	require.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = svc.FindEligible(ctx, nil, "Car")
	require.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestList_Paginates(t *testing.T) {
	t.Parallel()

	store := &stubDrivers{listFn: func(_ context.Context, p domain.Page) ([]domain.User, int, error) {
		return make([]domain.User, p.Limit), 25, nil
	}}
	svc := driver.NewService(store, nil, time.Second, nil)

	users, pg, err := svc.List(context.Background(), admin, domain.NewPage(2, 10))
	require.NoError(t, err)
	require.Len(t, users, 10)
	require.Equal(t, 3, pg.TotalPages)
	require.True(t, pg.HasNextPage)
	require.True(t, pg.HasPrevPage)
}

func TestSaveProfile(t *testing.T) {
	t.Parallel()

	var got domain.DriverProfileUpdate
	store := &stubDrivers{upsertFn: func(_ context.Context, upd domain.DriverProfileUpdate) (*domain.DriverProfile, error) {
		got = upd
		if *upd.NumberPlate == "GR-1" {
			return nil, fmt.Errorf("upsert driver profile: %w (drivers_number_plate_key)", apperr.ErrConflict)
		}
		return &domain.DriverProfile{UserID: upd.UserID, KYCStatus: domain.KYCPending}, nil
	}}
	svc := driver.NewService(store, nil, time.Second, nil)
	ctx := context.Background()

	p, err := svc.SaveProfile(ctx, driverTok, domain.DriverProfileUpdate{
		UserID: "someone-else", License: strPtr(" L-9 "), NumberPlate: strPtr("GT-2"), VehicleType: strPtr("Car"),
	})
	require.NoError(t, err)
	require.Equal(t, domain.KYCPending, p.KYCStatus)
	require.Equal(t, "D1", got.UserID)
	require.Equal(t, "L-9", *got.License)

	_, err = svc.SaveProfile(ctx, driverTok, domain.DriverProfileUpdate{NumberPlate: strPtr("GR-1")})
	require.ErrorIs(t, err, apperr.ErrConflict)

	_, err = svc.SaveProfile(ctx, driverTok, domain.DriverProfileUpdate{})
	require.ErrorIs(t, err, apperr.ErrInvalid)

	_, err = svc.SaveProfile(ctx, driverTok, domain.DriverProfileUpdate{VehicleType: strPtr("  ")})
	require.ErrorIs(t, err, apperr.ErrInvalid)

	_, err = svc.SaveProfile(ctx, admin, domain.DriverProfileUpdate{VehicleType: strPtr("Car")})
	require.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestDecideKYC_NotifiesDriverInSameTx(t *testing.T) {
	t.Parallel()

	active := true
	tx := &bookingtxtest.Tx{
		UpdateKYCFn: func(_ context.Context, d domain.KYCDecision) (*domain.DriverProfile, error) {
			require.Equal(t, "D1", d.UserID)
			return &domain.DriverProfile{UserID: d.UserID, KYCStatus: d.Status, IsActive: *d.IsActive}, nil
		},
	}
	svc := driver.NewService(&stubDrivers{}, &bookingtxtest.Runner{Tx: tx}, time.Second, nil)

	p, err := svc.DecideKYC(context.Background(), admin, domain.KYCDecision{UserID: "D1", Status: domain.KYCApproved, IsActive: &active})
	require.NoError(t, err)
	require.True(t, p.CanBid())

	inbox := tx.Inbox()
	require.Len(t, inbox, 1)
	require.Equal(t, domain.TopicKYC, inbox[0].Topic)
	require.Equal(t, "Your KYC verification was approved", inbox[0].Message)
}

func TestDecideKYC_Refusals(t *testing.T) {
	t.Parallel()

	ctrl := newCtrl(t)
	runner := bookingtxtest.NewMockRunner(ctrl)
	runner.EXPECT().WithTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(bookingtx.Repository) error) error {
			return fn(&bookingtxtest.Tx{})
		})
	svc := driver.NewService(&stubDrivers{}, runner, time.Second, nil)
	ctx := context.Background()

	_, err := svc.DecideKYC(ctx, admin, domain.KYCDecision{UserID: "ghost", Status: domain.KYCRejected})
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.DecideKYC(ctx, admin, domain.KYCDecision{UserID: "D1", Status: domain.KYCPending})
	require.ErrorIs(t, err, apperr.ErrInvalid)

	_, err = svc.DecideKYC(ctx, driverTok, domain.KYCDecision{UserID: "D1", Status: domain.KYCApproved})
	require.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestGet(t *testing.T) {
	t.Parallel()

	store := &stubDrivers{users: map[string]*domain.User{
		"D1": {ID: "D1", Role: domain.RoleDriver, Driver: &domain.DriverProfile{UserID: "D1"}},
		"D2": {ID: "D2", Role: domain.RoleDriver, Driver: &domain.DriverProfile{UserID: "D2"}},
		"C1": {ID: "C1", Role: domain.RoleCustomer},
	}}
	svc := driver.NewService(store, nil, time.Second, nil)
	ctx := context.Background()

	u, err := svc.Get(ctx, admin, "D2")
	require.NoError(t, err)
	require.Equal(t, "D2", u.ID)

	u, err = svc.Get(ctx, driverTok, "D1")
	require.NoError(t, err)
	require.Equal(t, "D1", u.Driver.UserID)

	_, err = svc.Get(ctx, driverTok, "D2")
	require.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = svc.Get(ctx, admin, "C1")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	customer := &domain.Principal{ID: "C1", Role: domain.RoleCustomer, Scheme: domain.SchemeToken}
	_, err = svc.Get(ctx, customer, "C1")
	require.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = svc.Get(ctx, nil, "D1")
	require.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestKYCStatus(t *testing.T) {
	t.Parallel()

	store := &stubDrivers{users: map[string]*domain.User{
		"D1": {ID: "D1", Role: domain.RoleDriver, Phone: strPtr("0240000000"), Driver: &domain.DriverProfile{
			UserID: "D1", License: strPtr("GH-1"), VehicleType: "Car",
		}},
	}}
	svc := driver.NewService(store, nil, time.Second, nil)
	ctx := context.Background()

	c, err := svc.KYCStatus(ctx, driverTok)
	require.NoError(t, err)
	require.Equal(t, domain.KYCChecklist{PhoneNumber: true, VehicleType: true, License: true}, c)
	require.False(t, c.Complete())

	store.users["D1"].Image = &domain.Image{ID: "profile/d1.png"}
	store.users["D1"].Driver.NumberPlate = strPtr("GR-1-24")
	c, err = svc.KYCStatus(ctx, driverTok)
	require.NoError(t, err)
	require.True(t, c.Complete())

	_, err = svc.KYCStatus(ctx, admin)
	require.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = svc.KYCStatus(ctx, &domain.Principal{ID: "D9", Role: domain.RoleDriver, Scheme: domain.SchemeToken})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}
