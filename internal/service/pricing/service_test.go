package pricing_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"service-booking/internal/apperr"
	"service-booking/internal/domain"
	"service-booking/internal/service/pricing"
)

type stubStore struct {
	byID       map[string]*domain.Pricing
	activeOnly bool
	created    *domain.Pricing
}

func (s *stubStore) Get(_ context.Context, id string) (*domain.Pricing, error) {
	return s.byID[id], nil
}

func (s *stubStore) List(_ context.Context, activeOnly bool) ([]domain.Pricing, error) {
	s.activeOnly = activeOnly
	return nil, nil
}

func (s *stubStore) Create(_ context.Context, p *domain.Pricing) error {
	p.ID = "p-new"
	s.created = p
	return nil
}

var admin = &domain.Principal{ID: "A", Role: domain.RoleAdmin, Scheme: domain.SchemeSession}

func TestEstimate(t *testing.T) {
	t.Parallel()

	store := &stubStore{byID: map[string]*domain.Pricing{
		"std": {ID: "std", BaseFare: 5, PerKmRate: 1.5, PerMinRate: 0.25, IsActive: true},
		"old": {ID: "old", BaseFare: 5, PerKmRate: 1, PerMinRate: 1},
	}}
	svc := pricing.NewService(store, time.Second, nil)
	ctx := context.Background()

	est, err := svc.Estimate(ctx, "std", 10, 20)
	require.NoError(t, err)
	require.Equal(t, 15.0, est.DistanceCharges)
	require.Equal(t, 5.0, est.TimeCharges)
	require.Equal(t, 25.0, est.Total)

	_, err = svc.Estimate(ctx, "old", 1, 1)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.Estimate(ctx, "nope", 1, 1)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.Estimate(ctx, "std", -1, 1)
	require.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestList_ActiveOnlyUnlessAdmin(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	svc := pricing.NewService(store, time.Second, nil)

	_, err := svc.List(context.Background(), nil)
	require.NoError(t, err)
	require.True(t, store.activeOnly)

	_, err = svc.List(context.Background(), admin)
	require.NoError(t, err)
	require.False(t, store.activeOnly)
}

func TestCreate(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	svc := pricing.NewService(store, time.Second, nil)
	ctx := context.Background()

	p, err := svc.Create(ctx, admin, domain.Pricing{ID: "client-chosen", ServiceType: " Express ", BaseFare: 8, PerKmRate: 2, PerMinRate: 0.5, IsActive: true})
	require.NoError(t, err)
	require.Equal(t, "p-new", p.ID)
	require.Equal(t, "Express", store.created.ServiceType)

	_, err = svc.Create(ctx, admin, domain.Pricing{ServiceType: "Bad"})
	require.ErrorIs(t, err, apperr.ErrInvalid)

	driver := &domain.Principal{ID: "D", Role: domain.RoleDriver, Scheme: domain.SchemeToken}
	_, err = svc.Create(ctx, driver, domain.Pricing{ServiceType: "X", BaseFare: 1, PerKmRate: 1, PerMinRate: 1})
	require.ErrorIs(t, err, apperr.ErrForbidden)
}
