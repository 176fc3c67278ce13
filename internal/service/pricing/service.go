package pricing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"service-booking/internal/apperr"
	"service-booking/internal/domain"
	"service-booking/internal/logx"
)

type pricingStore interface {
	Get(ctx context.Context, id string) (*domain.Pricing, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Pricing, error)
	Create(ctx context.Context, p *domain.Pricing) error
}

// Service serves fare models and estimates.
type Service struct {
	store            pricingStore
	operationTimeout time.Duration
	logger           logx.Logger
}

func NewService(store pricingStore, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{store: store, operationTimeout: timeout, logger: logger}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// List returns the active models; an admin session also sees inactive ones.
func (s *Service) List(ctx context.Context, p *domain.Principal) ([]domain.Pricing, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.store.List(ctx, !p.IsAdmin())
}

// Create adds a fare model for a new service type.
func (s *Service) Create(ctx context.Context, p *domain.Principal, in domain.Pricing) (*domain.Pricing, error) {
	if p == nil {
		return nil, apperr.ErrUnauthorized
	}
	if !p.IsAdmin() {
		return nil, fmt.Errorf("%w: admin session required", apperr.ErrForbidden)
	}

	in.ID = ""
	in.ServiceType = strings.TrimSpace(in.ServiceType)
	v := apperr.NewValidation()
	v.Check(in.ServiceType != "", "serviceType", "required")
	v.Check(in.BaseFare > 0, "baseFare", "must be positive")
	v.Check(in.PerKmRate > 0, "perKmRate", "must be positive")
	v.Check(in.PerMinRate > 0, "perMinRate", "must be positive")
	if err := v.Err(); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.store.Create(ctx, &in); err != nil {
		return nil, err
	}
	s.logger.Info("pricing created",
		logx.String("pricing_id", in.ID),
		logx.String("service_type", in.ServiceType),
	)
	return &in, nil
}

// Estimate computes the fare of a trip with the active model priceID.
func (s *Service) Estimate(ctx context.Context, priceID string, distanceKm, durationMin float64) (*domain.FareEstimate, error) {
	priceID = strings.TrimSpace(priceID)
	v := apperr.NewValidation()
	v.Check(priceID != "", "priceId", "required")
	v.Check(distanceKm >= 0, "distanceKm", "must not be negative")
	v.Check(durationMin >= 0, "durationMin", "must not be negative")
	if err := v.Err(); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	p, err := s.store.Get(ctx, priceID)
	if err != nil {
		return nil, err
	}
	if p == nil || !p.IsActive {
		return nil, fmt.Errorf("%w: pricing %q", apperr.ErrNotFound, priceID)
	}
	est := p.Estimate(distanceKm, durationMin)
	return &est, nil
}
