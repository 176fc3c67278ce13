package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"service-booking/internal/apperr"
	"service-booking/internal/domain"
	"service-booking/internal/logx"
)

type transactionStore interface {
	Create(ctx context.Context, in domain.NewTransaction) (*domain.Transaction, error)
	List(ctx context.Context, p domain.Page) ([]domain.Transaction, int, error)
}

// Service records payments against orders. Every operation needs an admin session.
type Service struct {
	store            transactionStore
	operationTimeout time.Duration
	logger           logx.Logger
}

func NewService(store transactionStore, timeout time.Duration, logger logx.Logger) *Service {
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

func requireAdmin(p *domain.Principal) error {
	if p == nil {
		return apperr.ErrUnauthorized
	}
	if !p.IsAdmin() {
		return fmt.Errorf("%w: admin session required", apperr.ErrForbidden)
	}
	return nil
}

// Create records the single transaction of an order.
func (s *Service) Create(ctx context.Context, p *domain.Principal, in domain.NewTransaction) (*domain.Transaction, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	in.OrderID = strings.TrimSpace(in.OrderID)
	if in.Status == "" {
		in.Status = domain.PaymentPending
	}

	v := apperr.NewValidation()
	v.Check(in.OrderID != "", "orderId", "required")
	v.Check(in.Amount > 0, "amount", "must be positive")
	v.Check(in.PaymentMethod.Valid(), "paymentMethod", "must be MOBILE_MONEY, CARD or CASH")
	v.Check(in.Status.Valid(), "status", "must be PENDING, PAID or FAILED")
	if err := v.Err(); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	t, err := s.store.Create(ctx, in)
	if err != nil {
		return nil, err
	}

	s.logger.Info("transaction recorded",
		logx.String("event", "transaction_recorded"),
		logx.String("transaction_id", t.ID),
		logx.String("order_id", t.OrderID),
		logx.String("status", string(t.Status)),
	)
	return t, nil
}

// List returns a page of transactions.
func (s *Service) List(ctx context.Context, p *domain.Principal, page domain.Page) ([]domain.Transaction, domain.Pagination, error) {
	if err := requireAdmin(p); err != nil {
		return nil, domain.Pagination{}, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	items, total, err := s.store.List(ctx, page)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return items, domain.Paginate(page, total), nil
}
