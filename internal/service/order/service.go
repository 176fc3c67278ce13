package order

import (
	"context"
	"fmt"
	"time"

	"service-booking/internal/apperr"
	"service-booking/internal/domain"
	"service-booking/internal/logx"
	"service-booking/internal/metrics"
	"service-booking/internal/ports/bookingtx"
)

// Service creates orders and serves role-scoped reads of them.
type Service struct {
	tx               bookingtx.Runner
	orders           orderReader
	users            userGetter
	images           imageStore
	metrics          *metrics.Booking
	requireDrivers   bool
	operationTimeout time.Duration
	logger           logx.Logger
}

// Options tunes the order Service.
type Options struct {
	// RequireAvailableDrivers rejects creation when no eligible driver exists.
	RequireAvailableDrivers bool
	Timeout                 time.Duration
}

// NewService creates a new order Service.
func NewService(tx bookingtx.Runner, orders orderReader, users userGetter, images imageStore,
	m *metrics.Booking, opts Options, logger logx.Logger) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = 3 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{
		tx:               tx,
		orders:           orders,
		users:            users,
		images:           images,
		metrics:          m,
		requireDrivers:   opts.RequireAvailableDrivers,
		operationTimeout: opts.Timeout,
		logger:           logger,
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// Create validates in, stores the optional image and persists a PENDING order.
// Eligible drivers are notified in the same transaction.
func (s *Service) Create(ctx context.Context, p *domain.Principal, in domain.NewOrder) (*domain.Order, error) {
	normalize(&in)
	customerID, err := s.resolveCustomer(ctx, p, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if err := validate(in); err != nil {
		return nil, err
	}

	o := &domain.Order{
		CustomerID:  customerID,
		PriceID:     in.PriceID,
		VehicleType: in.VehicleType,
		PickUp:      in.PickUp,
		DropOff:     in.DropOff,
		Parcel:      in.Parcel,
		Fare:        in.Fare,
		Status:      domain.OrderPending,
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if in.Image != nil {
		img, err := s.images.Upload(ctx, imageFolder, *in.Image)
		if err != nil {
			return nil, fmt.Errorf("upload order image: %w", err)
		}
		o.Image = &img
	}

	var notified int
	err = s.tx.WithTx(ctx, func(tx bookingtx.Repository) error {
		if err := tx.InsertOrder(ctx, o); err != nil {
			return err
		}
		drivers, err := tx.ListEligibleDrivers(ctx, o.VehicleType)
		if err != nil {
			return err
		}
		if len(drivers) == 0 && s.requireDrivers {
			return fmt.Errorf("%w for vehicle type %q", apperr.ErrNoDriversAvailable, o.VehicleType)
		}
		if len(drivers) == 0 {
			return nil
		}
		msgs := make([]domain.InboxMessage, 0, len(drivers))
		for _, d := range drivers {
			msgs = append(msgs, domain.InboxMessage{
				UserID:  d.ID,
				Message: fmt.Sprintf("New %s order #%s from %s to %s", o.VehicleType, o.ID, o.PickUp, o.DropOff),
				Topic:   domain.TopicOrder,
				OrderID: &o.ID,
			})
		}
		notified = len(msgs)
		return tx.InsertInbox(ctx, msgs...)
	})
	if err != nil {
		if o.Image != nil {
			s.discardImage(ctx, o.Image.ID)
		}
		return nil, err
	}

	s.metrics.OrderCreated()
	s.logger.Info("order created",
		logx.String("event", "order_created"),
		logx.String("order_id", o.ID),
		logx.String("customer_id", o.CustomerID),
		logx.String("vehicle_type", o.VehicleType),
		logx.Int("drivers_notified", notified),
	)
	return o, nil
}

func (s *Service) discardImage(ctx context.Context, id string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.operationTimeout)
	defer cancel()
	if err := s.images.Delete(ctx, id); err != nil {
		s.logger.Warn("orphan order image",
			logx.String("image_id", id),
			logx.Err(err),
		)
	}
}

// resolveCustomer returns the owner of a new order: the customer itself for a
// customer token, the named customer for an admin session.
func (s *Service) resolveCustomer(ctx context.Context, p *domain.Principal, requested string) (string, error) {
	switch {
	case p == nil:
		return "", apperr.ErrUnauthorized
	case p.Is(domain.SchemeToken, domain.RoleCustomer):
		if requested != "" && requested != p.ID {
			v := apperr.NewValidation()
			v.Add("customerId", "must be the authenticated customer")
			return "", v
		}
		return p.ID, nil
	case p.IsAdmin():
		if requested == "" {
			v := apperr.NewValidation()
			v.Add("customerId", "required")
			return "", v
		}
		ctx, cancel := s.withTimeout(ctx)
		defer cancel()
		u, err := s.users.GetByID(ctx, requested)
		if err != nil {
			return "", err
		}
		if u == nil || u.Role != domain.RoleCustomer {
			return "", fmt.Errorf("%w: customer %q", apperr.ErrNotFound, requested)
		}
		return u.ID, nil
	default:
		return "", fmt.Errorf("%w: orders are created by customers or admins", apperr.ErrForbidden)
	}
}

// Get returns the order id if p may see it.
func (s *Service) Get(ctx context.Context, p *domain.Principal, id string) (*domain.Order, error) {
	if p == nil {
		return nil, apperr.ErrUnauthorized
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil || !visible(p, o) {
		return nil, fmt.Errorf("%w: order %q", apperr.ErrNotFound, id)
	}
	return o, nil
}

// List returns a page of the orders p may see, optionally filtered by status.
func (s *Service) List(ctx context.Context, p *domain.Principal, status *domain.OrderStatus, page domain.Page) ([]domain.Order, domain.Pagination, error) {
	if p == nil {
		return nil, domain.Pagination{}, apperr.ErrUnauthorized
	}
	if status != nil && !status.Valid() {
		v := apperr.NewValidation()
		v.Add("status", "unknown order status")
		return nil, domain.Pagination{}, v
	}

	f := domain.OrderFilter{Status: status}
	switch {
	case p.IsAdmin():
	case p.Role == domain.RoleCustomer:
		f.CustomerID = &p.ID
	case p.Role == domain.RoleDriver:
		scope := domain.DriverScope{DriverID: p.ID}
		if p.Driver != nil {
			scope.VehicleType = p.Driver.VehicleType
		}
		f.Driver = &scope
	default:
		return nil, domain.Pagination{}, apperr.ErrForbidden
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	orders, total, err := s.orders.List(ctx, f, page)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return orders, domain.Paginate(page, total), nil
}

// ListBids returns the bids on an order. Drivers only see their own.
func (s *Service) ListBids(ctx context.Context, p *domain.Principal, orderID string) ([]domain.Bid, error) {
	o, err := s.Get(ctx, p, orderID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	bids, err := s.orders.ListBids(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	if p.Role != domain.RoleDriver {
		return bids, nil
	}
	own := bids[:0]
	for _, b := range bids {
		if b.DriverID == p.ID {
			own = append(own, b)
		}
	}
	return own, nil
}

func visible(p *domain.Principal, o *domain.Order) bool {
	switch {
	case p.IsAdmin():
		return true
	case p.Role == domain.RoleCustomer:
		return o.CustomerID == p.ID
	case p.Role == domain.RoleDriver:
		if o.DriverID != nil && *o.DriverID == p.ID {
			return true
		}
		return o.Status == domain.OrderPending && p.Driver != nil && p.Driver.VehicleType == o.VehicleType
	default:
		return false
	}
}
