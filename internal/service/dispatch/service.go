package dispatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"service-booking/internal/apperr"
	"service-booking/internal/domain"
	"service-booking/internal/logx"
	"service-booking/internal/metrics"
	"service-booking/internal/ports/bookingtx"
)

// Service creates dispatches and moves them through delivery.
type Service struct {
	tx               bookingtx.Runner
	list             dispatchLister
	metrics          *metrics.Booking
	operationTimeout time.Duration
	logger           logx.Logger
}

// NewService creates a new dispatch Service.
func NewService(tx bookingtx.Runner, list dispatchLister, m *metrics.Booking, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{tx: tx, list: list, metrics: m, operationTimeout: timeout, logger: logger}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// Create assigns a driver to an order. An admin session may dispatch any eligible
// driver; a driver token may only dispatch itself.
func (s *Service) Create(ctx context.Context, p *domain.Principal, in domain.NewDispatch) (*domain.Dispatch, error) {
	in.OrderID = strings.TrimSpace(in.OrderID)
	in.DriverID = strings.TrimSpace(in.DriverID)

	switch {
	case p == nil:
		return nil, apperr.ErrUnauthorized
	case p.IsAdmin():
	case p.Is(domain.SchemeToken, domain.RoleDriver):
		if in.DriverID == "" {
			in.DriverID = p.ID
		}
		if in.DriverID != p.ID {
			return nil, fmt.Errorf("%w: drivers dispatch themselves only", apperr.ErrForbidden)
		}
	default:
		return nil, fmt.Errorf("%w: dispatch needs an admin session or a driver token", apperr.ErrForbidden)
	}

	v := apperr.NewValidation()
	v.Check(in.OrderID != "", "orderId", "required")
	v.Check(in.DriverID != "", "driverId", "required")
	v.Check(in.Status == "" || in.Status == domain.DispatchAssigned, "status", "a new dispatch is ASSIGNED")
	if err := v.Err(); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var d *domain.Dispatch
	err := s.tx.WithTx(ctx, func(tx bookingtx.Repository) error {
		profile, err := tx.GetDriverProfile(ctx, in.DriverID, bookingtx.LockShare)
		if err != nil {
			return err
		}
		if !profile.CanBid() {
			return apperr.Reject(apperr.ErrDriverNotEligible, "driver_not_eligible")
		}

		o, err := tx.GetOrder(ctx, in.OrderID, bookingtx.LockUpdate)
		if err != nil {
			return err
		}
		if o == nil {
			return fmt.Errorf("%w: order %q", apperr.ErrNotFound, in.OrderID)
		}
		switch {
		case o.Status == domain.OrderPending:
			if o.VehicleType != profile.VehicleType {
				return apperr.Reject(apperr.ErrOrderNotAvailable, "vehicle_mismatch")
			}
			if err := tx.AssignOrder(ctx, o.ID, in.DriverID); err != nil {
				return err
			}
			if err := settleBids(ctx, tx, o.ID, in.DriverID); err != nil {
				return err
			}
		case o.Status == domain.OrderAssigned && o.DriverID != nil && *o.DriverID == in.DriverID:
		default:
			return apperr.Reject(apperr.ErrOrderNotAvailable, "order_not_available")
		}

		d = &domain.Dispatch{OrderID: o.ID, DriverID: in.DriverID, Status: domain.DispatchAssigned}
		if err := tx.InsertDispatch(ctx, d); err != nil {
			return err
		}

		return tx.InsertInbox(ctx,
			domain.InboxMessage{
				UserID:  in.DriverID,
				Message: fmt.Sprintf("You have been dispatched to order #%s", o.ID),
				Topic:   domain.TopicDispatch,
				OrderID: &o.ID,
			},
			domain.InboxMessage{
				UserID:  o.CustomerID,
				Message: fmt.Sprintf("A driver has been assigned to order #%s", o.ID),
				Topic:   domain.TopicDispatch,
				OrderID: &o.ID,
			},
		)
	})
	if err != nil {
		if reason, ok := apperr.ReasonOf(err); ok {
			s.logger.Warn("dispatch rejected",
				logx.String("order_id", in.OrderID),
				logx.String("driver_id", in.DriverID),
				logx.String("reason", reason),
			)
		}
		return nil, err
	}

	s.metrics.DispatchCreated()
	s.logger.Info("dispatch created",
		logx.String("event", "dispatch_created"),
		logx.String("dispatch_id", d.ID),
		logx.String("order_id", d.OrderID),
		logx.String("driver_id", d.DriverID),
	)
	return d, nil
}

// settleBids closes the bidding of an order dispatched directly: the driver's
// own pending bid is accepted and every other pending bid is rejected, with
// the same notifications a bid decision sends.
func settleBids(ctx context.Context, tx bookingtx.Repository, orderID, driverID string) error {
	own, err := tx.FindBid(ctx, orderID, driverID, bookingtx.LockUpdate)
	if err != nil {
		return err
	}

	var (
		keep string
		msgs []domain.InboxMessage
	)
	if own != nil {
		keep = own.ID
		if own.Status == domain.BidPending {
			if err := tx.UpdateBidStatus(ctx, own.ID, domain.BidAccepted); err != nil {
				return err
			}
			msgs = append(msgs, domain.InboxMessage{
				UserID:  driverID,
				Message: fmt.Sprintf("Your bid on order #%s was accepted", orderID),
				Topic:   domain.TopicBid,
				OrderID: &orderID,
			})
		}
	}

	others, err := tx.RejectPendingBids(ctx, orderID, keep)
	if err != nil {
		return err
	}
	for _, b := range others {
		msgs = append(msgs, domain.InboxMessage{
			UserID:  b.DriverID,
			Message: fmt.Sprintf("Order #%s was assigned to another driver", orderID),
			Topic:   domain.TopicBid,
			OrderID: &orderID,
		})
	}
	if len(msgs) == 0 {
		return nil
	}
	return tx.InsertInbox(ctx, msgs...)
}

// UpdateStatus moves a dispatch one step forward. Delivery completes the order.
func (s *Service) UpdateStatus(ctx context.Context, p *domain.Principal, id string, status domain.DispatchStatus) (*domain.Dispatch, error) {
	if p == nil {
		return nil, apperr.ErrUnauthorized
	}
	if !status.Valid() {
		v := apperr.NewValidation()
		v.Add("status", "must be ASSIGNED, IN_TRANSIT or DELIVERED")
		return nil, v
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var d *domain.Dispatch
	err := s.tx.WithTx(ctx, func(tx bookingtx.Repository) error {
		var err error
		d, err = tx.GetDispatch(ctx, id, bookingtx.LockUpdate)
		if err != nil {
			return err
		}
		if d == nil {
			return fmt.Errorf("%w: dispatch %q", apperr.ErrNotFound, id)
		}
		if !p.IsAdmin() && !(p.Is(domain.SchemeToken, domain.RoleDriver) && d.DriverID == p.ID) {
			return fmt.Errorf("%w: not the dispatched driver", apperr.ErrForbidden)
		}
		if !d.Status.CanTransitionTo(status) {
			return fmt.Errorf("%w: dispatch cannot move from %s to %s", apperr.ErrConflict, d.Status, status)
		}
		if err := tx.UpdateDispatchStatus(ctx, d.ID, status); err != nil {
			return err
		}
		d.Status = status

		o, err := tx.GetOrder(ctx, d.OrderID, bookingtx.LockUpdate)
		if err != nil {
			return err
		}
		if o == nil {
			return fmt.Errorf("%w: order %q", apperr.ErrNotFound, d.OrderID)
		}

		msg := fmt.Sprintf("Your order #%s is on the way", o.ID)
		if status == domain.DispatchDelivered {
			if o.Status.CanTransitionTo(domain.OrderCompleted) {
				if err := tx.UpdateOrderStatus(ctx, o.ID, domain.OrderCompleted); err != nil {
					return err
				}
			}
			msg = fmt.Sprintf("Your order #%s has been delivered", o.ID)
		}
		return tx.InsertInbox(ctx, domain.InboxMessage{
			UserID:  o.CustomerID,
			Message: msg,
			Topic:   domain.TopicDispatch,
			OrderID: &o.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("dispatch updated",
		logx.String("event", "dispatch_updated"),
		logx.String("dispatch_id", d.ID),
		logx.String("status", string(d.Status)),
	)
	return d, nil
}

// List returns a page of dispatches: all of them for an admin, its own for a driver.
func (s *Service) List(ctx context.Context, p *domain.Principal, page domain.Page) ([]domain.Dispatch, domain.Pagination, error) {
	var driverID *string
	switch {
	case p == nil:
		return nil, domain.Pagination{}, apperr.ErrUnauthorized
	case p.IsAdmin():
	case p.Role == domain.RoleDriver:
		driverID = &p.ID
	default:
		return nil, domain.Pagination{}, apperr.ErrForbidden
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	items, total, err := s.list.List(ctx, driverID, page)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return items, domain.Paginate(page, total), nil
}
