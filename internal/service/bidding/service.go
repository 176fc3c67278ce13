package bidding

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

// Service places driver bids and applies owner decisions on them.
type Service struct {
	tx               bookingtx.Runner
	metrics          *metrics.Booking
	operationTimeout time.Duration
	logger           logx.Logger
}

// NewService creates a new bidding Service.
func NewService(tx bookingtx.Runner, m *metrics.Booking, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{tx: tx, metrics: m, operationTimeout: timeout, logger: logger}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// PlaceBid creates the driver's bid on a pending order or updates the existing one.
// Eligibility, order lookup, upsert and the customer notification commit together.
func (s *Service) PlaceBid(ctx context.Context, p *domain.Principal, in domain.PlaceBid) (*domain.BidResult, error) {
	switch {
	case p == nil:
		return nil, apperr.ErrUnauthorized
	case !p.Is(domain.SchemeToken, domain.RoleDriver):
		return nil, fmt.Errorf("%w: bids are placed by drivers", apperr.ErrForbidden)
	}

	in.OrderID = strings.TrimSpace(in.OrderID)
	v := apperr.NewValidation()
	v.Check(in.OrderID != "", "orderId", "required")
	v.Check(in.Amount > 0, "amount", "must be positive")
	v.Check(in.Status == "" || in.Status == domain.BidPending, "status", "only PENDING bids can be placed")
	if err := v.Err(); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var res domain.BidResult
	err := s.tx.WithTx(ctx, func(tx bookingtx.Repository) error {
		profile, err := tx.GetDriverProfile(ctx, p.ID, bookingtx.LockShare)
		if err != nil {
			return err
		}
		if err := checkDriver(profile); err != nil {
			return err
		}

		o, err := tx.GetOrder(ctx, in.OrderID, bookingtx.LockShare)
		if err != nil {
			return err
		}
		if err := checkOrder(o, profile.VehicleType); err != nil {
			return err
		}

		bid := domain.Bid{OrderID: o.ID, DriverID: p.ID, Amount: in.Amount, Status: domain.BidPending}
		created, err := tx.UpsertBid(ctx, &bid)
		if err != nil {
			return err
		}

		msg := fmt.Sprintf("Bid updated by %s for order #%s: %.2f", p.Name, o.ID, bid.Amount)
		if created {
			msg = fmt.Sprintf("New bid placed by %s for order #%s: %.2f", p.Name, o.ID, bid.Amount)
		}
		if err := tx.InsertInbox(ctx, domain.InboxMessage{
			UserID:  o.CustomerID,
			Message: msg,
			Topic:   domain.TopicBid,
			OrderID: &o.ID,
		}); err != nil {
			return err
		}

		res = domain.BidResult{Bid: bid, Created: created}
		return nil
	})
	if err != nil {
		s.rejected("bid rejected", err,
			logx.String("driver_id", p.ID),
			logx.String("order_id", in.OrderID),
		)
		return nil, err
	}

	s.metrics.BidPlaced(res.Created)
	s.logger.Info("bid placed",
		logx.String("event", "bid_placed"),
		logx.String("bid_id", res.Bid.ID),
		logx.String("order_id", res.Bid.OrderID),
		logx.String("driver_id", res.Bid.DriverID),
		logx.Float64("amount", res.Bid.Amount),
		logx.Bool("created", res.Created),
	)
	return &res, nil
}

// DecideBid accepts or rejects a pending bid on behalf of the order owner or an admin.
// Accepting assigns the order, rejects the other pending bids and opens the dispatch.
func (s *Service) DecideBid(ctx context.Context, p *domain.Principal, in domain.BidDecision) (*domain.DecisionResult, error) {
	if p == nil {
		return nil, apperr.ErrUnauthorized
	}
	in.BidID = strings.TrimSpace(in.BidID)
	v := apperr.NewValidation()
	v.Check(in.BidID != "", "bidId", "required")
	v.Check(in.Status == domain.BidAccepted || in.Status == domain.BidRejected, "status", "must be ACCEPTED or REJECTED")
	if err := v.Err(); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var res domain.DecisionResult
	err := s.tx.WithTx(ctx, func(tx bookingtx.Repository) error {
		// The order is locked before the bid, in the same order PlaceBid takes them.
		peek, err := tx.GetBid(ctx, in.BidID, bookingtx.LockNone)
		if err != nil {
			return err
		}
		if peek == nil {
			return fmt.Errorf("%w: bid %q", apperr.ErrNotFound, in.BidID)
		}
		o, err := tx.GetOrder(ctx, peek.OrderID, bookingtx.LockUpdate)
		if err != nil {
			return err
		}
		if o == nil {
			return fmt.Errorf("%w: order %q", apperr.ErrNotFound, peek.OrderID)
		}
		if !canDecide(p, o) {
			return fmt.Errorf("%w: only the order owner or an admin decides bids", apperr.ErrForbidden)
		}
		bid, err := tx.GetBid(ctx, in.BidID, bookingtx.LockUpdate)
		if err != nil {
			return err
		}
		if bid == nil {
			return fmt.Errorf("%w: bid %q", apperr.ErrNotFound, in.BidID)
		}
		if bid.Status != domain.BidPending {
			return fmt.Errorf("%w: bid is already %s", apperr.ErrConflict, bid.Status)
		}
		if o.Status != domain.OrderPending {
			return fmt.Errorf("%w: order is %s", apperr.ErrConflict, o.Status)
		}

		if in.Status == domain.BidRejected {
			return s.reject(ctx, tx, bid, o, &res)
		}
		return s.accept(ctx, tx, bid, o, &res)
	})
	if err != nil {
		s.rejected("bid decision refused", err,
			logx.String("bid_id", in.BidID),
			logx.String("status", string(in.Status)),
		)
		return nil, err
	}

	s.metrics.BidDecided(string(res.Bid.Status))
	if res.Dispatch != nil {
		s.metrics.DispatchCreated()
	}
	s.logger.Info("bid decided",
		logx.String("event", "bid_decided"),
		logx.String("bid_id", res.Bid.ID),
		logx.String("order_id", res.Order.ID),
		logx.String("status", string(res.Bid.Status)),
		logx.Int("rejected_others", len(res.Rejected)),
	)
	return &res, nil
}

func (s *Service) reject(ctx context.Context, tx bookingtx.Repository, bid *domain.Bid, o *domain.Order, res *domain.DecisionResult) error {
	if err := tx.UpdateBidStatus(ctx, bid.ID, domain.BidRejected); err != nil {
		return err
	}
	bid.Status = domain.BidRejected
	if err := tx.InsertInbox(ctx, domain.InboxMessage{
		UserID:  bid.DriverID,
		Message: fmt.Sprintf("Your bid on order #%s was rejected", o.ID),
		Topic:   domain.TopicBid,
		OrderID: &o.ID,
	}); err != nil {
		return err
	}
	*res = domain.DecisionResult{Bid: *bid, Order: *o}
	return nil
}

func (s *Service) accept(ctx context.Context, tx bookingtx.Repository, bid *domain.Bid, o *domain.Order, res *domain.DecisionResult) error {
	profile, err := tx.GetDriverProfile(ctx, bid.DriverID, bookingtx.LockShare)
	if err != nil {
		return err
	}
	if err := checkDriver(profile); err != nil {
		return err
	}

	if err := tx.UpdateBidStatus(ctx, bid.ID, domain.BidAccepted); err != nil {
		return err
	}
	bid.Status = domain.BidAccepted

	others, err := tx.RejectPendingBids(ctx, o.ID, bid.ID)
	if err != nil {
		return err
	}
	if err := tx.AssignOrder(ctx, o.ID, bid.DriverID); err != nil {
		return err
	}
	o.Status = domain.OrderAssigned
	o.DriverID = &bid.DriverID

	d := &domain.Dispatch{OrderID: o.ID, DriverID: bid.DriverID, Status: domain.DispatchAssigned}
	if err := tx.InsertDispatch(ctx, d); err != nil {
		return err
	}

	msgs := make([]domain.InboxMessage, 0, len(others)+1)
	msgs = append(msgs, domain.InboxMessage{
		UserID:  bid.DriverID,
		Message: fmt.Sprintf("Your bid on order #%s was accepted", o.ID),
		Topic:   domain.TopicBid,
		OrderID: &o.ID,
	})
	for _, b := range others {
		msgs = append(msgs, domain.InboxMessage{
			UserID:  b.DriverID,
			Message: fmt.Sprintf("Order #%s was assigned to another driver", o.ID),
			Topic:   domain.TopicBid,
			OrderID: &o.ID,
		})
	}
	if err := tx.InsertInbox(ctx, msgs...); err != nil {
		return err
	}

	*res = domain.DecisionResult{Bid: *bid, Order: *o, Dispatch: d, Rejected: others}
	return nil
}

func canDecide(p *domain.Principal, o *domain.Order) bool {
	return p.IsAdmin() || (p.Is(domain.SchemeToken, domain.RoleCustomer) && o.CustomerID == p.ID)
}

// rejected logs a business-rule refusal with its specific reason.
func (s *Service) rejected(msg string, err error, fields ...logx.Field) {
	reason, ok := apperr.ReasonOf(err)
	if !ok {
		return
	}
	s.metrics.BidRejected(reason)
	fields = append(fields, logx.String("reason", reason), logx.Err(err))
	s.logger.Warn(msg, fields...)
}
