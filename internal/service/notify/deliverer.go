package notify

import (
	"context"
	"errors"
	"fmt"

	"service-booking/internal/domain"
	"service-booking/internal/logx"
	"service-booking/internal/metrics"
)

// ErrUnknownTopic is returned for a message no pusher handles. Retrying it never helps.
var ErrUnknownTopic = errors.New("unknown notification topic")

// Notification is what a user's device receives.
type Notification struct {
	ID      string
	UserID  string
	Title   string
	Body    string
	OrderID *string
}

// Deliverer pushes relayed messages and marks them delivered.
type Deliverer struct {
	store   deliveryStore
	pusher  Pusher
	metrics *metrics.Booking
	logger  logx.Logger
	factory *pushFactory
}

// NewDeliverer creates a new Deliverer.
func NewDeliverer(store deliveryStore, pusher Pusher, m *metrics.Booking, logger logx.Logger) *Deliverer {
	if logger == nil {
		logger = logx.Nop()
	}
	d := &Deliverer{store: store, pusher: pusher, metrics: m, logger: logger}
	d.factory = newPushFactory(
		d.titled("New order"),
		d.titled("Bid update"),
		d.titled("Delivery update"),
		d.titled("Account verification"),
	)
	return d
}

// Handle delivers a single relayed message. A message already delivered is skipped.
func (d *Deliverer) Handle(ctx context.Context, m domain.InboxMessage) error {
	fn, ok := d.factory.get(m.Topic)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownTopic, m.Topic)
	}
	return fn(ctx, m)
}

func (d *Deliverer) titled(title string) pushFunc {
	return func(ctx context.Context, m domain.InboxMessage) error {
		if err := d.pusher.Push(ctx, Notification{
			ID:      m.ID,
			UserID:  m.UserID,
			Title:   title,
			Body:    m.Message,
			OrderID: m.OrderID,
		}); err != nil {
			return fmt.Errorf("push %q: %w", m.ID, err)
		}

		first, err := d.store.MarkDelivered(ctx, m.ID)
		if err != nil {
			return err
		}
		if !first {
			d.logger.Debug("notification already delivered", logx.String("id", m.ID))
			return nil
		}
		d.metrics.Delivered(string(m.Topic))
		return nil
	}
}

// LogPusher writes notifications to the log instead of a device.
type LogPusher struct {
	Logger logx.Logger
}

// Push implements Pusher.
func (p LogPusher) Push(_ context.Context, n Notification) error {
	fields := []logx.Field{
		logx.String("id", n.ID),
		logx.String("user_id", n.UserID),
		logx.String("title", n.Title),
		logx.String("body", n.Body),
	}
	if n.OrderID != nil {
		fields = append(fields, logx.String("order_id", *n.OrderID))
	}
	p.Logger.Info("notification pushed", fields...)
	return nil
}
