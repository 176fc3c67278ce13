package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewRateLimitExceededTotal returns a Prometheus counter for the number of rejected HTTP requests due to rate limiting
func NewRateLimitExceededTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limit_exceeded_total",
		Help: "Total number of rejected HTTP requests due to rate limiting",
	})
}

// Booking holds the workflow counters. A nil *Booking records nothing.
type Booking struct {
	OrdersCreated    prometheus.Counter
	BidsPlaced       *prometheus.CounterVec
	BidsRejected     *prometheus.CounterVec
	BidDecisions     *prometheus.CounterVec
	DispatchesOpened prometheus.Counter
	InboxRelayed     prometheus.Counter
	InboxRelayErrors prometheus.Counter
	InboxDelivered   *prometheus.CounterVec
}

// NewBooking creates the workflow counters and registers them with reg when it is not nil.
func NewBooking(reg prometheus.Registerer) (*Booking, error) {
	m := &Booking{
		OrdersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booking_orders_created_total",
			Help: "Total number of created orders",
		}),
		BidsPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_bids_placed_total",
			Help: "Total number of accepted bid placements by outcome (created, updated)",
		}, []string{"result"}),
		BidsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_bids_rejected_total",
			Help: "Total number of bid placements refused by a business rule",
		}, []string{"reason"}),
		BidDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_bid_decisions_total",
			Help: "Total number of bid decisions by status",
		}, []string{"status"}),
		DispatchesOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booking_dispatches_created_total",
			Help: "Total number of created dispatches",
		}),
		InboxRelayed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booking_inbox_relayed_total",
			Help: "Total number of inbox messages published to the broker",
		}),
		InboxRelayErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booking_inbox_relay_errors_total",
			Help: "Total number of failed relay batches",
		}),
		InboxDelivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_inbox_delivered_total",
			Help: "Total number of pushed notifications by topic",
		}, []string{"topic"}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{
			m.OrdersCreated, m.BidsPlaced, m.BidsRejected, m.BidDecisions,
			m.DispatchesOpened, m.InboxRelayed, m.InboxRelayErrors, m.InboxDelivered,
		} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// OrderCreated counts a created order.
func (m *Booking) OrderCreated() {
	if m != nil {
		m.OrdersCreated.Inc()
	}
}

// BidPlaced counts a successful placement.
func (m *Booking) BidPlaced(created bool) {
	if m == nil {
		return
	}
	result := "updated"
	if created {
		result = "created"
	}
	m.BidsPlaced.WithLabelValues(result).Inc()
}

// BidRejected counts a placement refused for reason.
func (m *Booking) BidRejected(reason string) {
	if m != nil {
		m.BidsRejected.WithLabelValues(reason).Inc()
	}
}

// BidDecided counts an accept or reject decision.
func (m *Booking) BidDecided(status string) {
	if m != nil {
		m.BidDecisions.WithLabelValues(status).Inc()
	}
}

// DispatchCreated counts a created dispatch.
func (m *Booking) DispatchCreated() {
	if m != nil {
		m.DispatchesOpened.Inc()
	}
}

// Relayed counts published inbox messages.
func (m *Booking) Relayed(n int) {
	if m != nil && n > 0 {
		m.InboxRelayed.Add(float64(n))
	}
}

// RelayFailed counts a failed relay batch.
func (m *Booking) RelayFailed() {
	if m != nil {
		m.InboxRelayErrors.Inc()
	}
}

// Delivered counts a pushed notification.
func (m *Booking) Delivered(topic string) {
	if m != nil {
		m.InboxDelivered.WithLabelValues(topic).Inc()
	}
}
