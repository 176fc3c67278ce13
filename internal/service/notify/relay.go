package notify

import (
	"context"
	"errors"
	"time"

	"service-booking/internal/logx"
	"service-booking/internal/metrics"
)

// Relay moves committed inbox rows to the broker.
type Relay struct {
	store    relayStore
	publish  PublishFunc
	metrics  *metrics.Booking
	interval time.Duration
	batch    int
	logger   logx.Logger
}

// NewRelay creates a Relay polling every interval for up to batch rows.
func NewRelay(store relayStore, publish PublishFunc, m *metrics.Booking, interval time.Duration, batch int, logger logx.Logger) *Relay {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if batch <= 0 {
		batch = 100
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Relay{store: store, publish: publish, metrics: m, interval: interval, batch: batch, logger: logger}
}

// RunOnce relays one batch and returns how many rows were published.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	n, err := r.store.RelayBatch(ctx, r.batch, r.publish)
	r.metrics.Relayed(n)
	if err != nil {
		r.metrics.RelayFailed()
		return n, err
	}
	return n, nil
}

// Run relays until ctx is done. A full batch is followed by another one at once.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		n, err := r.RunOnce(ctx)
		switch {
		case err != nil && ctx.Err() == nil:
			r.logger.Error("inbox relay failed", logx.Int("published", n), logx.Err(err))
		case n > 0:
			r.logger.Debug("inbox relayed", logx.Int("published", n))
		}
		if err == nil && n == r.batch {
			continue
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
