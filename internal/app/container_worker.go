package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/dig"

	"service-booking/internal/config"
	"service-booking/internal/domain"
	"service-booking/internal/http/handlers"
	"service-booking/internal/logx"
	"service-booking/internal/metrics"
	"service-booking/internal/repository"
	"service-booking/internal/service/notify"
	"service-booking/internal/transport/kafka"
)

const workerServerName = "worker_server"

func registerWorker(container *dig.Container) error {
	if err := provideAll(container,
		repository.NewInboxRepo,
		func(logger logx.Logger) notify.Pusher { return notify.LogPusher{Logger: logger} },
		newDeliverer,
		newProducer,
		newRelay,
		newConsumer,
	); err != nil {
		return err
	}
	if err := container.Provide(newWorkerServer, dig.Name(workerServerName)); err != nil {
		return fmt.Errorf("provide worker server: %w", err)
	}
	return nil
}

func newDeliverer(inbox *repository.InboxRepo, pusher notify.Pusher, m *metrics.Booking, logger logx.Logger) *notify.Deliverer {
	return notify.NewDeliverer(inbox, pusher, m, logx.Component(logger, "deliverer"))
}

func newProducer(cfg *config.Config, logger logx.Logger) (*kafka.Producer, error) {
	return kafka.NewProducer(logger, cfg.Kafka.Brokers, cfg.Kafka.NotificationsTopic)
}

// newRelay publishes to Kafka when a producer is configured. Without one the
// relay hands each batch straight to the deliverer.
func newRelay(
	cfg *config.Config,
	inbox *repository.InboxRepo,
	producer *kafka.Producer,
	deliverer *notify.Deliverer,
	m *metrics.Booking,
	logger logx.Logger,
) *notify.Relay {
	publish := localPublish(deliverer, logger)
	if producer != nil {
		publish = producer.Publish
	}
	return notify.NewRelay(inbox, publish, m, cfg.Relay.Interval, cfg.Relay.BatchSize, logx.Component(logger, "relay"))
}

func newConsumer(cfg *config.Config, logger logx.Logger, deliverer *notify.Deliverer) (*kafka.Consumer, error) {
	return kafka.NewConsumer(logx.Component(logger, "consumer"), cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, deliveryHandler(deliverer))
}

// deliveryHandler adapts the deliverer to the consumer. Messages with an
// unknown topic are never retried.
func deliveryHandler(d *notify.Deliverer) kafka.HandleFunc {
	return func(ctx context.Context, m domain.InboxMessage) error {
		err := d.Handle(ctx, m)
		if errors.Is(err, notify.ErrUnknownTopic) {
			return kafka.Permanent(err)
		}
		return err
	}
}

// localPublish delivers in process. Unknown topics count as published so
// they do not block the batch; a failed push stops it and is retried later.
func localPublish(d *notify.Deliverer, logger logx.Logger) notify.PublishFunc {
	return func(ctx context.Context, msgs []domain.InboxMessage) ([]string, error) {
		done := make([]string, 0, len(msgs))
		for _, m := range msgs {
			if err := d.Handle(ctx, m); err != nil {
				if !errors.Is(err, notify.ErrUnknownTopic) {
					return done, err
				}
				logger.Warn("notification dropped", logx.String("id", m.ID), logx.Err(err))
			}
			done = append(done, m.ID)
		}
		return done, nil
	}
}

// newWorkerServer serves liveness and metrics of the worker process.
func newWorkerServer(cfg *config.Config, reg *prometheus.Registry, pool *pgxpool.Pool, logger logx.Logger) *http.Server {
	base := handlers.New(logger, pool)
	r := chi.NewRouter()
	r.Get("/ping", base.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(base.HealthcheckHead))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
