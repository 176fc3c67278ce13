package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/dig"
	"golang.org/x/sync/errgroup"

	"service-booking/internal/logx"
	"service-booking/internal/service/notify"
	"service-booking/internal/transport/kafka"
)

// WorkerRunner runs the notification relay and consumer
type WorkerRunner struct {
	runFn func(*dig.Container) error
}

// NewWorkerRunner returns a new WorkerRunner
func NewWorkerRunner() *WorkerRunner {
	return &WorkerRunner{runFn: runWorker}
}

// MustRun runs the worker until the container context is done
func (r *WorkerRunner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	panic(err)
}

func runWorker(container *dig.Container) error {
	return container.Invoke(workerRun)
}

type workerIn struct {
	dig.In

	Ctx      context.Context
	Logger   logx.Logger
	Pool     *pgxpool.Pool
	Relay    *notify.Relay
	Producer *kafka.Producer
	Consumer *kafka.Consumer
	Server   *http.Server `name:"worker_server" optional:"true"`
}

func workerRun(in workerIn) error {
	if in.Relay == nil {
		return errors.New("inbox relay is nil: worker container misconfigured")
	}
	defer closeWorker(in)

	g, ctx := errgroup.WithContext(in.Ctx)
	g.Go(func() error { return in.Relay.Run(ctx) })
	if in.Consumer != nil {
		g.Go(func() error { return in.Consumer.Run(ctx) })
	} else {
		in.Logger.Warn("kafka not configured, delivering notifications in process")
	}
	if in.Server != nil {
		errCh := make(chan error, 1)
		startServer(in.Server, "worker", in.Logger, errCh)
		g.Go(func() error {
			select {
			case <-ctx.Done():
				gracefulShutdown(in.Server, in.Logger, shutdownTimeout)
				return nil
			case err := <-errCh:
				return err
			}
		})
	}

	in.Logger.Info("service-booking-worker started")
	return g.Wait()
}

func closeWorker(in workerIn) {
	if err := in.Consumer.Close(); err != nil {
		in.Logger.Error("kafka consumer close error", logx.Err(err))
	}
	if err := in.Producer.Close(); err != nil {
		in.Logger.Error("kafka producer close error", logx.Err(err))
	}
	if in.Pool != nil {
		in.Pool.Close()
	}
}
