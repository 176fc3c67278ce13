package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/dig"

	"service-booking/internal/logx"
)

const shutdownTimeout = 15 * time.Second

// Runner runs the API server.
type Runner struct {
	runFn func(*dig.Container) error
	exit  func(int)
}

// NewRunner returns a Runner for the API container.
func NewRunner() *Runner {
	return &Runner{runFn: run, exit: os.Exit}
}

// MustRun starts the HTTP server using the provided DI container and blocks
// until the container context is done. Any other failure exits the process.
func (r *Runner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil {
		return
	}
	logger := loggerFrom(container)
	switch {
	case errors.Is(err, context.Canceled):
		logger.Info("shutdown requested, exiting")
	case errors.Is(err, context.DeadlineExceeded):
		logger.Warn("startup aborted: startup timeout exceeded")
	default:
		logger.Error("run error", logx.Err(err))
		if r.exit != nil {
			r.exit(1)
		}
	}
}

// MustRun runs the API container with a default Runner.
func MustRun(container *dig.Container) {
	NewRunner().MustRun(container)
}

func loggerFrom(container *dig.Container) logx.Logger {
	logger := logx.Nop()
	_ = container.Invoke(func(l logx.Logger) { logger = l })
	return logger
}

type apiIn struct {
	dig.In

	Ctx     context.Context
	Logger  logx.Logger
	Pool    *pgxpool.Pool
	Migrate migrateFunc
	Server  *http.Server
	Pprof   *http.Server `name:"pprof_server" optional:"true"`
}

func run(container *dig.Container) error {
	return container.Invoke(appRun)
}

func appRun(in apiIn) error {
	if err := in.Migrate(in.Ctx, in.Pool); err != nil {
		closeResources(in.Pool, in.Logger)
		return fmt.Errorf("migrate: %w", err)
	}

	errCh := make(chan error, 2)
	startServer(in.Server, "service-booking", in.Logger, errCh)
	if in.Pprof != nil {
		startServer(in.Pprof, "pprof", in.Logger, errCh)
	}

	runErr := waitForShutdown(in.Ctx, in.Logger, errCh)

	gracefulShutdown(in.Server, in.Logger, shutdownTimeout)
	if in.Pprof != nil {
		gracefulShutdown(in.Pprof, in.Logger, shutdownTimeout)
	}
	closeResources(in.Pool, in.Logger)
	return runErr
}

func startServer(server *http.Server, name string, logger logx.Logger, errCh chan<- error) {
	go func() {
		logger.Info("server listening", logx.String("server", name), logx.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("%s listen: %w", name, err)
		}
	}()
}

func waitForShutdown(ctx context.Context, logger logx.Logger, errCh <-chan error) error {
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		return ctx.Err()
	case err := <-errCh:
		logger.Error("server failed", logx.Err(err))
		return err
	}
}

func gracefulShutdown(srv *http.Server, logger logx.Logger, timeout time.Duration) {
	shCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logger.Error("graceful shutdown error", logx.Err(err))
	}
}

func closeResources(pool *pgxpool.Pool, logger logx.Logger) {
	if pool != nil {
		pool.Close()
	}
	logger.Info("resources closed")
}
