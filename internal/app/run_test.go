package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"go.uber.org/dig"

	"service-booking/internal/logx"
	testlog "service-booking/internal/testutil"
)

func containerWithLogger(t *testing.T, logger logx.Logger) *dig.Container {
	t.Helper()
	c := dig.New()
	require.NoError(t, c.Provide(func() logx.Logger { return logger }))
	return c
}

func TestRunner_MustRun_ShutdownRequested(t *testing.T) {
	t.Parallel()

	rec := testlog.New()
	r := &Runner{runFn: func(*dig.Container) error { return context.Canceled }}
	r.MustRun(containerWithLogger(t, rec.Logger()))

	_, ok := rec.Find("shutdown requested, exiting")
	require.True(t, ok)
}

func TestRunner_MustRun_StartupTimeout(t *testing.T) {
	t.Parallel()

	rec := testlog.New()
	r := &Runner{runFn: func(*dig.Container) error { return context.DeadlineExceeded }}
	r.MustRun(containerWithLogger(t, rec.Logger()))

	e, ok := rec.Find("startup aborted: startup timeout exceeded")
	require.True(t, ok)
	require.Equal(t, "warn", e.Level)
}

func TestRunner_MustRun_ExitsOnError(t *testing.T) {
	t.Parallel()

	rec := testlog.New()
	code := -1
	r := &Runner{
		runFn: func(*dig.Container) error { return errors.New("boom") },
		exit:  func(c int) { code = c },
	}
	r.MustRun(containerWithLogger(t, rec.Logger()))

	require.Equal(t, 1, code)
	e, ok := rec.Find("run error")
	require.True(t, ok)
	require.Equal(t, "error", e.Level)
}

func TestRunner_MustRun_NilErrorIsSilent(t *testing.T) {
	t.Parallel()

	rec := testlog.New()
	r := &Runner{
		runFn: func(*dig.Container) error { return nil },
		exit:  func(int) { t.Fatal("exit must not be called") },
	}
	r.MustRun(containerWithLogger(t, rec.Logger()))
	require.Empty(t, rec.Entries())
}

func TestNewRunner_DefaultFields(t *testing.T) {
	t.Parallel()

	r := NewRunner()
	require.NotNil(t, r.runFn)
	require.NotNil(t, r.exit)
	require.Equal(t, fmt.Sprintf("%p", run), fmt.Sprintf("%p", r.runFn))
}

func TestGracefulShutdown_DoesNotPanic(t *testing.T) {
	t.Parallel()

	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NewServeMux()}
	require.NotPanics(t, func() {
		gracefulShutdown(srv, logx.Nop(), 100*time.Millisecond)
	})
}

func provideRunDeps(t *testing.T, c *dig.Container, ctx context.Context, logger logx.Logger, migrate migrateFunc) {
	t.Helper()
	require.NoError(t, c.Provide(func() context.Context { return ctx }))
	require.NoError(t, c.Provide(func() logx.Logger { return logger }))
	require.NoError(t, c.Provide(func() *pgxpool.Pool { return nil }))
	require.NoError(t, c.Provide(func() migrateFunc { return migrate }))
	require.NoError(t, c.Provide(func() *http.Server {
		return &http.Server{Addr: "127.0.0.1:0", Handler: http.NewServeMux()}
	}))
}

func TestRun_MigratesThenServesUntilCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := testlog.New()
	migrated := false
	c := dig.New()
	provideRunDeps(t, c, ctx, rec.Logger(), func(context.Context, *pgxpool.Pool) error {
		migrated = true
		return nil
	})

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := run(c)
	require.ErrorIs(t, err, context.Canceled)
	require.True(t, migrated)

	_, ok := rec.Find("server listening")
	require.True(t, ok)
	_, ok = rec.Find("resources closed")
	require.True(t, ok)
}

func TestRun_MigrationFailureStopsStartup(t *testing.T) {
	t.Parallel()

	rec := testlog.New()
	c := dig.New()
	provideRunDeps(t, c, context.Background(), rec.Logger(), func(context.Context, *pgxpool.Pool) error {
		return errors.New("dirty schema")
	})

	err := run(c)
	require.Error(t, err)
	require.Contains(t, err.Error(), "migrate: dirty schema")

	_, ok := rec.Find("server listening")
	require.False(t, ok)
}

func TestRun_ListenErrorIsReturned(t *testing.T) {
	t.Parallel()

	c := dig.New()
	require.NoError(t, c.Provide(func() context.Context { return context.Background() }))
	require.NoError(t, c.Provide(logx.Nop))
	require.NoError(t, c.Provide(func() *pgxpool.Pool { return nil }))
	require.NoError(t, c.Provide(func() migrateFunc {
		return func(context.Context, *pgxpool.Pool) error { return nil }
	}))
	require.NoError(t, c.Provide(func() *http.Server {
		return &http.Server{Addr: "256.0.0.1:bad", Handler: http.NewServeMux()}
	}))

	err := run(c)
	require.Error(t, err)
	require.Contains(t, err.Error(), "service-booking listen")
}
