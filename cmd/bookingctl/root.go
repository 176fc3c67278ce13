package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"service-booking/internal/app"
	"service-booking/internal/config"
	"service-booking/internal/logx"
	"service-booking/internal/repository"
)

// env is what every subcommand works with.
type env struct {
	logger logx.Logger
	pool   *pgxpool.Pool
}

// connectFunc opens the database for a subcommand. Tests replace it.
var connectFunc = connect

func connect(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	pool, err := repository.NewPool(ctx, cfg.DB.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	return &env{logger: app.NewLogger(), pool: pool}, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bookingctl",
		Short:         "Maintenance commands for the booking database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd(), newSeedCmd())
	return root
}

// withEnv runs fn with a connected env and an interruptible context.
func withEnv(fn func(ctx context.Context, e *env, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		e, err := connectFunc(ctx)
		if err != nil {
			return err
		}
		if e.pool != nil {
			defer e.pool.Close()
		}
		return fn(ctx, e, args)
	}
}
