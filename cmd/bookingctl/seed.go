package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jaswdr/faker"
	"github.com/spf13/cobra"

	"service-booking/internal/logx"
	"service-booking/internal/repository"
	"service-booking/internal/seed"
	"service-booking/internal/service/auth"
)

var writeSeed = repository.Seed

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Reset the database and load demo data",
		Long: "seed deletes every row and loads demo accounts, pricing models, orders, " +
			"dispatches and transactions. Every account uses the password " + seed.Password + ".",
		Args: cobra.NoArgs,
		RunE: withEnv(func(ctx context.Context, e *env, _ []string) error {
			return runSeed(ctx, e.pool, e.logger)
		}),
	}
}

func runSeed(ctx context.Context, pool *pgxpool.Pool, logger logx.Logger) error {
	logger.Info("resetting and seeding database")
	if err := migrateUp(ctx, pool); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	hash, err := auth.HashPassword(seed.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	ds := seed.Build(hash, faker.New())
	if err := writeSeed(ctx, pool, ds); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	logger.Info("seeding complete",
		logx.Int("users", len(ds.Users)),
		logx.Int("pricing", len(ds.Pricing)),
		logx.Int("orders", len(ds.Orders)),
		logx.Int("dispatches", len(ds.Dispatches)),
		logx.Int("transactions", len(ds.Transactions)),
	)
	return nil
}
