package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"service-booking/internal/logx"
	"service-booking/internal/repository"
)

var (
	migrateUp      = repository.Migrate
	migrateDown    = repository.MigrateDown
	migrateVersion = repository.MigrationVersion
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: withEnv(func(ctx context.Context, e *env, _ []string) error {
				return runMigration(ctx, e, "up", migrateUp)
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the latest migration",
			Args:  cobra.NoArgs,
			RunE: withEnv(func(ctx context.Context, e *env, _ []string) error {
				return runMigration(ctx, e, "down", migrateDown)
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: withEnv(func(ctx context.Context, e *env, _ []string) error {
				v, err := migrateVersion(ctx, e.pool)
				if err != nil {
					return fmt.Errorf("migration version: %w", err)
				}
				e.logger.Info("schema version", logx.Int64("version", v))
				return nil
			}),
		},
	)
	return cmd
}

func runMigration(ctx context.Context, e *env, direction string, fn func(context.Context, *pgxpool.Pool) error) error {
	if err := fn(ctx, e.pool); err != nil {
		return fmt.Errorf("migrate %s: %w", direction, err)
	}
	v, err := migrateVersion(ctx, e.pool)
	if err != nil {
		return fmt.Errorf("migration version: %w", err)
	}
	e.logger.Info("migration applied", logx.String("direction", direction), logx.Int64("version", v))
	return nil
}
