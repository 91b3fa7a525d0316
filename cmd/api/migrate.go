package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/pkordes/tripplanner/backend/migrations"
)

func migrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: withProvider(func(ctx context.Context, p *goose.Provider, log *slog.Logger) error {
				results, err := p.Up(ctx)
				for _, r := range results {
					log.Info("migration applied", "version", r.Source.Version, "path", r.Source.Path, "duration", r.Duration)
				}
				return err
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: withProvider(func(ctx context.Context, p *goose.Provider, log *slog.Logger) error {
				r, err := p.Down(ctx)
				if r != nil {
					log.Info("migration rolled back", "version", r.Source.Version, "path", r.Source.Path)
				}
				return err
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show which migrations are applied",
			RunE: withProvider(func(ctx context.Context, p *goose.Provider, _ *slog.Logger) error {
				statuses, err := p.Status(ctx)
				if err != nil {
					return err
				}
				for _, s := range statuses {
					applied := "pending"
					if s.State == goose.StateApplied {
						applied = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
					fmt.Printf("%05d  %-40s  %s\n", s.Source.Version, s.Source.Path, applied)
				}
				return nil
			}),
		},
	)
	return cmd
}

// withProvider opens the database through the pgx database/sql driver and
// hands a goose provider over the embedded migrations to fn.
func withProvider(fn func(context.Context, *goose.Provider, *slog.Logger) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
		if err != nil {
			return fmt.Errorf("create migration provider: %w", err)
		}
		return fn(cmd.Context(), provider, logger)
	}
}
