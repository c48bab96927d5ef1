package main

import (
	"context"
	"strconv"

	"librarian/config"
	"librarian/internal/domain/lifecycle"
	"librarian/internal/errors"
	logs "librarian/internal/infra/log"
	"librarian/internal/infra/persistence/postgres"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long: `Apply or roll back the versioned SQL migrations embedded in the binary.
They create the same schema as AutoMigrate plus the CHECK constraints.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd.Context(), func(m *postgres.Migrator) error {
				if err := m.Up(); err != nil {
					return err
				}

				return printVersion(cmd, m)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back every migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd.Context(), func(m *postgres.Migrator) error {
				if err := m.Down(); err != nil {
					return err
				}

				return printVersion(cmd, m)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "steps N",
		Short: "Apply N migrations, or roll back when N is negative",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n == 0 {
				return errors.Errorf("steps must be a non-zero integer, got %q", args[0])
			}

			return withMigrator(cmd.Context(), func(m *postgres.Migrator) error {
				if err := m.Steps(n); err != nil {
					return err
				}

				return printVersion(cmd, m)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd.Context(), func(m *postgres.Migrator) error {
				return printVersion(cmd, m)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "force VERSION",
		Short: "Mark VERSION as applied without running it (dirty state recovery)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := parseForceVersion(args[0])
			if err != nil {
				return err
			}

			return withMigrator(cmd.Context(), func(m *postgres.Migrator) error {
				if err := m.Force(version); err != nil {
					return err
				}

				return printVersion(cmd, m)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the migrations embedded in this binary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, err := postgres.MigrationNames()
			if err != nil {
				return err
			}
			for _, name := range names {
				cmd.Println(name)
			}

			return nil
		},
	})

	return cmd
}

func parseForceVersion(raw string) (int, error) {
	version, err := strconv.Atoi(raw)
	if err != nil || version < 0 {
		return 0, errors.Errorf("version must be a non-negative integer, got %q", raw)
	}

	return version, nil
}

func printVersion(cmd *cobra.Command, m *postgres.Migrator) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}

	if dirty {
		cmd.Printf("schema version %d (dirty)\n", version)
	} else {
		cmd.Printf("schema version %d\n", version)
	}

	return nil
}

// disableAutoMigrate keeps the migrate command from racing GORM's AutoMigrate.
func disableAutoMigrate(cfg *config.Config) *config.Config {
	clone := *cfg
	clone.Database.AutoMigrate = false

	return &clone
}

// withDatabase starts just enough of the application to reach the
// database, runs fn, and shuts the connection down again.
func withDatabase(ctx context.Context, fn func(db *gorm.DB) error) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var db *gorm.DB
	app := fx.New(
		fx.NopLogger,
		fx.Provide(config.New, logs.New, postgres.New),
		fx.Decorate(disableAutoMigrate),
		fx.Populate(&db),
	)
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout*2)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), lifecycle.DefaultTimeout)
		defer cancel()
		err = errors.Join(err, app.Stop(stopCtx))
	}()

	return fn(db)
}

func withMigrator(ctx context.Context, fn func(m *postgres.Migrator) error) error {
	return withDatabase(ctx, func(db *gorm.DB) error {
		m, err := postgres.NewMigrator(db)
		if err != nil {
			return err
		}

		// Close shuts the shared pool too, so it runs after fn.
		return errors.Join(fn(m), m.Close())
	})
}
