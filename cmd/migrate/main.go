package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"claimdesk/internal/config"
	"claimdesk/internal/logger"
)

var migrationsPath string

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back the claimdesk database schema",
	Long: `migrate runs the golang-migrate SQL files for the claims, documents,
canonical extraction and claim number tables against the configured
PostgreSQL database.

Example:
  migrate up
  migrate steps -1
  migrate --path /srv/claimdesk/migrations version`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: withMigrator(func(cmd *cobra.Command, m *migrate.Migrate, _ []string) error {
		if err := ignoreNoChange(m.Up()); err != nil {
			return fmt.Errorf("migration up failed: %w", err)
		}
		return report(cmd, m, "schema up to date")
	}),
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back every migration",
	Args:  cobra.NoArgs,
	RunE: withMigrator(func(cmd *cobra.Command, m *migrate.Migrate, _ []string) error {
		if err := ignoreNoChange(m.Down()); err != nil {
			return fmt.Errorf("migration down failed: %w", err)
		}
		return report(cmd, m, "schema rolled back")
	}),
}

var stepsCmd = &cobra.Command{
	Use:   "steps N",
	Short: "Apply N migrations, or roll back when N is negative",
	Args:  cobra.ExactArgs(1),
	RunE: withMigrator(func(cmd *cobra.Command, m *migrate.Migrate, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid steps argument %q: %w", args[0], err)
		}
		if err := ignoreNoChange(m.Steps(n)); err != nil {
			return fmt.Errorf("migration steps failed: %w", err)
		}
		return report(cmd, m, fmt.Sprintf("applied %d migration steps", n))
	}),
}

var forceCmd = &cobra.Command{
	Use:   "force V",
	Short: "Set the schema version without running migrations and clear the dirty flag",
	Args:  cobra.ExactArgs(1),
	RunE: withMigrator(func(cmd *cobra.Command, m *migrate.Migrate, args []string) error {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[0], err)
		}
		if err := m.Force(v); err != nil {
			return fmt.Errorf("forcing version %d: %w", v, err)
		}
		return report(cmd, m, "version forced")
	}),
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	Args:  cobra.NoArgs,
	RunE: withMigrator(func(cmd *cobra.Command, m *migrate.Migrate, _ []string) error {
		return report(cmd, m, "current schema")
	}),
}

func init() {
	rootCmd.PersistentFlags().StringVar(&migrationsPath, "path", "",
		"migrations directory (defaults to db.migrations_path)")
	rootCmd.AddCommand(upCmd, downCmd, stepsCmd, forceCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// withMigrator loads config, installs the logger and opens a migrator for
// the configured database before running fn.
func withMigrator(fn func(cmd *cobra.Command, m *migrate.Migrate, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		flush, err := logger.Init(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer flush()

		if migrationsPath != "" {
			cfg.DB.MigrationsPath = migrationsPath
		}
		m, err := migrate.New(cfg.DB.MigrationsSource(), cfg.DB.DSN())
		if err != nil {
			return fmt.Errorf("opening migrations at %s: %w", cfg.DB.MigrationsSource(), err)
		}
		defer m.Close()
		m.Log = migrateLogger{log: zap.S().Named("migrate")}

		return fn(cmd, m, args)
	}
}

func report(cmd *cobra.Command, m *migrate.Migrate, msg string) error {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: no migrations applied\n", msg)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: version %d, dirty %v\n", msg, version, dirty)
	return nil
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

// migrateLogger routes golang-migrate progress lines through zap.
type migrateLogger struct {
	log *zap.SugaredLogger
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.log.Infof(format, v...)
}

func (l migrateLogger) Verbose() bool {
	return false
}
