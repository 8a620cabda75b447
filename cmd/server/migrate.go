package main

import (
	"errors"

	"github.com/prudhvinik1/electoralsync/internal/config"
	"github.com/prudhvinik1/electoralsync/internal/database"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runMigration("up", database.MigrateUp)
		},
	})
	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runMigration("down", database.MigrateDown)
		},
	})

	return migrateCmd
}

// runMigration only needs DATABASE_URL, so it skips full config validation.
func runMigration(direction string, fn func(string) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Running migrations", zap.String("direction", direction))
	if err := fn(cfg.DatabaseURL); err != nil {
		logger.Error("Migration failed", zap.String("direction", direction), zap.Error(err))
		return err
	}
	logger.Info("Migrations complete", zap.String("direction", direction))
	return nil
}
