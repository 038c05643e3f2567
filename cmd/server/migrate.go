package main

import (
	"fmt"
	"strconv"

	"github.com/climate-dashboard-api/internal/database"
	"github.com/spf13/cobra"
)

func migrateCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withDB(func(db *database.DB) error {
					return db.RunMigrations(a.cfg.MigrationsPath)
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withDB(func(db *database.DB) error {
					return db.MigrateDown(a.cfg.MigrationsPath)
				})
			},
		},
		&cobra.Command{
			Use:   "goto VERSION",
			Short: "Migrate up or down to a specific version",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := strconv.ParseUint(args[0], 10, 32)
				if err != nil {
					return fmt.Errorf("invalid version %q: %w", args[0], err)
				}
				return a.withDB(func(db *database.DB) error {
					return db.MigrateToVersion(a.cfg.MigrationsPath, uint(version))
				})
			},
		},
	)

	return cmd
}

func (a *app) withDB(fn func(db *database.DB) error) error {
	db, err := database.New(&a.cfg.Database, a.log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	return fn(db)
}
