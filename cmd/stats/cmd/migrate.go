package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/katesim/explore-events/internal/storage/postgres"
)

var (
	migrationsPath string
	migrateSteps   int
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run stats database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadStatsConfig()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		path := migrationsPath
		if path == "" {
			path = postgres.DefaultStatsMigrationsPath
		}
		if err := postgres.MigrateUp(cfg.Database.URL, path); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadStatsConfig()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		path := migrationsPath
		if path == "" {
			path = postgres.DefaultStatsMigrationsPath
		}
		if err := postgres.MigrateDown(cfg.Database.URL, path, migrateSteps); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migrations rolled back")
		return nil
	},
}

func init() {
	migrateCmd.PersistentFlags().StringVar(&migrationsPath, "path", "", "migrations directory (default: "+postgres.DefaultStatsMigrationsPath+")")
	migrateDownCmd.Flags().IntVar(&migrateSteps, "steps", 1, "number of migrations to roll back")

	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
}
