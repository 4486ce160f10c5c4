package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"sportsfeed/internal/persistence"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the content store's schema migrations",
	Long: `Manage the Postgres schema migrations backing the persisted
content store (spec §3/§6).

Subcommands:
  up      Apply all pending migrations
  status  Show which migrations have been applied`,
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrateUp(cmd.Context())
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrateStatus(cmd.Context())
	},
}

func runMigrateUp(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := persistence.NewPostgresStore(cfg.Database.PostgresDSN)
	if err != nil {
		return fmt.Errorf("connect to content store: %w", err)
	}
	defer store.Close()

	migrator := persistence.NewMigrationManager(store)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	fmt.Println("migrations applied")
	return nil
}

func runMigrateStatus(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := persistence.NewPostgresStore(cfg.Database.PostgresDSN)
	if err != nil {
		return fmt.Errorf("connect to content store: %w", err)
	}
	defer store.Close()

	migrator := persistence.NewMigrationManager(store)
	statuses, err := migrator.Status(ctx)
	if err != nil {
		return fmt.Errorf("migration status: %w", err)
	}

	for _, s := range statuses {
		state := "pending"
		if s.Applied {
			state = "applied"
		}
		fmt.Printf("%-4d %-8s %s\n", s.Version, state, s.Description)
	}
	return nil
}
