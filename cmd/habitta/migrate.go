package main

import (
	"fmt"

	"github.com/spf13/cobra"

	riveradapter "github.com/neomorfeo/habitta/internal/adapter/river"
	"github.com/neomorfeo/habitta/internal/adapter/sqlite"
	"github.com/neomorfeo/habitta/internal/config"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the application and queue schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			store, err := sqlite.New(cfg.DB.Path)
			if err != nil {
				return fmt.Errorf("database: %w", err)
			}
			defer store.Close()

			if err := riveradapter.Migrate(cmd.Context(), store.DB()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "migrated %s\n", cfg.DB.Path)
			return nil
		},
	}
}
