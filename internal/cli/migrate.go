package cli

import (
	"fmt"

	"github.com/ecohistorias/eco-api/internal/database"
	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.db()
			if err != nil {
				return err
			}

			opts.logger.Info("running migrations")
			if err := db.AutoMigrate(database.Models()...); err != nil {
				return fmt.Errorf("auto migrate: %w", err)
			}
			if err := database.AddIndexes(db); err != nil {
				return fmt.Errorf("add indexes: %w", err)
			}
			opts.logger.Info("migrations complete", "models", len(database.Models()))

			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}
