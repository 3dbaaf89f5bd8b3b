package cli

import (
	"fmt"

	"github.com/ecohistorias/eco-api/data"
	"github.com/ecohistorias/eco-api/internal/repository"
	"github.com/ecohistorias/eco-api/internal/services"
	"github.com/spf13/cobra"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the default tag catalog",
		Long:  "Insert every tag of the bundled catalog that is not in the database yet.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := data.DefaultTags()
			if err != nil {
				return err
			}

			db, err := opts.db()
			if err != nil {
				return err
			}

			svc := services.NewTagService(repository.NewTagRepository(db))
			created, err := svc.SeedTags(cmd.Context(), names)
			if err != nil {
				return fmt.Errorf("seed tags: %w", err)
			}
			opts.logger.Info("tag catalog seeded", "catalog", len(names), "created", created)

			fmt.Fprintf(cmd.OutOrStdout(), "created %d of %d tags\n", created, len(names))
			return nil
		},
	}
}
