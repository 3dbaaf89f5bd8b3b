package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/ecohistorias/eco-api/internal/dto"
	"github.com/ecohistorias/eco-api/internal/repository"
	"github.com/ecohistorias/eco-api/internal/services"
	"github.com/spf13/cobra"
)

// NewTagCommand creates the tag command group.
func NewTagCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage the tag catalog",
	}

	cmd.AddCommand(newTagListCommand(opts))
	cmd.AddCommand(newTagCreateCommand(opts))

	return cmd
}

func newTagListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.tagService()
			if err != nil {
				return err
			}

			tags, err := svc.ListTags(cmd.Context())
			if err != nil {
				return err
			}
			out := dto.ToTagDTOs(tags)

			if opts.Format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNOME")
			for _, t := range out {
				fmt.Fprintf(w, "%s\t%s\n", t.ID, t.Name)
			}
			return w.Flush()
		},
	}
}

func newTagCreateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create <nome>",
		Short: "Create a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.tagService()
			if err != nil {
				return err
			}

			tag, err := svc.CreateTag(cmd.Context(), args[0])
			if errors.Is(err, services.ErrTagExists) {
				return fmt.Errorf("tag %q already exists", args[0])
			}
			if err != nil {
				return err
			}
			opts.logger.Debug("tag created", "id", tag.ID, "nome", tag.Name)

			fmt.Fprintln(cmd.OutOrStdout(), tag.ID)
			return nil
		},
	}
}

func (o *RootOptions) tagService() (*services.TagService, error) {
	db, err := o.db()
	if err != nil {
		return nil, err
	}
	return services.NewTagService(repository.NewTagRepository(db)), nil
}
