package cli

import (
	"errors"
	"fmt"

	"github.com/ecohistorias/eco-api/internal/codinome"
	"github.com/spf13/cobra"
)

type codinomeOptions struct {
	gender     string
	count      int
	maxRetries int
}

// NewCodinomeCommand creates the codinome command. It runs the generator
// locally and needs no database.
func NewCodinomeCommand(opts *RootOptions) *cobra.Command {
	var co codinomeOptions

	cmd := &cobra.Command{
		Use:   "codinome",
		Short: "Preview generated codinomes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if co.count < 1 {
				return fmt.Errorf("-n must be at least 1")
			}

			gen, err := codinome.New()
			if err != nil {
				return err
			}
			session := codinome.NewSession(gen, co.maxRetries)

			for i := 0; i < co.count; i++ {
				name, err := nextName(session, co.gender)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			opts.logger.Debug("codinomes generated",
				"count", co.count,
				"strategy", gen.Strategy().String(),
				"attempts", gen.Attempts())
			return nil
		},
	}

	cmd.Flags().StringVar(&co.gender, "genero", "", "element category (M, F or O)")
	cmd.Flags().IntVarP(&co.count, "count", "n", 1, "number of names to print")
	cmd.Flags().IntVar(&co.maxRetries, "max-retries", codinome.DefaultMaxRetries, "failed rounds allowed per name")

	return cmd
}

// nextName keeps asking until a name comes out or the retry budget is spent.
func nextName(s *codinome.Session, category string) (string, error) {
	for {
		name, err := s.Generate(category)
		if errors.Is(err, codinome.ErrExhausted) {
			continue
		}
		return name, err
	}
}
