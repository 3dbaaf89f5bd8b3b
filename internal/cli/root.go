// Package cli implements ecoctl, the operator command line for the Eco API.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/ecohistorias/eco-api/internal/config"
	"github.com/ecohistorias/eco-api/internal/database"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// OpenDB overrides how commands reach the database (for testing).
	// If nil, the database is configured from the environment.
	OpenDB func() (*gorm.DB, error)

	logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for ecoctl.
func NewRootCommand(opts *RootOptions) *cobra.Command {
	if opts == nil {
		opts = &RootOptions{}
	}

	cmd := &cobra.Command{
		Use:   "ecoctl",
		Short: "Operate the Eco API database and catalogs",
		Long:  "ecoctl runs migrations, seeds the tag catalog and previews codinome generation.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			opts.logger = newLogger(cmd.ErrOrStderr(), opts.Verbose)
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewTagCommand(opts))
	cmd.AddCommand(NewCodinomeCommand(opts))

	return cmd
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// db opens the database, via OpenDB when set.
func (o *RootOptions) db() (*gorm.DB, error) {
	if o.OpenDB != nil {
		return o.OpenDB()
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	o.logger.Debug("connecting to database", "type", cfg.DBType, "host", cfg.DBHost, "name", cfg.DBName)
	if err := database.Connect(cfg); err != nil {
		return nil, err
	}
	return database.GetDB(), nil
}
