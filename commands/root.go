// Package commands implements the prakriti-darpan command line.
package commands

import (
	"fmt"
	"log/slog"
	"slices"

	"prakriti-darpan/config"
	"prakriti-darpan/logging"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format   string // "json" | "text"
	EnvFiles []string
	LogLevel string

	Config *config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "prakriti-darpan",
		Short: "Prakriti Darpan - litter reporting service",
		Long:  "Photograph litter, classify it and keep a shared record of where it was found.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}

			opts.Config = config.Load(opts.EnvFiles...)
			if opts.LogLevel != "" {
				opts.Config.LogLevel = opts.LogLevel
			}
			if err := opts.Config.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			opts.Logger = logging.Setup(opts.Config.LogLevel)
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringSliceVar(&opts.EnvFiles, "env-file", nil, ".env files to load (default .env)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "override LOG_LEVEL (debug|info|warn|error)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewReportsCommand(opts))

	return cmd
}
