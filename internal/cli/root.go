// Package cli implements the gocas command line.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/njchilds90/gocas"
	"github.com/njchilds90/gocas/internal/config"
)

// RootOptions holds global flags and the configuration resolved from them.
type RootOptions struct {
	ConfigFile string
	LogLevel   string
	Format     string

	Config *config.Config
	Logger *slog.Logger
}

// NewRootCommand creates the root command.
func NewRootCommand(version string) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "gocas",
		Short: "Symbolic algebra and calculus",
		Long: `gocas manipulates exact symbolic expressions: expand, factor,
differentiate, integrate, take limits, solve equations and render
results as text or LaTeX.

Configuration is read from gocas.yaml (or --config), GOCAS_* environment
variables and flags, later sources winning.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.ConfigFile, cmd.Flags())
			if err != nil {
				return WrapExitError(ExitCommandError, "configuration", err)
			}
			opts.Config = cfg
			opts.Format = cfg.Output
			opts.Logger = cfg.Logger(cmd.ErrOrStderr())
			if cfg.File != "" {
				opts.Logger.Debug("loaded config", "file", cfg.File)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default gocas.yaml)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", config.DefaultLogLevel, "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", config.DefaultOutput, "output format (text|json|md)")
	cmd.PersistentFlags().Int("max-expand-power", gocas.DefaultMaxExpandPower, "largest power of a sum that expand distributes")
	cmd.PersistentFlags().Int("factor-budget", gocas.DefaultFactorBudget, "candidate limit for factor searches")
	cmd.PersistentFlags().Int("series-order", gocas.DefaultSeriesOrder, "initial series order used by limits")
	cmd.PersistentFlags().Int("max-depth", gocas.DefaultMaxDepth, "recursion bound for integrate, limit and solve")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewToolsCommand(opts))
	cmd.AddCommand(NewCallCommand(opts))
	cmd.AddCommand(NewVersionCommand(opts, version))

	return cmd
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout()}
}
