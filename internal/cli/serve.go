package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/njchilds90/gocas/internal/config"
	"github.com/njchilds90/gocas/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve tool calls over HTTP",
		Long: `Serve the tool dispatcher for agent frameworks.

  POST /tool    execute a tool call
  GET  /schema  tool schema for agent registration
  GET  /health  liveness check`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := rootOpts.Config
			srv := server.New(server.Config{
				Addr:          cfg.Server.Addr,
				ReadTimeout:   cfg.Server.ReadTimeout,
				WriteTimeout:  cfg.Server.WriteTimeout,
				MaxBodyBytes:  cfg.Server.MaxBodyBytes,
				EngineOptions: cfg.EngineOptions(),
				Logger:        rootOpts.Logger,
			})
			if err := srv.Serve(cmd.Context()); err != nil {
				return WrapExitError(ExitCommandError, "serve", err)
			}
			return nil
		},
	}

	// Defaults live in the config layer; these only override when set.
	cmd.Flags().String("addr", config.DefaultAddr, "listen address")
	cmd.Flags().Duration("read-timeout", 15*time.Second, "HTTP read timeout")
	cmd.Flags().Duration("write-timeout", 15*time.Second, "HTTP write timeout")
	cmd.Flags().Int64("max-body-bytes", config.DefaultMaxBodyBytes, "request body limit")

	return cmd
}
