package main

import (
	"github.com/spf13/cobra"

	"github.com/okian/etude/internal/config"
	"github.com/okian/etude/internal/server"
	"github.com/okian/etude/pkg/logger"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the grading API",
		Long: `Starts the HTTP API. Configuration is layered from defaults, the YAML
file named by ETUDE_CONFIG and ETUDE_* environment variables.`,
		Example: `  etude serve --addr :9080`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			// Server logs default to info even when the CLI is quiet.
			if !cmd.Flags().Changed("log-level") {
				if err := logger.SetLevelString(cfg.LogLevel); err != nil {
					return err
				}
			}
			return server.Run(ctx, cfg, logger.Named("server"))
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides ETUDE_ADDR)")
	return cmd
}
