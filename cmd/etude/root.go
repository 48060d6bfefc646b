package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/okian/etude/pkg/logger"
)

func newRootCmd() *cobra.Command {
	var (
		logLevel  string
		logFormat string
	)

	cmd := &cobra.Command{
		Use:   "etude",
		Short: "Instrument-aware difficulty grading for solo scores",
		Long: `etude grades extracted score features on a five level difficulty scale
(beginner to expert) using instrument-specific metric weights.

Records are read from JSON lines, YAML or Parquet files, graded locally,
submitted to a running server, or served over HTTP.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr()), logger.WithFormat(logFormat)); err != nil {
				return fmt.Errorf("init logging: %w", err)
			}
			return logger.SetLevelString(logLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")

	cmd.AddCommand(newScoreCmd(), newSubmitCmd(), newServeCmd())
	return cmd
}
