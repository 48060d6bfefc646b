package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/etude/internal/client"
	"github.com/okian/etude/internal/dataset"
	"github.com/okian/etude/pkg/logger"
)

func newSubmitCmd() *cobra.Command {
	var (
		baseURL string
		workers int
		timeout time.Duration
		top     int
	)

	cmd := &cobra.Command{
		Use:     "submit [paths...]",
		Short:   "Submit records to a running server",
		Example: `  etude submit 'data/**/*.jsonl' --url http://localhost:9080 --top 10`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logger.Named("submit")

			paths, err := dataset.ExpandPaths(args)
			if err != nil {
				return err
			}
			loaded, err := dataset.NewLoader(dataset.WithLogger(log)).LoadAll(ctx, paths)
			if err != nil {
				return err
			}

			c := client.New(baseURL,
				client.WithWorkers(workers),
				client.WithTimeout(timeout),
				client.WithLogger(log),
			)
			if err := c.Health(ctx); err != nil {
				return fmt.Errorf("server at %s is not healthy: %w", baseURL, err)
			}

			stats, err := c.Submit(ctx, loaded.Records)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "submitted %d: accepted %d, duplicate %d, failed %d (skipped %d)\n",
				stats.Submitted, stats.Accepted, stats.Duplicate, stats.Failed, loaded.Skipped)
			if err != nil {
				return err
			}
			if top <= 0 {
				return nil
			}

			entries, err := c.Hardest(ctx, top)
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Fprintf(out, "%3d. %-40s %-9s %-12s %.3f\n", e.Rank, e.RecordID, e.Instrument, e.Label, e.Ratio)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "url", "http://localhost:9080", "Base URL of the server")
	cmd.Flags().IntVarP(&workers, "workers", "w", runtime.NumCPU()*2, "Concurrent submissions")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "HTTP request timeout")
	cmd.Flags().IntVar(&top, "top", 0, "Print the N hardest records after submitting")
	return cmd
}
