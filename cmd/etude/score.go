package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/etude/internal/batch"
	"github.com/okian/etude/internal/config"
	"github.com/okian/etude/internal/dataset"
	"github.com/okian/etude/internal/report"
	"github.com/okian/etude/pkg/logger"
)

func newScoreCmd() *cobra.Command {
	var (
		format         string
		workers        int
		onlyApplicable bool
	)

	cmd := &cobra.Command{
		Use:   "score [paths...]",
		Short: "Grade records from dataset files",
		Long: `Reads records from .jsonl, .json, .yaml or .parquet files and grades them.
Paths may be files, directories or doublestar globs. Records whose
extraction failed are skipped. Weight overrides come from ETUDE_CONFIG.`,
		Example: `  # Grade every JSON lines file under data/
  etude score 'data/**/*.jsonl'

  # Emit YAML for solo pieces only
  etude score scores.parquet --format yaml --only-applicable`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logger.Named("score")

			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}
			policy, err := cfg.Policy()
			if err != nil {
				return err
			}

			paths, err := dataset.ExpandPaths(args)
			if err != nil {
				return err
			}
			loaded, err := dataset.NewLoader(dataset.WithLogger(log)).LoadAll(ctx, paths)
			if err != nil {
				return err
			}
			log.Info(ctx, "records loaded",
				logger.Int("files", len(paths)),
				logger.Int("records", len(loaded.Records)),
				logger.Int("skipped", loaded.Skipped),
			)

			outcomes, sum, err := batch.Run(ctx, loaded.Records, batch.Options{Workers: workers, Policy: policy})
			if err != nil {
				return fmt.Errorf("grading: %w", err)
			}
			if onlyApplicable {
				kept := outcomes[:0]
				for _, o := range outcomes {
					if o.Result.Grade.Applicable {
						kept = append(kept, o)
					}
				}
				outcomes = kept
			}
			return report.Write(cmd.OutOrStdout(), f, outcomes, sum)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(report.FormatTable), "Output format: table, jsonl or yaml")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent graders (0 = one per CPU)")
	cmd.Flags().BoolVar(&onlyApplicable, "only-applicable", false, "Omit records that are not solo pieces")
	return cmd
}
