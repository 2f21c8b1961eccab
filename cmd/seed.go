package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DachengChen/askSQL/seed"
)

func newSeedCmd() *cobra.Command {
	var source, table string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace a table with a CSV or Parquet dataset",
		Long: `seed downloads a dataset (http(s)://, s3://bucket/key or a local path),
infers the column types and replaces the target table with it.

Without --source the Our World in Data COVID dataset is loaded into "data".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := setup(ctx, cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			if source == "" {
				source = rt.cfg.Seed.URL
			}
			if table == "" {
				table = rt.cfg.Seed.Table
			}
			return runSeed(ctx, cmd, rt, source, table)
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "dataset URL or path (default from ASKSQL_SEED_URL)")
	cmd.Flags().StringVar(&table, "table", "", "target table (default from ASKSQL_SEED_TABLE)")
	return cmd
}

func runSeed(ctx context.Context, cmd *cobra.Command, rt *app, source, table string) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "loading %s into %s...\n", source, table)
	n, err := seed.New(rt.cfg.Seed, rt.db, rt.logger).Run(ctx, source, table)
	if err != nil {
		return fmt.Errorf("seed %s: %w", table, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "loaded %d rows into %s\n", n, table)
	return nil
}
