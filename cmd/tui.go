package cmd

import (
	"github.com/spf13/cobra"

	"github.com/DachengChen/askSQL/config"
	"github.com/DachengChen/askSQL/tui"
)

func newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Ask questions in a full-screen terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			database := rt.cfg.DB.Database
			if rt.cfg.DB.Engine == config.EngineDuckDB {
				database = rt.cfg.DB.Path
				if database == "" {
					database = ":memory:"
				}
			}
			return tui.Start(cmd.Context(), rt.pipeline, rt.db, tui.Info{
				Engine:   rt.cfg.DB.Engine,
				Database: database,
				Provider: rt.completer.Name(),
			})
		},
	}
}
