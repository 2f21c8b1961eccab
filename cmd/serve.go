package cmd

import (
	"github.com/spf13/cobra"

	"github.com/DachengChen/askSQL/server"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Answer questions over HTTP",
		Long: `serve exposes the pipeline over HTTP:

  POST /v1/ask      {"question": "..."}
  GET  /v1/schema
  GET  /healthz
  GET  /metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			cfg := rt.cfg.Server
			if addr != "" {
				cfg.Address = addr
			}
			return server.New(rt.pipeline, rt.db, cfg, rt.logger).ListenAndServe(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from ASKSQL_HTTP_ADDR)")
	return cmd
}
