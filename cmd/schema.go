package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newSchemaCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the schema description sent to the model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			schema, err := rt.db.Inspect(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(schema)
			}
			_, err = fmt.Fprint(out, schema.Text())
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print tables and columns as JSON")
	return cmd
}
