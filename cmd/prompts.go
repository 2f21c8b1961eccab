package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DachengChen/askSQL/assistant"
)

func newInitPromptsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-prompts DIR",
		Short: "Write the built-in prompt templates to DIR for editing",
		Long: `init-prompts copies the built-in templates into DIR. Files that already
exist are left alone. Point --prompt-dir or ASKSQL_PROMPT_DIR at DIR to
use them; edits take effect on the next question.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			written, err := assistant.WriteDefaults(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(written) == 0 {
				fmt.Fprintf(out, "all templates already present in %s\n", args[0])
				return nil
			}
			for _, name := range written {
				fmt.Fprintf(out, "wrote %s\n", name)
			}
			return nil
		},
	}
}
