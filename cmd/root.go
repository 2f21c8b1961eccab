// Package cmd contains all Cobra commands for askSQL.
//
// Running `asksql` with no subcommand starts the question loop on the
// console. `tui` is the full-screen variant, `serve` exposes the same
// pipeline over HTTP, `seed` loads a dataset and `schema` prints what the
// model will be told about the database.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/DachengChen/askSQL/config"
	"github.com/DachengChen/askSQL/session"
)

// flags shared by every command; only flags the user set override the
// loaded configuration.
type globalFlags struct {
	promptDir string
	provider  string
	readOnly  bool
	engine    string
}

var global globalFlags

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	var seedFirst, noDebug bool

	root := &cobra.Command{
		Use:   "asksql",
		Short: "Ask questions about a SQL database in plain English",
		Long: `askSQL turns a question into one SQL query against the live schema,
runs it, and phrases the result as a sentence.

Run 'asksql' to start the question loop. Enter an empty line to quit.

Configuration comes from ~/.asksql/config.json, a .env file and the
environment (DB_HOST, DB_USER, OPENAI_API_KEY, ...).`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := setup(ctx, cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			if seedFirst || rt.cfg.Seed.Enabled {
				if err := runSeed(ctx, cmd, rt, rt.cfg.Seed.URL, rt.cfg.Seed.Table); err != nil {
					return err
				}
			}

			s := session.New(rt.pipeline, cmd.InOrStdin(), cmd.OutOrStdout(), rt.logger)
			s.Debug = !noDebug
			return s.Run(ctx)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&global.promptDir, "prompt-dir", "", "directory with sql_prompt.md, sql_prompt_examples.md and results_prompt.md")
	pf.StringVar(&global.provider, "provider", "", "completion provider (openai, anthropic, gemini, ollama, placeholder)")
	pf.StringVar(&global.engine, "engine", "", "database engine (postgres, duckdb)")
	pf.BoolVar(&global.readOnly, "read-only", false, "refuse anything but a single SELECT/WITH statement")

	root.Flags().BoolVar(&seedFirst, "seed", false, "load the seed dataset before the first question")
	root.Flags().BoolVar(&noDebug, "no-debug", false, "print only the answer, not the SQL and result")

	root.AddCommand(
		newSeedCmd(),
		newSchemaCmd(),
		newServeCmd(),
		newTUICmd(),
		newInitPromptsCmd(),
	)
	return root
}

// Execute runs the root command until it finishes or SIGINT/SIGTERM
// arrives.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// loadConfig loads the environment configuration and overlays the flags
// the user set explicitly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return applyFlags(cmd, cfg)
}

func applyFlags(cmd *cobra.Command, cfg config.Config) (config.Config, error) {
	flags := cmd.Flags()
	if flags.Changed("prompt-dir") {
		cfg.Prompt.Dir = global.promptDir
	}
	if flags.Changed("provider") {
		cfg.AI.Provider = global.provider
	}
	if flags.Changed("engine") {
		cfg.DB.Engine = global.engine
	}
	if flags.Changed("read-only") {
		cfg.ReadOnly = global.readOnly
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
