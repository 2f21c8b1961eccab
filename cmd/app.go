package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/DachengChen/askSQL/ai"
	"github.com/DachengChen/askSQL/applog"
	"github.com/DachengChen/askSQL/assistant"
	"github.com/DachengChen/askSQL/config"
	"github.com/DachengChen/askSQL/db"
)

// app is everything a command needs once configuration is loaded:
// the logger, the open database and the wired pipeline.
type app struct {
	cfg       config.Config
	logger    *slog.Logger
	db        *db.DB
	completer ai.Completer
	pipeline  *assistant.Pipeline
}

func setup(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := applog.Open(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	applog.Event("app", "asksql %s starting (engine=%s provider=%s)", cmd.Name(), cfg.DB.Engine, cfg.AI.Provider)

	completer, err := ai.NewCompleter(cfg.AI)
	if err != nil {
		applog.Close()
		return nil, err
	}

	d, err := db.Connect(ctx, cfg, logger)
	if err != nil {
		applog.Error("connect failed: %v", err)
		applog.Close()
		return nil, fmt.Errorf("connect: %w", err)
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		db:        d,
		completer: completer,
		pipeline:  assistant.New(d, cfg, completer, logger),
	}, nil
}

// Close releases the connection and flushes the log.
func (a *app) Close() {
	a.db.Close()
	applog.Info("asksql stopped")
	applog.Close()
}
