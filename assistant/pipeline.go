// Package assistant turns a question into an answer: it builds the
// schema-grounded prompt, asks the model for SQL, runs it and asks the
// model again to phrase the result.
//
// Every question re-reads the schema and re-loads the templates; nothing
// is carried over between questions.
package assistant

import (
	"context"
	"log/slog"
	"time"

	"github.com/DachengChen/askSQL/ai"
	"github.com/DachengChen/askSQL/config"
	"github.com/DachengChen/askSQL/db"
	"github.com/DachengChen/askSQL/metrics"
)

// Database is what the pipeline needs from the connection. *db.DB
// satisfies it.
type Database interface {
	Inspect(ctx context.Context) (db.Schema, error)
	Execute(ctx context.Context, query string) (*db.ResultTable, error)
}

// Hooks let a front end show artifacts as soon as they exist. Any of
// them may be nil.
type Hooks struct {
	OnState  func(State)
	OnSQL    func(query string)
	OnResult func(result *db.ResultTable)
}

func (h Hooks) state(s State) {
	if h.OnState != nil {
		h.OnState(s)
	}
}

// Outcome holds every artifact produced for one question. On failure
// the fields up to the failed stage are filled.
type Outcome struct {
	Question     string
	Prompt       string
	SQL          string
	Result       *db.ResultTable
	AnswerPrompt string
	Answer       string
}

// Pipeline runs questions against one database.
type Pipeline struct {
	DB       Database
	Builder  *Builder
	Composer *Composer

	// SQL generates the query; the Composer holds the answer backend.
	SQL          ai.Completer
	SQLModel     string
	Temperature  float64
	SQLMaxTokens int

	Logger *slog.Logger
}

// New wires a pipeline from configuration. completer serves both model
// calls; each call site is logged under its own operation name.
func New(database Database, cfg config.Config, completer ai.Completer, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	templates := NewTemplateSource(cfg.Prompt.Dir)
	return &Pipeline{
		DB: database,
		Builder: &Builder{
			Templates: templates,
			Dialect:   cfg.Dialect(),
		},
		Composer: &Composer{
			Templates:   templates,
			Completer:   ai.WithLogging(completer, logger, "answer"),
			Model:       cfg.AI.AnswerModel,
			Temperature: cfg.AI.Temperature,
			MaxTokens:   cfg.AI.AnswerMaxTokens,
		},
		SQL:          ai.WithLogging(completer, logger, "sql"),
		SQLModel:     cfg.AI.SQLModel,
		Temperature:  cfg.AI.Temperature,
		SQLMaxTokens: cfg.AI.SQLMaxTokens,
		Logger:       logger,
	}
}

// Ask answers one question. Errors are *StageError values.
func (p *Pipeline) Ask(ctx context.Context, question string, hooks Hooks) (*Outcome, error) {
	out := &Outcome{Question: question}
	start := time.Now()

	err := p.ask(ctx, out, hooks)

	failed := StageOf(err)
	metrics.ObserveQuestion(string(failed))
	if err != nil {
		p.logger().ErrorContext(ctx, "question failed",
			slog.String("category", "pipeline"),
			slog.String("stage", string(failed)),
			slog.String("question", question),
			slog.String("sql", out.SQL),
			slog.String("error", err.Error()))
		return out, err
	}
	p.logger().InfoContext(ctx, "question answered",
		slog.String("category", "pipeline"),
		slog.String("question", question),
		slog.String("sql", out.SQL),
		slog.Int("rows", len(out.Result.Rows)),
		slog.Duration("elapsed", time.Since(start)))
	return out, nil
}

func (p *Pipeline) ask(ctx context.Context, out *Outcome, hooks Hooks) error {
	hooks.state(Building)
	var schema db.Schema
	err := stage(StageSchemaRead, func() (err error) {
		schema, err = p.DB.Inspect(ctx)
		return err
	})
	if err != nil {
		return err
	}
	err = stage(StagePromptBuild, func() (err error) {
		out.Prompt, err = p.Builder.Build(schema, out.Question)
		return err
	})
	if err != nil {
		return err
	}

	hooks.state(Generating)
	err = stage(StageModelCall, func() (err error) {
		out.SQL, err = p.SQL.Complete(ctx, ai.Request{
			Model:       p.SQLModel,
			Prompt:      out.Prompt,
			Temperature: p.Temperature,
			MaxTokens:   p.SQLMaxTokens,
			Stop:        "```",
		})
		return err
	})
	if err != nil {
		return err
	}
	if hooks.OnSQL != nil {
		hooks.OnSQL(out.SQL)
	}

	hooks.state(Executing)
	err = stage(StageQueryExecution, func() (err error) {
		out.Result, err = p.DB.Execute(ctx, out.SQL)
		return err
	})
	if err != nil {
		return err
	}
	if hooks.OnResult != nil {
		hooks.OnResult(out.Result)
	}

	hooks.state(Composing)
	err = stage(StageAnswerCompose, func() (err error) {
		out.Answer, out.AnswerPrompt, err = p.Composer.Compose(ctx, out.Question, out.SQL, out.Result)
		return err
	})
	if err != nil {
		return err
	}

	hooks.state(Reporting)
	return nil
}

// stage times fn and tags its error.
func stage(name Stage, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.ObserveStage(string(name), time.Since(start))
	if err != nil {
		return &StageError{Stage: name, Err: err}
	}
	return nil
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}
