// Package session is the console loop: it prompts for a question, runs
// it through the assistant and prints the answer, until an empty line.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/DachengChen/askSQL/assistant"
	"github.com/DachengChen/askSQL/db"
)

// Asker answers one question. *assistant.Pipeline satisfies it.
type Asker interface {
	Ask(ctx context.Context, question string, hooks assistant.Hooks) (*assistant.Outcome, error)
}

// Session reads questions from In and writes prompts, debug output and
// answers to Out.
type Session struct {
	Asker  Asker
	In     io.Reader
	Out    io.Writer
	Logger *slog.Logger

	// Debug prints the generated SQL and the result table before the answer.
	Debug bool

	state assistant.State
}

// New returns a session with debug output enabled.
func New(asker Asker, in io.Reader, out io.Writer, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{Asker: asker, In: in, Out: out, Logger: logger, Debug: true}
}

// State reports where the loop currently is.
func (s *Session) State() assistant.State {
	return s.state
}

// Run loops until an empty line, end of input or ctx is cancelled.
// A failed question is reported and the loop continues; only a read
// error on In is returned.
func (s *Session) Run(ctx context.Context) error {
	reader := bufio.NewReader(s.In)

	for {
		s.state = assistant.AwaitingQuestion
		if ctx.Err() != nil {
			s.state = assistant.Closed
			return nil
		}

		fmt.Fprint(s.Out, "QUESTION: ")
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			s.state = assistant.Closed
			fmt.Fprintln(s.Out)
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		question := strings.TrimSpace(line)
		if question == "" {
			s.state = assistant.Closed
			s.Logger.Info("session closed", slog.String("category", "session"))
			return nil
		}

		s.ask(ctx, question)
	}
}

func (s *Session) ask(ctx context.Context, question string) {
	hooks := assistant.Hooks{
		OnState: func(st assistant.State) { s.state = st },
	}
	if s.Debug {
		hooks.OnSQL = s.printSQL
		hooks.OnResult = s.printResult
	}

	out, err := s.Asker.Ask(ctx, question, hooks)
	if err != nil {
		fmt.Fprintf(s.Out, "ERROR: %v\n", err)
		return
	}
	s.state = assistant.Reporting
	fmt.Fprintf(s.Out, "ANSWER: %s\n", out.Answer)
}

func (s *Session) printSQL(query string) {
	fmt.Fprintln(s.Out, "[DEBUG] Generated SQL:")
	for _, line := range strings.Split(query, "\n") {
		fmt.Fprintf(s.Out, "\t%s\n", line)
	}
}

func (s *Session) printResult(result *db.ResultTable) {
	fmt.Fprintln(s.Out, "[DEBUG] Result:")
	fmt.Fprintln(s.Out, result.String())
}
