// logger.go records every completion request and response.
//
// Entries go wherever the application logger writes (by default
// ~/.asksql/logs/app.log). Prompts are logged at debug level only.
package ai

import (
	"context"
	"log/slog"
	"time"
)

// Logged wraps a Completer and logs each call.
type Logged struct {
	next   Completer
	logger *slog.Logger
	op     string
}

var _ Completer = (*Logged)(nil)

// WithLogging returns next wrapped so that each request and response is
// logged under the operation name op (for example "sql" or "answer").
func WithLogging(next Completer, logger *slog.Logger, op string) *Logged {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logged{next: next, logger: logger, op: op}
}

func (l *Logged) Name() string {
	return l.next.Name()
}

func (l *Logged) Complete(ctx context.Context, req Request) (string, error) {
	l.logger.DebugContext(ctx, "ai request",
		slog.String("category", "ai"),
		slog.String("op", l.op),
		slog.String("provider", l.next.Name()),
		slog.String("model", req.Model),
		slog.Int("max_tokens", req.MaxTokens),
		slog.String("prompt", req.Prompt))

	start := time.Now()
	text, err := l.next.Complete(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		l.logger.ErrorContext(ctx, "ai response",
			slog.String("category", "ai"),
			slog.String("op", l.op),
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()))
		return "", err
	}
	l.logger.InfoContext(ctx, "ai response",
		slog.String("category", "ai"),
		slog.String("op", l.op),
		slog.Duration("elapsed", elapsed),
		slog.String("response", text))
	return text, nil
}
