package ai

import (
	"context"
	"strings"
	"time"
)

// Placeholder is an offline backend for development. It answers SQL
// prompts with a query that runs on any database and other prompts
// with a canned sentence.
type Placeholder struct {
	// Delay simulates network latency.
	Delay time.Duration
}

var _ Completer = (*Placeholder)(nil)

func NewPlaceholder() *Placeholder {
	return &Placeholder{Delay: 300 * time.Millisecond}
}

func (p *Placeholder) Name() string {
	return "placeholder"
}

func (p *Placeholder) Complete(ctx context.Context, req Request) (string, error) {
	if p.Delay > 0 {
		select {
		case <-time.After(p.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if strings.HasSuffix(strings.TrimSpace(req.Prompt), "```sql") {
		return finish("SELECT 1 AS placeholder;", req.Stop)
	}
	return finish("[placeholder] Configure a real AI provider (openai, anthropic, gemini, ollama) to get an actual answer.", req.Stop)
}
