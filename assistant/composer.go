package assistant

import (
	"context"
	"strings"

	"github.com/DachengChen/askSQL/ai"
	"github.com/DachengChen/askSQL/db"
)

// Composer phrases a query result as a sentence with a second model call.
type Composer struct {
	Templates   TemplateSource
	Completer   ai.Completer
	Model       string
	Temperature float64
	MaxTokens   int
}

// Render fills the results template.
func (c *Composer) Render(question, query string, result *db.ResultTable) (string, error) {
	templates := c.Templates
	if templates == nil {
		templates = Inline{}
	}
	tmpl, err := templates.Load(ResultsTemplate)
	if err != nil {
		return "", err
	}
	results := "Empty result"
	if result != nil {
		results = result.String()
	}
	r := strings.NewReplacer(
		"$question", question,
		"$query", query,
		"$results", results,
	)
	return r.Replace(tmpl), nil
}

// Compose renders the results prompt and asks the model for the answer.
// The prompt is returned alongside the answer, also on model failure.
func (c *Composer) Compose(ctx context.Context, question, query string, result *db.ResultTable) (answer, prompt string, err error) {
	prompt, err = c.Render(question, query, result)
	if err != nil {
		return "", "", err
	}
	answer, err = c.Completer.Complete(ctx, ai.Request{
		Model:       c.Model,
		Prompt:      prompt,
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
		Stop:        "```",
	})
	if err != nil {
		return "", prompt, err
	}
	return answer, prompt, nil
}
