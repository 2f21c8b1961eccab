package ai

import (
	"context"
	"fmt"
	"strings"
)

// Anthropic implements Completer for the Anthropic Messages API.
type Anthropic struct {
	transport
	model string
}

var _ Completer = (*Anthropic)(nil)

// NewAnthropic creates an Anthropic backend.
func NewAnthropic(apiKey, model string, opts ...Option) *Anthropic {
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	t := newTransport("anthropic", "https://api.anthropic.com", opts)
	t.headers["x-api-key"] = apiKey
	t.headers["anthropic-version"] = "2023-06-01"
	return &Anthropic{transport: t, model: model}
}

func (a *Anthropic) Name() string {
	return fmt.Sprintf("Anthropic (%s)", a.model)
}

func (a *Anthropic) Complete(ctx context.Context, req Request) (string, error) {
	type apiMsg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	model := a.model
	if req.Model != "" {
		model = req.Model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	// The system prompt is a top-level field, not a message.
	body := map[string]any{
		"model":       model,
		"max_tokens":  maxTokens,
		"temperature": req.Temperature,
		"system":      systemPromptCompletion,
		"messages":    []apiMsg{{Role: "user", Content: req.Prompt}},
	}

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := a.postJSON(ctx, "/v1/messages", body, &result); err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return finish(sb.String(), req.Stop)
}
