package ai

import (
	"context"
	"fmt"
)

// OpenAI modes.
const (
	ModeCompletions = "completions"
	ModeChat        = "chat"
)

// OpenAI implements Completer for the OpenAI API. In completions mode it
// calls the legacy text completion endpoint, which continues the prompt
// verbatim; in chat mode the prompt is sent as a single user message.
type OpenAI struct {
	transport
	model string
	mode  string
}

var _ Completer = (*OpenAI)(nil)

// NewOpenAI creates an OpenAI backend.
func NewOpenAI(apiKey, model, mode string, opts ...Option) *OpenAI {
	if model == "" {
		model = "gpt-3.5-turbo-instruct"
	}
	if mode == "" {
		mode = ModeCompletions
	}
	t := newTransport("openai", "https://api.openai.com", opts)
	t.headers["Authorization"] = "Bearer " + apiKey
	return &OpenAI{transport: t, model: model, mode: mode}
}

func (o *OpenAI) Name() string {
	return fmt.Sprintf("OpenAI (%s, %s)", o.model, o.mode)
}

func (o *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	model := o.model
	if req.Model != "" {
		model = req.Model
	}
	if o.mode == ModeChat {
		return o.chat(ctx, model, req)
	}

	body := map[string]any{
		"model":       model,
		"prompt":      req.Prompt,
		"temperature": req.Temperature,
		"max_tokens":  req.MaxTokens,
	}
	if stop := stopList(req.Stop); stop != nil {
		body["stop"] = stop
	}

	var result struct {
		Choices []struct {
			Text string `json:"text"`
		} `json:"choices"`
	}
	if err := o.postJSON(ctx, "/v1/completions", body, &result); err != nil {
		return "", err
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return finish(result.Choices[0].Text, req.Stop)
}

func (o *OpenAI) chat(ctx context.Context, model string, req Request) (string, error) {
	type chatMsg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	body := map[string]any{
		"model": model,
		"messages": []chatMsg{
			{Role: "system", Content: systemPromptCompletion},
			{Role: "user", Content: req.Prompt},
		},
		"temperature": req.Temperature,
		"max_tokens":  req.MaxTokens,
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := o.postJSON(ctx, "/v1/chat/completions", body, &result); err != nil {
		return "", err
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return finish(result.Choices[0].Message.Content, req.Stop)
}
