package ai

import (
	"context"
	"fmt"
)

// Ollama implements Completer for local Ollama instances through the
// raw generate endpoint.
type Ollama struct {
	transport
	host  string
	model string
}

var _ Completer = (*Ollama)(nil)

// NewOllama creates an Ollama backend.
func NewOllama(host, model string, opts ...Option) *Ollama {
	if host == "" {
		host = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.2"
	}
	t := newTransport("ollama", host, opts)
	return &Ollama{transport: t, host: t.baseURL, model: model}
}

func (o *Ollama) Name() string {
	return fmt.Sprintf("Ollama (%s)", o.model)
}

func (o *Ollama) Complete(ctx context.Context, req Request) (string, error) {
	model := o.model
	if req.Model != "" {
		model = req.Model
	}
	options := map[string]any{"temperature": req.Temperature}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}
	body := map[string]any{
		"model":   model,
		"prompt":  req.Prompt,
		"system":  systemPromptCompletion,
		"stream":  false,
		"options": options,
	}

	var result struct {
		Response string `json:"response"`
	}
	if err := o.postJSON(ctx, "/api/generate", body, &result); err != nil {
		return "", fmt.Errorf("%w (is Ollama running at %s?)", err, o.host)
	}
	return finish(result.Response, req.Stop)
}
