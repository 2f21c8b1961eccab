package ai

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Gemini implements Completer for Google's Gemini generateContent API.
type Gemini struct {
	transport
	apiKey string
	model  string
}

var _ Completer = (*Gemini)(nil)

// NewGemini creates a Gemini backend.
func NewGemini(apiKey, model string, opts ...Option) *Gemini {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	t := newTransport("gemini", "https://generativelanguage.googleapis.com", opts)
	return &Gemini{transport: t, apiKey: apiKey, model: model}
}

func (g *Gemini) Name() string {
	return fmt.Sprintf("Gemini (%s)", g.model)
}

func (g *Gemini) Complete(ctx context.Context, req Request) (string, error) {
	type part struct {
		Text string `json:"text"`
	}
	type content struct {
		Role  string `json:"role"`
		Parts []part `json:"parts"`
	}
	model := g.model
	if req.Model != "" {
		model = req.Model
	}

	generation := map[string]any{"temperature": req.Temperature}
	if req.MaxTokens > 0 {
		generation["maxOutputTokens"] = req.MaxTokens
	}
	body := map[string]any{
		"contents": []content{{Role: "user", Parts: []part{{Text: req.Prompt}}}},
		"systemInstruction": map[string]any{
			"parts": []part{{Text: systemPromptCompletion}},
		},
		"generationConfig": generation,
	}

	path := fmt.Sprintf("/v1beta/models/%s:generateContent?key=%s",
		url.PathEscape(model), url.QueryEscape(g.apiKey))

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := g.postJSON(ctx, path, body, &result); err != nil {
		return "", err
	}
	if len(result.Candidates) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return finish(sb.String(), req.Stop)
}
