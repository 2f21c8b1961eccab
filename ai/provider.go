// Package ai defines the completion interface the assistant talks to
// and its backends.
//
// Design decisions:
//   - Completer is an interface so the pipeline can swap backends
//     (OpenAI, Anthropic, Gemini, Ollama, placeholder) and tests can
//     use a stub.
//   - A call is a single text completion: prompt in, trimmed text out.
//     There is no retry; transport and API errors are returned as is.
//   - All calls accept context for cancellation.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrEmptyCompletion is returned when a backend answers with no text.
var ErrEmptyCompletion = errors.New("model returned an empty completion")

// Request is one completion call.
type Request struct {
	// Model overrides the backend's configured model when non-empty.
	Model       string
	Prompt      string
	Temperature float64
	MaxTokens   int
	// Stop ends generation at the first occurrence of the marker.
	Stop string
}

// Completer is the interface all completion backends implement.
type Completer interface {
	// Complete returns the model's continuation of req.Prompt, trimmed.
	Complete(ctx context.Context, req Request) (string, error)

	// Name returns the backend name for display.
	Name() string
}

// Option configures the HTTP side of a backend.
type Option func(*transport)

// WithBaseURL points the backend at a different endpoint root, such as
// a compatible gateway or a test server.
func WithBaseURL(url string) Option {
	return func(t *transport) {
		if url != "" {
			t.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(t *transport) {
		if c != nil {
			t.client = c
		}
	}
}

// WithTimeout bounds each request, including reading the body.
func WithTimeout(d time.Duration) Option {
	return func(t *transport) {
		if d > 0 {
			t.client = &http.Client{Timeout: d}
		}
	}
}

type transport struct {
	name    string
	baseURL string
	client  *http.Client
	headers map[string]string
}

func newTransport(name, baseURL string, opts []Option) transport {
	t := transport{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 60 * time.Second},
		headers: map[string]string{},
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// postJSON sends body to baseURL+path and decodes a 2xx response into out.
func (t transport) postJSON(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s encode request: %w", t.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", t.name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s read response: %w", t.name, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%s API error (%d): %s", t.name, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%s parse error: %w", t.name, err)
	}
	return nil
}

// finish trims the model text and applies the stop marker client side.
// Chat models often open their reply with a fence of their own even
// when the prompt already ends in one; that opening line is dropped
// before cutting at the stop marker.
func finish(text, stop string) (string, error) {
	text = strings.TrimSpace(text)
	if stop != "" && strings.HasPrefix(text, stop) {
		if nl := strings.IndexByte(text, '\n'); nl >= 0 {
			text = text[nl+1:]
		} else {
			text = ""
		}
	}
	if stop != "" {
		if idx := strings.Index(text, stop); idx >= 0 {
			text = text[:idx]
		}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

func stopList(stop string) []string {
	if stop == "" {
		return nil
	}
	return []string{stop}
}
