// Package config — completion provider configuration.
//
// AI settings can be stored in ~/.asksql/config.json (or the file named
// by ASKSQL_CONFIG). API keys can also be set via environment
// variables (OPENAI_API_KEY, ANTHROPIC_API_KEY, GEMINI_API_KEY).
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// AIConfig holds the completion provider selection, credentials and
// the decoding parameters shared by both model calls.
type AIConfig struct {
	Provider  string          `json:"provider"` // "openai", "anthropic", "gemini", "ollama", "placeholder"
	OpenAI    OpenAIConfig    `json:"openai"`
	Anthropic AnthropicConfig `json:"anthropic"`
	Gemini    GeminiConfig    `json:"gemini"`
	Ollama    OllamaConfig    `json:"ollama"`

	// SQLModel is used for SQL generation (code-oriented), AnswerModel
	// for phrasing the result (text-oriented). Empty means the
	// provider's default model.
	SQLModel    string `json:"sql_model,omitempty"`
	AnswerModel string `json:"answer_model,omitempty"`

	Temperature     float64 `json:"temperature"`
	SQLMaxTokens    int     `json:"sql_max_tokens"`
	AnswerMaxTokens int     `json:"answer_max_tokens"`

	Timeout time.Duration `json:"-"`
}

// OpenAIConfig holds OpenAI-specific settings.
type OpenAIConfig struct {
	APIKey  string `json:"api_key,omitempty"`
	Model   string `json:"model"`
	BaseURL string `json:"base_url,omitempty"`
	// Mode is "completions" (legacy text completion endpoint) or "chat".
	Mode string `json:"mode,omitempty"`
}

// AnthropicConfig holds Anthropic-specific settings.
type AnthropicConfig struct {
	APIKey string `json:"api_key,omitempty"`
	Model  string `json:"model"`
}

// GeminiConfig holds Google Gemini-specific settings.
type GeminiConfig struct {
	APIKey string `json:"api_key,omitempty"`
	Model  string `json:"model"`
}

// OllamaConfig holds Ollama-specific settings.
type OllamaConfig struct {
	Host  string `json:"host"`
	Model string `json:"model"`
}

// fileConfig is the top-level config file structure.
type fileConfig struct {
	AI AIConfig `json:"ai"`
}

// DefaultAIConfig returns sensible defaults.
func DefaultAIConfig() AIConfig {
	return AIConfig{
		Provider: "openai",
		OpenAI: OpenAIConfig{
			Model:   "gpt-3.5-turbo-instruct",
			BaseURL: "https://api.openai.com",
			Mode:    "completions",
		},
		Anthropic: AnthropicConfig{
			Model: "claude-sonnet-4-20250514",
		},
		Gemini: GeminiConfig{
			Model: "gemini-2.0-flash",
		},
		Ollama: OllamaConfig{
			Host:  "http://localhost:11434",
			Model: "llama3.2",
		},
		Temperature:     0.7,
		SQLMaxTokens:    512,
		AnswerMaxTokens: 256,
		Timeout:         60 * time.Second,
	}
}

// DefaultConfigPath returns ~/.asksql/config.json, or "" when the home
// directory is unknown.
func DefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".asksql", "config.json")
}

// applyFile overlays the AI section of a JSON config file onto cfg.
// A missing file is not an error.
func applyFile(path string, cfg *Config) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	fc := fileConfig{AI: cfg.AI}
	if err := json.Unmarshal(data, &fc); err != nil {
		return err
	}
	cfg.AI = fc.AI
	return nil
}
