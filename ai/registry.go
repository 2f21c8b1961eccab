package ai

import (
	"fmt"

	"github.com/DachengChen/askSQL/config"
)

// SupportedProviders lists available provider names for display.
var SupportedProviders = []string{"openai", "anthropic", "gemini", "ollama", "placeholder"}

// NewCompleter creates a completion backend from the application config.
func NewCompleter(cfg config.AIConfig) (Completer, error) {
	opts := []Option{WithTimeout(cfg.Timeout)}

	switch cfg.Provider {
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key not set. Set OPENAI_API_KEY env var or add it to ~/.asksql/config.json")
		}
		if cfg.OpenAI.Mode != "" && cfg.OpenAI.Mode != ModeCompletions && cfg.OpenAI.Mode != ModeChat {
			return nil, fmt.Errorf("unknown OpenAI mode %q. Supported: completions, chat", cfg.OpenAI.Mode)
		}
		opts = append(opts, WithBaseURL(cfg.OpenAI.BaseURL))
		return NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.Mode, opts...), nil

	case "anthropic":
		if cfg.Anthropic.APIKey == "" {
			return nil, fmt.Errorf("Anthropic API key not set. Set ANTHROPIC_API_KEY env var or add it to ~/.asksql/config.json")
		}
		return NewAnthropic(cfg.Anthropic.APIKey, cfg.Anthropic.Model, opts...), nil

	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, fmt.Errorf("Gemini API key not set. Set GEMINI_API_KEY env var or add it to ~/.asksql/config.json")
		}
		return NewGemini(cfg.Gemini.APIKey, cfg.Gemini.Model, opts...), nil

	case "ollama":
		return NewOllama(cfg.Ollama.Host, cfg.Ollama.Model, opts...), nil

	case "placeholder", "":
		return NewPlaceholder(), nil

	default:
		return nil, fmt.Errorf("unknown AI provider %q. Supported: openai, anthropic, gemini, ollama, placeholder", cfg.Provider)
	}
}
