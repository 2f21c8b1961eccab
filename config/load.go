package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LookupFunc resolves an environment key, reporting whether it is set.
type LookupFunc func(string) (string, bool)

// LoadFromEnv loads .env (if present) into the process environment and
// then builds the configuration from it.
func LoadFromEnv() (Config, error) {
	_ = godotenv.Load() // loads .env if present, silently ignores if not
	return Load(os.LookupEnv)
}

// Load builds a Config from defaults, the JSON config file and lookup.
func Load(lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	cfg := Defaults()

	path := DefaultConfigPath()
	if raw, ok := lookup("ASKSQL_CONFIG"); ok {
		path = strings.TrimSpace(raw)
	}
	if err := applyFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	steps := []func() error{
		func() error { return applyString(lookup, "DB_ENGINE", &cfg.DB.Engine) },
		func() error { return applyString(lookup, "DB_USER", &cfg.DB.User) },
		func() error { return applyString(lookup, "DB_PASSWORD", &cfg.DB.Password) },
		func() error { return applyString(lookup, "DB_HOST", &cfg.DB.Host) },
		func() error { return applyInt(lookup, "DB_PORT", &cfg.DB.Port) },
		func() error { return applyString(lookup, "DB_NAME", &cfg.DB.Database) },
		func() error { return applyString(lookup, "DB_SSLMODE", &cfg.DB.SSLMode) },
		func() error { return applyString(lookup, "DB_PATH", &cfg.DB.Path) },
		func() error { return applyString(lookup, "DB_SCHEMA", &cfg.DB.Schema) },

		func() error { return applyString(lookup, "SSH_HOST", &cfg.SSH.Host) },
		func() error { return applyInt(lookup, "SSH_PORT", &cfg.SSH.Port) },
		func() error { return applyString(lookup, "SSH_USER", &cfg.SSH.User) },
		func() error { return applyString(lookup, "SSH_KEY_PATH", &cfg.SSH.KeyPath) },
		func() error { return applyString(lookup, "SSH_KEY_PASSPHRASE", &cfg.SSH.KeyPassphrase) },
		func() error { return applyString(lookup, "SSH_KNOWN_HOSTS", &cfg.SSH.KnownHosts) },

		func() error { return applyString(lookup, "ASKSQL_AI_PROVIDER", &cfg.AI.Provider) },
		func() error { return applyString(lookup, "OPENAI_API_KEY", &cfg.AI.OpenAI.APIKey) },
		func() error { return applyString(lookup, "OPENAI_BASE_URL", &cfg.AI.OpenAI.BaseURL) },
		func() error { return applyString(lookup, "OPENAI_MODE", &cfg.AI.OpenAI.Mode) },
		func() error { return applyString(lookup, "ANTHROPIC_API_KEY", &cfg.AI.Anthropic.APIKey) },
		func() error { return applyString(lookup, "GEMINI_API_KEY", &cfg.AI.Gemini.APIKey) },
		func() error { return applyString(lookup, "OLLAMA_HOST", &cfg.AI.Ollama.Host) },
		func() error { return applyString(lookup, "ASKSQL_SQL_MODEL", &cfg.AI.SQLModel) },
		func() error { return applyString(lookup, "ASKSQL_ANSWER_MODEL", &cfg.AI.AnswerModel) },
		func() error { return applyFloat(lookup, "ASKSQL_TEMPERATURE", &cfg.AI.Temperature) },
		func() error { return applyInt(lookup, "ASKSQL_SQL_MAX_TOKENS", &cfg.AI.SQLMaxTokens) },
		func() error { return applyInt(lookup, "ASKSQL_ANSWER_MAX_TOKENS", &cfg.AI.AnswerMaxTokens) },
		func() error { return applyDuration(lookup, "ASKSQL_AI_TIMEOUT", &cfg.AI.Timeout) },

		func() error { return applyString(lookup, "ASKSQL_PROMPT_DIR", &cfg.Prompt.Dir) },
		func() error { return applyString(lookup, "ASKSQL_DIALECT", &cfg.Prompt.Dialect) },

		func() error { return applyBool(lookup, "ASKSQL_SEED_ENABLED", &cfg.Seed.Enabled) },
		func() error { return applyString(lookup, "ASKSQL_SEED_URL", &cfg.Seed.URL) },
		func() error { return applyString(lookup, "ASKSQL_SEED_TABLE", &cfg.Seed.Table) },
		func() error { return applyString(lookup, "ASKSQL_S3_ENDPOINT", &cfg.Seed.S3.Endpoint) },
		func() error { return applyString(lookup, "ASKSQL_S3_REGION", &cfg.Seed.S3.Region) },
		func() error { return applyString(lookup, "ASKSQL_S3_ACCESS_KEY", &cfg.Seed.S3.AccessKeyID) },
		func() error { return applyString(lookup, "ASKSQL_S3_SECRET_KEY", &cfg.Seed.S3.SecretAccessKey) },
		func() error { return applyBool(lookup, "ASKSQL_S3_USE_SSL", &cfg.Seed.S3.UseSSL) },

		func() error { return applyString(lookup, "ASKSQL_HTTP_ADDR", &cfg.Server.Address) },
		func() error { return applyDuration(lookup, "ASKSQL_HTTP_READ_TIMEOUT", &cfg.Server.ReadTimeout) },
		func() error { return applyDuration(lookup, "ASKSQL_HTTP_WRITE_TIMEOUT", &cfg.Server.WriteTimeout) },

		func() error { return applyLogLevel(lookup, "ASKSQL_LOG_LEVEL", &cfg.Log.Level) },
		func() error { return applyBool(lookup, "ASKSQL_LOG_JSON", &cfg.Log.JSON) },
		func() error { return applyString(lookup, "ASKSQL_LOG_FILE", &cfg.Log.File) },

		func() error { return applyBool(lookup, "ASKSQL_READ_ONLY", &cfg.ReadOnly) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return Config{}, err
		}
	}

	cfg.DB.Engine = strings.ToLower(cfg.DB.Engine)
	cfg.AI.Provider = strings.ToLower(cfg.AI.Provider)
	cfg.SSH.Enabled = cfg.SSH.Host != ""

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports configuration combinations that cannot work.
func (c Config) Validate() error {
	switch c.DB.Engine {
	case EnginePostgres:
		if c.DB.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}
		if c.DB.Port <= 0 {
			return fmt.Errorf("invalid DB_PORT: %d", c.DB.Port)
		}
	case EngineDuckDB:
		if c.SSH.Enabled {
			return fmt.Errorf("ssh tunnel is not supported for the duckdb engine")
		}
	default:
		return fmt.Errorf("invalid DB_ENGINE: %q (supported: postgres, duckdb)", c.DB.Engine)
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		return fmt.Errorf("invalid ASKSQL_TEMPERATURE: %v", c.AI.Temperature)
	}
	if c.AI.SQLMaxTokens <= 0 || c.AI.AnswerMaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive")
	}
	if c.Seed.Table == "" {
		return fmt.Errorf("ASKSQL_SEED_TABLE is required")
	}
	return nil
}

func applyString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

func applyDuration(lookup LookupFunc, key string, dst *time.Duration) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyBool(lookup LookupFunc, key string, dst *bool) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyFloat(lookup LookupFunc, key string, dst *float64) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyLogLevel(lookup LookupFunc, key string, dst *slog.Level) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		*dst = slog.LevelDebug
	case "info":
		*dst = slog.LevelInfo
	case "warn", "warning":
		*dst = slog.LevelWarn
	case "error":
		*dst = slog.LevelError
	default:
		return fmt.Errorf("invalid %s: %q", key, raw)
	}
	return nil
}
