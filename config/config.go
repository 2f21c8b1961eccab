// Package config defines the application configuration structures.
//
// Separated from cmd so that db, ai, seed and the front ends can
// depend on config without importing Cobra. Values come from built-in
// defaults, an optional JSON file and the environment, in that order.
package config

import (
	"log/slog"
	"net/url"
	"strconv"
	"time"
)

// Database engines understood by db.Connect.
const (
	EnginePostgres = "postgres"
	EngineDuckDB   = "duckdb"
)

// Config holds all application settings.
type Config struct {
	DB       DBConfig
	SSH      SSHConfig
	AI       AIConfig
	Prompt   PromptConfig
	Seed     SeedConfig
	Server   ServerConfig
	Log      LogConfig
	ReadOnly bool
}

// DBConfig addresses the database the questions are asked against.
type DBConfig struct {
	Engine   string
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	// Path is the DuckDB database file; empty means in-memory.
	Path string

	// Schema is the catalog schema inspected for prompt grounding.
	Schema string
}

// SSHConfig holds SSH tunnel settings.
type SSHConfig struct {
	Enabled       bool
	Host          string
	Port          int
	User          string
	KeyPath       string
	KeyPassphrase string
	// KnownHosts is an OpenSSH known_hosts file used to verify the
	// bastion. Empty disables host key verification.
	KnownHosts string
}

// PromptConfig selects where prompt templates come from.
type PromptConfig struct {
	// Dir holds sql_prompt.md, sql_prompt_examples.md and
	// results_prompt.md. Empty means the embedded templates.
	Dir string

	// Dialect is the SQL dialect named in the prompt. Derived from the
	// engine when empty.
	Dialect string
}

// SeedConfig configures the optional dataset loader.
type SeedConfig struct {
	Enabled bool
	URL     string
	Table   string
	S3      S3Config
}

// S3Config addresses an S3-compatible object store for s3:// seed sources.
type S3Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
}

// ServerConfig holds HTTP listener settings for `asksql serve`.
type ServerConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// LogConfig controls the application log.
type LogConfig struct {
	Level slog.Level
	JSON  bool
	// File is the log destination; "-" means stderr.
	File string
}

// DSN builds a pgx-compatible connection URL.
// When SSH tunnel is active, the caller should override Host/Port
// with the local tunnel endpoint.
func (c DBConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   c.Host + ":" + strconv.Itoa(c.Port),
		Path:   "/" + c.Database,
	}
	if c.SSLMode != "" {
		u.RawQuery = "sslmode=" + url.QueryEscape(c.SSLMode)
	}
	return u.String()
}

// Dialect returns the SQL dialect name used in prompts.
func (c Config) Dialect() string {
	if c.Prompt.Dialect != "" {
		return c.Prompt.Dialect
	}
	if c.DB.Engine == EngineDuckDB {
		return "DuckDB"
	}
	return "PostgreSQL"
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() Config {
	return Config{
		DB: DBConfig{
			Engine:   EnginePostgres,
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Database: "postgres",
			SSLMode:  "disable",
		},
		SSH: SSHConfig{
			Port: 22,
		},
		AI: DefaultAIConfig(),
		Seed: SeedConfig{
			URL:   "https://covid.ourworldindata.org/data/owid-covid-data.csv",
			Table: "data",
			S3: S3Config{
				Region: "us-east-1",
				UseSSL: true,
			},
		},
		Server: ServerConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 120 * time.Second,
		},
		Log: LogConfig{
			Level: slog.LevelInfo,
		},
	}
}

// CatalogSchema returns the schema to inspect, defaulting per engine.
func (c DBConfig) CatalogSchema() string {
	if c.Schema != "" {
		return c.Schema
	}
	if c.Engine == EngineDuckDB {
		return "main"
	}
	return "public"
}
