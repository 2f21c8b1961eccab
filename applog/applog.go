// Package applog provides general-purpose application logging.
//
// Logs are written to ~/.asksql/logs/app.log by default through a
// log/slog handler. Covers: app start/stop, configuration, connections,
// every pipeline stage and every completion request.
package applog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/DachengChen/askSQL/config"
)

var (
	mu      sync.Mutex
	logFile *os.File
)

// DefaultPath returns ~/.asksql/logs/app.log.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".asksql", "logs", "app.log"), nil
}

// Open creates the application logger described by cfg and installs it
// as the slog default. The returned logger is also what Info, Error and
// Event write to.
func Open(cfg config.LogConfig) (*slog.Logger, error) {
	writer, err := openWriter(cfg.File)
	if err != nil {
		return nil, err
	}
	logger := New(cfg, writer)
	slog.SetDefault(logger)
	return logger, nil
}

// New builds a logger over writer without touching any file.
func New(cfg config.LogConfig, writer io.Writer) *slog.Logger {
	if writer == nil {
		writer = io.Discard
	}
	opts := &slog.HandlerOptions{Level: cfg.Level}
	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(writer, opts)
	} else {
		handler = slog.NewTextHandler(writer, opts)
	}
	return slog.New(handler).With(slog.String("app", "asksql"))
}

func openWriter(path string) (io.Writer, error) {
	if path == "-" {
		return os.Stderr, nil
	}
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("resolve log path: %w", err)
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	return f, nil
}

// Info logs a general info message.
func Info(format string, args ...any) {
	slog.Info(fmt.Sprintf(format, args...))
}

// Error logs an error message.
func Error(format string, args ...any) {
	slog.Error(fmt.Sprintf(format, args...))
}

// Event logs a message tagged with a category.
func Event(category string, format string, args ...any) {
	slog.Info(fmt.Sprintf(format, args...), slog.String("category", category))
}

// Close flushes and closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}
