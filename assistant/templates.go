package assistant

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
)

// Template file names, shared by the embedded defaults and a prompt
// directory.
const (
	SQLTemplate      = "sql_prompt.md"
	ExamplesTemplate = "sql_prompt_examples.md"
	ResultsTemplate  = "results_prompt.md"
)

//go:embed prompts/*.md
var embedded embed.FS

// TemplateSource loads a prompt template by file name.
type TemplateSource interface {
	Load(name string) (string, error)
}

// Inline serves the templates compiled into the binary.
type Inline struct{}

func (Inline) Load(name string) (string, error) {
	data, err := embedded.ReadFile("prompts/" + name)
	if err != nil {
		return "", fmt.Errorf("load template %s: %w", name, err)
	}
	return string(data), nil
}

// Dir reads templates from a directory on every call, so edits take
// effect on the next question.
type Dir string

func (d Dir) Load(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(string(d), name))
	if err != nil {
		return "", fmt.Errorf("load template %s: %w", name, err)
	}
	return string(data), nil
}

// NewTemplateSource returns Dir(dir), or Inline when dir is empty.
func NewTemplateSource(dir string) TemplateSource {
	if dir == "" {
		return Inline{}
	}
	return Dir(dir)
}

// WriteDefaults copies the embedded templates into dir, leaving files
// that already exist untouched. It returns the names it wrote.
func WriteDefaults(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var written []string
	for _, name := range []string{SQLTemplate, ExamplesTemplate, ResultsTemplate} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		body, err := Inline{}.Load(name)
		if err != nil {
			return written, err
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			return written, err
		}
		written = append(written, name)
	}
	return written, nil
}
