package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DachengChen/askSQL/assistant"
	"github.com/DachengChen/askSQL/config"
)

func TestInitPromptsWritesTemplates(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "prompts")
	var out bytes.Buffer

	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"init-prompts", dir})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	for _, name := range []string{assistant.SQLTemplate, assistant.ExamplesTemplate, assistant.ResultsTemplate} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("%s not written: %v", name, err)
		}
		if !strings.Contains(out.String(), "wrote "+name) {
			t.Fatalf("output = %q", out.String())
		}
	}

	out.Reset()
	root = newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"init-prompts", dir})
	if err := root.Execute(); err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	if !strings.Contains(out.String(), "already present") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestInitPromptsRequiresDir(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"init-prompts"})
	if err := root.Execute(); err == nil {
		t.Fatal("expected error without DIR")
	}
}

func TestApplyFlagsOverridesOnlyChangedFlags(t *testing.T) {
	root := newRootCmd()
	if err := root.ParseFlags([]string{"--provider", "placeholder", "--read-only"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	cfg, err := applyFlags(root, config.Defaults())
	if err != nil {
		t.Fatalf("applyFlags() error = %v", err)
	}
	if cfg.AI.Provider != "placeholder" {
		t.Fatalf("Provider = %q", cfg.AI.Provider)
	}
	if !cfg.ReadOnly {
		t.Fatal("ReadOnly should be set")
	}
	if cfg.Prompt.Dir != "" {
		t.Fatalf("Prompt.Dir = %q, want untouched", cfg.Prompt.Dir)
	}
	if cfg.DB.Engine != config.EnginePostgres {
		t.Fatalf("Engine = %q, want untouched", cfg.DB.Engine)
	}
}

func TestApplyFlagsValidates(t *testing.T) {
	root := newRootCmd()
	if err := root.ParseFlags([]string{"--engine", "oracle"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	if _, err := applyFlags(root, config.Defaults()); err == nil {
		t.Fatal("expected invalid engine error")
	}
}
