package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/varalys/vulnlens/internal/engine"
	"github.com/varalys/vulnlens/internal/types"
)

func writeTemp(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return p
}

func TestLoadFile_Basic(t *testing.T) {
	dir := t.TempDir()
	body := `threads: 4
max_file_size: 123
scan_owasp: false
time_budget: 5s
min_severity: high
exclude:
  - "docs/**"
  - fixtures
patterns:
  - id: acme_key
    name: ACME key
    pattern: 'ACME-[0-9A-F]{16}'
    severity: critical
    keywords: [acme]
`
	p := writeTemp(t, dir, "vulnlens.yaml", body)
	cfg, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Threads == nil || *cfg.Threads != 4 {
		t.Fatalf("expected threads=4, got %#v", cfg.Threads)
	}
	if cfg.MaxFileSize == nil || *cfg.MaxFileSize != 123 {
		t.Fatalf("expected max_file_size=123, got %#v", cfg.MaxFileSize)
	}
	if cfg.ScanOWASP == nil || *cfg.ScanOWASP {
		t.Fatalf("expected scan_owasp=false")
	}
	if cfg.TimeBudget == nil || *cfg.TimeBudget != "5s" {
		t.Fatalf("expected time_budget=5s, got %#v", cfg.TimeBudget)
	}
	if len(cfg.Exclude) != 2 || cfg.Exclude[0] != "docs/**" {
		t.Fatalf("unexpected exclude: %#v", cfg.Exclude)
	}
	if len(cfg.Patterns) != 1 || cfg.Patterns[0].ID != "acme_key" || cfg.Patterns[0].Keywords[0] != "acme" {
		t.Fatalf("unexpected patterns: %#v", cfg.Patterns)
	}
}

func TestLoadFile_UnknownKey(t *testing.T) {
	p := writeTemp(t, t.TempDir(), "vulnlens.yml", "thread: 4\n")
	if _, err := LoadFile(p); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestLoadFile_Empty(t *testing.T) {
	p := writeTemp(t, t.TempDir(), "vulnlens.yml", "")
	cfg, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Threads != nil {
		t.Fatal("expected zero config")
	}
}

func TestLoadLocal_PrefersDotfile(t *testing.T) {
	dir := t.TempDir()
	// place both, expect the dotfile to be picked first by search order
	writeTemp(t, dir, "vulnlens.yaml", "threads: 1\n")
	writeTemp(t, dir, ".vulnlens.yaml", "threads: 7\n")
	cfg, err := LoadLocal(dir)
	if err != nil {
		t.Fatalf("LoadLocal: %v", err)
	}
	if cfg.Threads == nil || *cfg.Threads != 7 {
		t.Fatalf("expected threads=7 from .vulnlens.yaml, got %#v", cfg.Threads)
	}
}

func TestLoadLocal_NoConfig(t *testing.T) {
	if _, err := LoadLocal(t.TempDir()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadGlobal_XDG_Config(t *testing.T) {
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, "vulnlens")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeTemp(t, cfgDir, "config.yml", "threads: 9\n")
	t.Setenv("XDG_CONFIG_HOME", dir)
	cfg, err := LoadGlobal()
	if err != nil {
		t.Fatalf("LoadGlobal: %v", err)
	}
	if cfg.Threads == nil || *cfg.Threads != 9 {
		t.Fatalf("expected threads=9 from global config, got %#v", cfg.Threads)
	}
}

func TestLoadGlobal_NoConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "")
	if _, err := LoadGlobal(); err == nil {
		t.Fatal("expected error when no global config dir exists")
	}
}

func TestMerge_LaterLayerWins(t *testing.T) {
	one, four := 1, 4
	yes, no := true, false
	global := FileConfig{Threads: &one, ScanSecrets: &no, Exclude: []string{"a"}}
	local := FileConfig{Threads: &four, RespectGitignore: &yes, Exclude: []string{"b"}}

	m := Merge(global, local)
	if *m.Threads != 4 {
		t.Fatalf("expected local threads to win, got %d", *m.Threads)
	}
	if m.ScanSecrets == nil || *m.ScanSecrets {
		t.Fatal("expected global scan_secrets to survive")
	}
	if m.RespectGitignore == nil || !*m.RespectGitignore {
		t.Fatal("expected respect_gitignore from local")
	}
	if len(m.Exclude) != 2 {
		t.Fatalf("expected excludes to accumulate, got %v", m.Exclude)
	}
}

func TestApply(t *testing.T) {
	sev, budget, no := "medium", "250ms", false
	fc := FileConfig{MinSeverity: &sev, TimeBudget: &budget, ScanDependencies: &no, Exclude: []string{"gen/**"}}
	cfg, err := fc.Apply(engine.DefaultConfig())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if cfg.MinSeverity != types.SevMed {
		t.Fatalf("expected medium, got %v", cfg.MinSeverity)
	}
	if cfg.TimeBudget != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %v", cfg.TimeBudget)
	}
	if cfg.ScanDependencies || !cfg.ScanSecrets {
		t.Fatal("unexpected check toggles")
	}
	if len(cfg.ExcludePatterns) != 1 {
		t.Fatalf("unexpected excludes %v", cfg.ExcludePatterns)
	}
}

func TestApply_InvalidValues(t *testing.T) {
	bad := "extreme"
	if _, err := (FileConfig{MinSeverity: &bad}).Apply(engine.DefaultConfig()); err == nil {
		t.Fatal("expected min_severity error")
	}
	if _, err := (FileConfig{TimeBudget: &bad}).Apply(engine.DefaultConfig()); err == nil {
		t.Fatal("expected time_budget error")
	}
}
