package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/varalys/vulnlens/internal/engine"
	"github.com/varalys/vulnlens/internal/patterns"
	"github.com/varalys/vulnlens/internal/types"
)

// ErrNotFound is returned by LoadLocal and LoadGlobal when no file exists.
var ErrNotFound = errors.New("config not found")

// FileConfig is the on-disk YAML configuration shape for vulnlens. Pointer
// fields distinguish "unset" from zero values so layers can be merged.
type FileConfig struct {
	ScanSecrets      *bool `yaml:"scan_secrets,omitempty"`
	ScanInjection    *bool `yaml:"scan_injection,omitempty"`
	ScanOWASP        *bool `yaml:"scan_owasp,omitempty"`
	ScanDependencies *bool `yaml:"scan_dependencies,omitempty"`

	MinSeverity      *string  `yaml:"min_severity,omitempty"`
	Exclude          []string `yaml:"exclude,omitempty"`
	DefaultExcludes  *bool    `yaml:"default_excludes,omitempty"`
	RespectGitignore *bool    `yaml:"respect_gitignore,omitempty"`
	MaxFileSize      *int64   `yaml:"max_file_size,omitempty"`

	Threads    *int    `yaml:"threads,omitempty"`
	TimeBudget *string `yaml:"time_budget,omitempty"`
	MaxFiles   *int    `yaml:"max_files,omitempty"`

	IndexPath *string `yaml:"index_path,omitempty"`
	Enable    *string `yaml:"enable,omitempty"`
	Disable   *string `yaml:"disable,omitempty"`

	// Patterns are user-defined rules appended to the built-in catalog.
	Patterns []patterns.CustomPattern `yaml:"patterns,omitempty"`

	LogLevel *string `yaml:"log_level,omitempty"`
}

// LoadFile reads a YAML config file from the provided path. Unknown keys
// are rejected so typos surface early.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadLocal searches for a project-local config file in the given root.
// It supports .vulnlens.yml/.yaml and vulnlens.yml/.yaml.
func LoadLocal(root string) (FileConfig, error) {
	for _, name := range []string{".vulnlens.yml", ".vulnlens.yaml", "vulnlens.yml", "vulnlens.yaml"} {
		p := filepath.Join(root, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return FileConfig{}, ErrNotFound
}

// LoadGlobal loads the global config file from XDG base directory or ~/.config.
func LoadGlobal() (FileConfig, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return FileConfig{}, ErrNotFound
	}
	p := filepath.Join(base, "vulnlens", "config.yml")
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return FileConfig{}, ErrNotFound
}

// Merge layers configs left to right; a set field in a later layer wins.
// Exclude lists and custom patterns accumulate.
func Merge(layers ...FileConfig) FileConfig {
	var out FileConfig
	for _, l := range layers {
		out.ScanSecrets = pick(l.ScanSecrets, out.ScanSecrets)
		out.ScanInjection = pick(l.ScanInjection, out.ScanInjection)
		out.ScanOWASP = pick(l.ScanOWASP, out.ScanOWASP)
		out.ScanDependencies = pick(l.ScanDependencies, out.ScanDependencies)
		out.MinSeverity = pick(l.MinSeverity, out.MinSeverity)
		out.DefaultExcludes = pick(l.DefaultExcludes, out.DefaultExcludes)
		out.RespectGitignore = pick(l.RespectGitignore, out.RespectGitignore)
		out.MaxFileSize = pick(l.MaxFileSize, out.MaxFileSize)
		out.Threads = pick(l.Threads, out.Threads)
		out.TimeBudget = pick(l.TimeBudget, out.TimeBudget)
		out.MaxFiles = pick(l.MaxFiles, out.MaxFiles)
		out.IndexPath = pick(l.IndexPath, out.IndexPath)
		out.Enable = pick(l.Enable, out.Enable)
		out.Disable = pick(l.Disable, out.Disable)
		out.LogLevel = pick(l.LogLevel, out.LogLevel)
		out.Exclude = append(out.Exclude, l.Exclude...)
		out.Patterns = append(out.Patterns, l.Patterns...)
	}
	return out
}

func pick[T any](v, fallback *T) *T {
	if v != nil {
		return v
	}
	return fallback
}

// Apply overlays the set fields of fc onto base.
func (fc FileConfig) Apply(base engine.Config) (engine.Config, error) {
	cfg := base
	set(&cfg.ScanSecrets, fc.ScanSecrets)
	set(&cfg.ScanInjection, fc.ScanInjection)
	set(&cfg.ScanOWASP, fc.ScanOWASP)
	set(&cfg.ScanDependencies, fc.ScanDependencies)
	set(&cfg.DefaultExcludes, fc.DefaultExcludes)
	set(&cfg.RespectGitignore, fc.RespectGitignore)
	set(&cfg.MaxFileSize, fc.MaxFileSize)
	set(&cfg.Threads, fc.Threads)
	set(&cfg.MaxFiles, fc.MaxFiles)
	set(&cfg.IndexPath, fc.IndexPath)
	set(&cfg.EnableRules, fc.Enable)
	set(&cfg.DisableRules, fc.Disable)
	if fc.MinSeverity != nil {
		sev, err := types.ParseSeverity(*fc.MinSeverity)
		if err != nil {
			return base, fmt.Errorf("min_severity: %w", err)
		}
		cfg.MinSeverity = sev
	}
	if fc.TimeBudget != nil {
		d, err := time.ParseDuration(*fc.TimeBudget)
		if err != nil {
			return base, fmt.Errorf("time_budget: %w", err)
		}
		cfg.TimeBudget = d
	}
	cfg.ExcludePatterns = append(append([]string(nil), base.ExcludePatterns...), fc.Exclude...)
	cfg.CustomPatterns = append(append([]patterns.CustomPattern(nil), base.CustomPatterns...), fc.Patterns...)
	return cfg, nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
