package core

import (
	"context"

	"github.com/varalys/vulnlens/internal/deps"
	"github.com/varalys/vulnlens/internal/engine"
	"github.com/varalys/vulnlens/internal/scanner"
	"github.com/varalys/vulnlens/internal/types"
)

// Re-export selected internal types as a stable public API surface.
type (
	Config                  = engine.Config
	Finding                 = types.Finding
	DependencyVulnerability = types.DependencyVulnerability
	ScanResult              = types.ScanResult
	Warning                 = types.Warning
	Severity                = types.Severity
)

// ErrInvalidRoot is returned by ScanProject when root is not a readable directory.
var ErrInvalidRoot = engine.ErrInvalidRoot

// DefaultConfig enables every check with the built-in defaults.
func DefaultConfig() Config { return engine.DefaultConfig() }

// ScanProject scans every eligible file under root and audits the
// dependency manifests it finds.
func ScanProject(ctx context.Context, root string, cfg Config) (ScanResult, error) {
	return engine.ScanProject(ctx, root, cfg)
}

// ScanFile scans a single file. Read failures, oversized and binary files
// are reported as warnings, never as errors.
func ScanFile(path string, cfg Config) ([]Finding, []Warning) {
	set := cfg.PatternSet()
	fs, ws := engine.ScanFile(path, set, cfg)
	return fs, append(set.Warnings(), ws...)
}

// ScanContent scans in-memory content as if it were stored at path.
func ScanContent(path string, content []byte, cfg Config) ([]Finding, []Warning) {
	set := cfg.PatternSet()
	fs, ws := engine.ScanContent(scanner.NewFileContext(path, content), set, cfg)
	return fs, append(set.Warnings(), ws...)
}

// AuditDependencies checks one manifest against the bundled vulnerability
// index. Unreadable or unsupported manifests yield an empty list.
func AuditDependencies(manifestPath string) []DependencyVulnerability {
	return deps.Audit(manifestPath, nil)
}

// Score computes the 0-100 security score for a severity histogram.
func Score(counts map[Severity]int) int { return engine.Score(counts) }
