// Package factory composes the enabled checks from scan options.
package factory

import (
	"github.com/varalys/vulnlens/internal/detectors"
	"github.com/varalys/vulnlens/internal/scanner"
)

// Config is the subset of scan configuration needed to pick checks.
type Config struct {
	Secrets   bool
	Injection bool
	OWASP     bool
}

// New returns the enabled checks in a fixed order: secrets, injection,
// OWASP. An empty slice is valid and produces no findings.
func New(cfg Config) []scanner.Scanner {
	var out []scanner.Scanner
	if cfg.Secrets {
		out = append(out, detectors.SecretCheck{})
	}
	if cfg.Injection {
		out = append(out, detectors.InjectionCheck{})
	}
	if cfg.OWASP {
		out = append(out, detectors.OWASPCheck{})
	}
	return out
}

// Names lists the check names for the given config, for logging.
func Names(cfg Config) []string {
	checks := New(cfg)
	names := make([]string, len(checks))
	for i, c := range checks {
		names[i] = c.Name()
	}
	return names
}
