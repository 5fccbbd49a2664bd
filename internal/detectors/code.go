package detectors

import (
	"github.com/varalys/vulnlens/internal/patterns"
	"github.com/varalys/vulnlens/internal/scanner"
	"github.com/varalys/vulnlens/internal/types"
)

// Data and documentation formats carry no executable sinks; built-in code
// signatures skip them. Custom signatures still run everywhere.
var nonCodeLanguages = map[string]bool{
	"markdown": true,
	"json":     true,
	"yaml":     true,
	"toml":     true,
	"ini":      true,
	"dotenv":   true,
	"xml":      true,
}

func codeSignatures(fc scanner.FileContext, set patterns.Set, cat patterns.Category) []patterns.Signature {
	sigs := set.ForCategory(cat)
	if !nonCodeLanguages[fc.Language] {
		return sigs
	}
	var out []patterns.Signature
	for _, s := range sigs {
		if s.Custom {
			out = append(out, s)
		}
	}
	return out
}

// InjectionCheck reports SQL injection and XSS heuristics.
type InjectionCheck struct{}

func (InjectionCheck) Name() string { return "injection" }

func (InjectionCheck) Category() patterns.Category { return patterns.CategoryInjection }

func (c InjectionCheck) Scan(fc scanner.FileContext, set patterns.Set) []types.Finding {
	return scanLines(fc, codeSignatures(fc, set, c.Category()), false)
}

// OWASPCheck reports weak crypto, unsafe deserialization, path traversal,
// command injection and related weaknesses.
type OWASPCheck struct{}

func (OWASPCheck) Name() string { return "owasp" }

func (OWASPCheck) Category() patterns.Category { return patterns.CategoryOWASP }

func (c OWASPCheck) Scan(fc scanner.FileContext, set patterns.Set) []types.Finding {
	return scanLines(fc, codeSignatures(fc, set, c.Category()), false)
}
