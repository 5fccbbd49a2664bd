package detectors

import (
	"strings"

	"github.com/varalys/vulnlens/internal/ctxparse"
	"github.com/varalys/vulnlens/internal/patterns"
	"github.com/varalys/vulnlens/internal/scanner"
	"github.com/varalys/vulnlens/internal/types"
)

// SecretCheck finds hardcoded credentials. Values in snippets are masked.
type SecretCheck struct{}

func (SecretCheck) Name() string { return "secrets" }

func (SecretCheck) Category() patterns.Category { return patterns.CategorySecret }

func (c SecretCheck) Scan(fc scanner.FileContext, set patterns.Set) []types.Finding {
	sigs := set.ForCategory(c.Category())
	out := scanLines(fc, sigs, true)
	return append(out, structuredFields(fc, sigs)...)
}

// structuredFields runs structured signatures against flattened JSON/YAML
// keys. This catches values whose key and value sit on different lines.
func structuredFields(fc scanner.FileContext, sigs []patterns.Signature) []types.Finding {
	var active []patterns.Signature
	for _, s := range sigs {
		if s.Structured && s.AppliesTo(fc.Path) {
			active = append(active, s)
		}
	}
	if len(active) == 0 {
		return nil
	}
	fields := ctxparse.Fields(fc.Path, fc.Content)
	if len(fields) == 0 {
		return nil
	}
	lines := fc.Lines()
	skip := suppressedLines(lines)
	var out []types.Finding
	for _, f := range fields {
		idx := f.Line - 1
		if idx < 0 || idx >= len(lines) || skip[idx] {
			continue
		}
		val := strings.Trim(strings.TrimSpace(f.Value), `"',`)
		if val == "" {
			continue
		}
		for _, s := range active {
			if !s.Matcher.MatchString(f.Key) {
				continue
			}
			cand := patterns.Candidate{Value: val, Line: lines[idx], Window: scanner.Window(lines, idx, windowRadius)}
			if s.Suppressed(cand) {
				continue
			}
			col := strings.Index(lines[idx], val) + 1
			if col < 1 {
				col = 1
			}
			snippet := f.Key + ": " + maskValue(val)
			out = append(out, newFinding(s, fc.Path, f.Line, col, snippet))
		}
	}
	return out
}
