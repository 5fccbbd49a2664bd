package detectors

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/varalys/vulnlens/internal/patterns"
	"github.com/varalys/vulnlens/internal/scanner"
	"github.com/varalys/vulnlens/internal/types"
)

const (
	markerIgnore      = "vulnlens:ignore"
	markerIgnoreNext  = "vulnlens:ignore-next-line"
	markerIgnoreStart = "vulnlens:ignore-start"
	markerIgnoreEnd   = "vulnlens:ignore-end"

	windowRadius   = 2
	maxSnippetLen  = 200
	maskedFallback = "********"
)

// hasMarker accepts both "vulnlens:ignore" and "vulnlens: ignore".
func hasMarker(line, marker string) bool {
	if strings.Contains(line, marker) {
		return true
	}
	return strings.Contains(line, strings.Replace(marker, ":", ": ", 1))
}

// suppressedLines marks the lines silenced by inline markers. Marker lines
// themselves are always suppressed.
func suppressedLines(lines []string) []bool {
	out := make([]bool, len(lines))
	region := false
	skipNext := false
	for i, t := range lines {
		switch {
		case hasMarker(t, markerIgnoreStart):
			region = true
			out[i] = true
		case hasMarker(t, markerIgnoreEnd):
			region = false
			out[i] = true
		case region:
			out[i] = true
		case hasMarker(t, markerIgnoreNext):
			skipNext = true
			out[i] = true
		case skipNext:
			skipNext = false
			out[i] = true
		case hasMarker(t, markerIgnore):
			out[i] = true
		}
	}
	return out
}

// scanLines runs every applicable signature against every unsuppressed
// line. Only the first hit per signature and line is reported.
func scanLines(fc scanner.FileContext, sigs []patterns.Signature, mask bool) []types.Finding {
	var active []patterns.Signature
	for _, s := range sigs {
		if !s.Structured && s.AppliesTo(fc.Path) {
			active = append(active, s)
		}
	}
	if len(active) == 0 {
		return nil
	}
	lines := fc.Lines()
	skip := suppressedLines(lines)
	var out []types.Finding
	for i, t := range lines {
		if skip[i] || strings.TrimSpace(t) == "" {
			continue
		}
		lower := strings.ToLower(t)
		window, masked := "", ""
		for _, s := range active {
			if !s.WantsLine(lower) {
				continue
			}
			val, off, ok := s.Match(t)
			if !ok {
				continue
			}
			if window == "" {
				window = scanner.Window(lines, i, windowRadius)
			}
			if s.Suppressed(patterns.Candidate{Value: val, Line: t, Window: window}) {
				continue
			}
			snippet := t
			if mask {
				if masked == "" {
					masked = maskSecrets(t, active)
				}
				snippet = masked
			}
			out = append(out, newFinding(s, fc.Path, i+1, utf8.RuneCountInString(t[:off])+1, snippet))
		}
	}
	return out
}

// maskSecrets masks every value any of sigs matches on line, not just the
// one being reported, so a second credential on the same line never leaks
// through the snippet.
func maskSecrets(line string, sigs []patterns.Signature) string {
	var spans [][2]int
	for _, s := range sigs {
		for _, sp := range s.Spans(line) {
			if sp[1] > sp[0] {
				spans = append(spans, sp)
			}
		}
	}
	if len(spans) == 0 {
		return line
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i][0] < spans[j][0] })
	merged := spans[:1]
	for _, sp := range spans[1:] {
		last := &merged[len(merged)-1]
		if sp[0] <= last[1] {
			last[1] = max(last[1], sp[1])
			continue
		}
		merged = append(merged, sp)
	}
	var b strings.Builder
	pos := 0
	for _, sp := range merged {
		b.WriteString(line[pos:sp[0]])
		b.WriteString(maskValue(line[sp[0]:sp[1]]))
		pos = sp[1]
	}
	b.WriteString(line[pos:])
	return b.String()
}

func newFinding(s patterns.Signature, path string, line, col int, snippet string) types.Finding {
	return types.Finding{
		Kind:           s.Kind,
		Severity:       s.Severity,
		Path:           path,
		Line:           line,
		Column:         col,
		RuleID:         s.ID,
		Title:          s.Name,
		Description:    s.Description,
		Snippet:        truncate(strings.TrimSpace(snippet), maxSnippetLen),
		Recommendation: s.Recommendation,
		OWASP:          s.OWASP,
		CWE:            s.CWE,
		CVSS:           s.CVSS,
	}
}

// maskValue keeps a short prefix and suffix so a reader can still tell
// which credential leaked.
func maskValue(s string) string {
	if utf8.RuneCountInString(s) <= 12 {
		return maskedFallback
	}
	r := []rune(s)
	return string(r[:4]) + "…" + string(r[len(r)-4:])
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
