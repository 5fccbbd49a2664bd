package engine

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"unicode/utf8"

	xxhash "github.com/cespare/xxhash/v2"

	"github.com/varalys/vulnlens/internal/patterns"
	"github.com/varalys/vulnlens/internal/scanner"
	"github.com/varalys/vulnlens/internal/scanner/factory"
	"github.com/varalys/vulnlens/internal/types"
)

// ScanContent runs the enabled checks over one in-memory file. Oversized
// and binary content produce a warning and no findings.
func ScanContent(fc scanner.FileContext, set patterns.Set, cfg Config) ([]types.Finding, []types.Warning) {
	if limit := cfg.maxFileSize(); int64(len(fc.Content)) > limit {
		return nil, []types.Warning{sizeWarning(fc.Path, int64(len(fc.Content)), limit)}
	}
	if looksBinary(fc.Content) {
		return nil, []types.Warning{{Category: types.WarnIO, Path: fc.Path, Message: "binary content skipped"}}
	}
	var out []types.Finding
	for _, check := range factory.New(cfg.checks()) {
		out = append(out, check.Scan(fc, set)...)
	}
	out = filterBySeverity(out, cfg.MinSeverity)
	out = dedupe(out)
	for i := range out {
		out[i].Fingerprint = fingerprint(out[i])
	}
	sortFindings(out)
	return out, nil
}

// ScanFile reads path and delegates to ScanContent. displayPath is the
// path reported in findings; it defaults to path.
func ScanFile(path string, set patterns.Set, cfg Config) ([]types.Finding, []types.Warning) {
	return scanFileAs(path, path, set, cfg)
}

func scanFileAs(path, displayPath string, set patterns.Set, cfg Config) ([]types.Finding, []types.Warning) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, []types.Warning{{Category: types.WarnIO, Path: displayPath, Message: err.Error()}}
	}
	if info.IsDir() {
		return nil, []types.Warning{{Category: types.WarnIO, Path: displayPath, Message: "is a directory"}}
	}
	if limit := cfg.maxFileSize(); info.Size() > limit {
		return nil, []types.Warning{sizeWarning(displayPath, info.Size(), limit)}
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, []types.Warning{{Category: types.WarnIO, Path: displayPath, Message: err.Error()}}
	}
	return ScanContent(scanner.NewFileContext(displayPath, b), set, cfg)
}

func sizeWarning(path string, size, limit int64) types.Warning {
	return types.Warning{
		Category: types.WarnSize,
		Path:     path,
		Message:  fmt.Sprintf("file size %d exceeds limit %d", size, limit),
	}
}

// looksBinary sniffs for NUL bytes in the head of the file, then requires
// the whole content to be valid UTF-8.
func looksBinary(b []byte) bool {
	const sniff = 8000
	n := sniff
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if b[i] == 0 {
			return true
		}
	}
	return !utf8.Valid(b)
}

func filterBySeverity(fs []types.Finding, min types.Severity) []types.Finding {
	if min <= types.SevInfo {
		return fs
	}
	out := fs[:0]
	for _, f := range fs {
		if f.Severity >= min {
			out = append(out, f)
		}
	}
	return out
}

type dedupeKey struct {
	kind types.Kind
	path string
	line int
}

// dedupe keeps one finding per (kind, path, line), preferring the highest
// severity and, on ties, the first reported.
func dedupe(fs []types.Finding) []types.Finding {
	idx := make(map[dedupeKey]int, len(fs))
	var out []types.Finding
	for _, f := range fs {
		k := dedupeKey{f.Kind, f.Path, f.Line}
		if i, ok := idx[k]; ok {
			if f.Severity > out[i].Severity {
				out[i] = f
			}
			continue
		}
		idx[k] = len(out)
		out = append(out, f)
	}
	return out
}

func fingerprint(f types.Finding) string {
	h := xxhash.New()
	_, _ = h.WriteString(f.Kind.String())
	_, _ = h.WriteString("|")
	_, _ = h.WriteString(f.Path)
	_, _ = h.WriteString("|")
	_, _ = h.WriteString(strconv.Itoa(f.Line))
	_, _ = h.WriteString("|")
	_, _ = h.WriteString(f.RuleID)
	return fastHash(h.Sum64())
}

func fastHash(sum uint64) string {
	var buf [16]byte
	const hex = "0123456789abcdef"
	for i := 15; i >= 0; i-- {
		buf[i] = hex[sum&0xF]
		sum >>= 4
	}
	return string(buf[:])
}

// sortFindings orders by severity (highest first), path, line, kind, rule.
func sortFindings(fs []types.Finding) {
	sort.SliceStable(fs, func(i, j int) bool {
		a, b := fs[i], fs[j]
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.RuleID < b.RuleID
	})
}
