package patterns

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
	"github.com/varalys/vulnlens/internal/types"
	"github.com/varalys/vulnlens/internal/validate"
)

// Category selects which check runs a signature.
type Category uint8

const (
	CategorySecret Category = iota
	CategoryInjection
	CategoryOWASP
)

func (c Category) String() string {
	switch c {
	case CategorySecret:
		return "secret"
	case CategoryInjection:
		return "injection"
	case CategoryOWASP:
		return "owasp"
	}
	return fmt.Sprintf("category(%d)", uint8(c))
}

// CategoryForKind maps a finding kind onto the check that owns it.
func CategoryForKind(k types.Kind) Category {
	switch k {
	case types.KindSecret:
		return CategorySecret
	case types.KindSQLInjection, types.KindXSS:
		return CategoryInjection
	default:
		return CategoryOWASP
	}
}

// Candidate is one matcher hit handed to an exclusion predicate.
type Candidate struct {
	Value  string // captured value (or the whole match)
	Line   string // full text of the matching line
	Window string // matching line plus its neighbours, newline-joined
}

// Exclusion returns true when a candidate should be suppressed.
type Exclusion func(c Candidate) bool

// Signature is a named detection rule. Signatures are immutable once built
// and are shared read-only between concurrent scans.
type Signature struct {
	ID             string
	Name           string
	Category       Category
	Kind           types.Kind
	Matcher        *regexp.Regexp
	ValueGroup     int // capture group holding the reported value, 0 = whole match
	Severity       types.Severity
	Exclude        Exclusion
	Keywords       []string // lowercase; when set the line must contain one
	Extensions     []string // lowercase with dot; when set only these files
	Paths          []string // doublestar globs over the relative path
	Structured     bool     // matcher runs against JSON/YAML keys instead of lines
	Description    string
	Recommendation string
	OWASP          string
	CWE            string
	CVSS           float64
	Custom         bool
}

// AppliesTo reports whether the signature should run for relPath.
func (s Signature) AppliesTo(relPath string) bool {
	p := strings.ReplaceAll(relPath, "\\", "/")
	if len(s.Extensions) > 0 {
		ext := strings.ToLower(path.Ext(p))
		ok := false
		for _, e := range s.Extensions {
			if e == ext {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if len(s.Paths) > 0 {
		for _, g := range s.Paths {
			if m, _ := doublestar.Match(g, p); m {
				return true
			}
			if m, _ := doublestar.Match(g, path.Base(p)); m {
				return true
			}
		}
		return false
	}
	return true
}

// WantsLine is the cheap keyword prefilter. lowerLine must be lowercased.
func (s Signature) WantsLine(lowerLine string) bool {
	if len(s.Keywords) == 0 {
		return true
	}
	for _, k := range s.Keywords {
		if strings.Contains(lowerLine, k) {
			return true
		}
	}
	return false
}

// Match runs the matcher against line and returns the reported value and
// its 0-based byte offset. ok is false when nothing matched.
func (s Signature) Match(line string) (value string, offset int, ok bool) {
	loc := s.Matcher.FindStringSubmatchIndex(line)
	if loc == nil {
		return "", 0, false
	}
	start, end := s.valueSpan(loc)
	return line[start:end], start, true
}

// Spans returns the byte range of the reported value for every
// non-overlapping match in line.
func (s Signature) Spans(line string) [][2]int {
	var out [][2]int
	for _, loc := range s.Matcher.FindAllStringSubmatchIndex(line, -1) {
		start, end := s.valueSpan(loc)
		out = append(out, [2]int{start, end})
	}
	return out
}

// valueSpan picks ValueGroup out of a submatch index, falling back to the
// whole match when the group is absent or did not participate.
func (s Signature) valueSpan(loc []int) (int, int) {
	g := s.ValueGroup
	if 2*g+1 >= len(loc) || loc[2*g] < 0 {
		g = 0
	}
	return loc[2*g], loc[2*g+1]
}

// Suppressed runs the signature's exclusion predicate. Secret signatures
// always drop obvious placeholder values.
func (s Signature) Suppressed(c Candidate) bool {
	if s.Category == CategorySecret && validate.IsPlaceholder(c.Value) {
		return true
	}
	if s.Exclude != nil {
		return s.Exclude(c)
	}
	return false
}

// Set is a compiled, immutable collection of signatures. Construct it with
// Register or Default and pass it into every scan.
type Set struct {
	sigs     []Signature
	warnings []types.Warning
}

// Default returns the built-in catalog with no custom patterns.
func Default() Set {
	return Register(nil)
}

// Register compiles the built-in catalog plus the given custom patterns.
// Custom patterns that fail validation are skipped and reported through
// Warnings; they never prevent the remaining patterns from loading.
func Register(custom []CustomPattern) Set {
	builtin := Builtin()
	set := Set{sigs: make([]Signature, 0, len(builtin)+len(custom))}
	seen := make(map[string]bool, len(builtin)+len(custom))
	for _, s := range builtin {
		seen[s.ID] = true
		set.sigs = append(set.sigs, s)
	}
	for i, cp := range custom {
		sig, err := cp.compile()
		if err != nil {
			set.warnings = append(set.warnings, types.Warning{
				Category: types.WarnConfig,
				Message:  fmt.Sprintf("custom pattern #%d (%s) rejected: %v", i+1, cp.label(), err),
			})
			continue
		}
		if seen[sig.ID] {
			set.warnings = append(set.warnings, types.Warning{
				Category: types.WarnConfig,
				Message:  fmt.Sprintf("custom pattern #%d rejected: duplicate id %q", i+1, sig.ID),
			})
			continue
		}
		seen[sig.ID] = true
		set.sigs = append(set.sigs, sig)
	}
	return set
}

// Len returns the number of signatures in the set.
func (s Set) Len() int { return len(s.sigs) }

// Signatures returns a copy of every signature in catalog order.
func (s Set) Signatures() []Signature {
	out := make([]Signature, len(s.sigs))
	copy(out, s.sigs)
	return out
}

// ForCategory returns the signatures owned by one check, in catalog order.
func (s Set) ForCategory(c Category) []Signature {
	var out []Signature
	for _, sig := range s.sigs {
		if sig.Category == c {
			out = append(out, sig)
		}
	}
	return out
}

// Lookup finds a signature by ID.
func (s Set) Lookup(id string) (Signature, bool) {
	for _, sig := range s.sigs {
		if sig.ID == id {
			return sig, true
		}
	}
	return Signature{}, false
}

// Warnings returns configuration warnings raised while compiling.
func (s Set) Warnings() []types.Warning {
	out := make([]types.Warning, len(s.warnings))
	copy(out, s.warnings)
	return out
}

// Filter returns a new set restricted by comma-separated enable/disable
// ID lists. An empty enable list keeps everything not disabled.
func (s Set) Filter(enable, disable string) Set {
	if strings.TrimSpace(enable) == "" && strings.TrimSpace(disable) == "" {
		return s
	}
	allowed := splitIDs(enable)
	blocked := splitIDs(disable)
	out := Set{warnings: s.warnings}
	for _, sig := range s.sigs {
		if len(allowed) > 0 && !allowed[sig.ID] {
			continue
		}
		if blocked[sig.ID] {
			continue
		}
		out.sigs = append(out.sigs, sig)
	}
	return out
}

func splitIDs(s string) map[string]bool {
	m := map[string]bool{}
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			m[id] = true
		}
	}
	return m
}
